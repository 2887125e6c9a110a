package signer

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Cookie names.
const (
	CookiePolicy    = "Gallery-Policy"
	CookieSignature = "Gallery-Signature"
	CookieKeyPairID = "Gallery-Key-Pair-Id"
)

// Minimum signing key length in bytes.
const MinKeySize = 16

// Verification errors.
var (
	ErrMissingCookie    = errors.New("signer: policy cookie missing")
	ErrKeyMismatch      = errors.New("signer: unknown key pair id")
	ErrInvalidSignature = errors.New("signer: invalid signature")
	ErrMalformedPolicy  = errors.New("signer: malformed policy")
	ErrExpired          = errors.New("signer: policy expired")
	ErrNotCovered       = errors.New("signer: resource not covered by policy")
)

var urlSafe = strings.NewReplacer("+", "-", "=", "_", "/", "~")
var urlUnsafe = strings.NewReplacer("-", "+", "_", "=", "~", "/")

// EncodeURLSafe encodes data with the cookie-safe base64 alphabet.
func EncodeURLSafe(data []byte) string {
	return urlSafe.Replace(base64.StdEncoding.EncodeToString(data))
}

// DecodeURLSafe reverses EncodeURLSafe.
func DecodeURLSafe(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(urlUnsafe.Replace(s))
}

type epochTime struct {
	EpochTime int64 `json:"AWS:EpochTime"`
}

type condition struct {
	DateLessThan epochTime `json:"DateLessThan"`
}

type statement struct {
	Resource  string    `json:"Resource"`
	Condition condition `json:"Condition"`
}

type policyDoc struct {
	Statement []statement `json:"Statement"`
}

// Policy grants access to every key matching Resource until Expires.
// A Resource ending in '*' matches by prefix.
type Policy struct {
	Resource string
	Expires  time.Time
}

// Covers reports whether the policy grants access to a server path such as
// "/gallery/a/1.jpg".
func (p Policy) Covers(path string) bool {
	if prefix, ok := strings.CutSuffix(p.Resource, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return path == p.Resource
}

func (p Policy) marshal() ([]byte, error) {
	doc := policyDoc{Statement: []statement{{
		Resource:  p.Resource,
		Condition: condition{DateLessThan: epochTime{EpochTime: p.Expires.Unix()}},
	}}}
	return json.Marshal(doc)
}

func unmarshalPolicy(b []byte) (Policy, error) {
	var doc policyDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrMalformedPolicy, err)
	}
	if len(doc.Statement) != 1 || doc.Statement[0].Resource == "" {
		return Policy{}, ErrMalformedPolicy
	}
	st := doc.Statement[0]
	return Policy{
		Resource: st.Resource,
		Expires:  time.Unix(st.Condition.DateLessThan.EpochTime, 0),
	}, nil
}

// CookieOptions are the attributes of issued cookies.
type CookieOptions struct {
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
	// MaxAge persists cookies for the policy lifetime instead of the
	// browser session.
	MaxAge bool
}

// Signer signs and verifies policies with one key.
type Signer struct {
	keyID string
	key   []byte
	now   func() time.Time
}

// New creates a Signer. The key must be between MinKeySize and 64 bytes.
func New(keyID string, key []byte) (*Signer, error) {
	if keyID == "" {
		return nil, fmt.Errorf("signer: key pair id required")
	}
	if len(key) < MinKeySize || len(key) > blake2b.Size {
		return nil, fmt.Errorf("signer: key must be %d to %d bytes, got %d", MinKeySize, blake2b.Size, len(key))
	}
	return &Signer{keyID: keyID, key: append([]byte(nil), key...), now: time.Now}, nil
}

// KeyID returns the key pair id.
func (s *Signer) KeyID() string {
	return s.keyID
}

func (s *Signer) mac(data []byte) ([]byte, error) {
	h, err := blake2b.New256(s.key)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// Sign returns the encoded policy and signature.
func (s *Signer) Sign(p Policy) (policy, signature string, err error) {
	raw, err := p.marshal()
	if err != nil {
		return "", "", fmt.Errorf("signer: marshal policy: %w", err)
	}
	sum, err := s.mac(raw)
	if err != nil {
		return "", "", fmt.Errorf("signer: mac: %w", err)
	}
	return EncodeURLSafe(raw), EncodeURLSafe(sum), nil
}

// Cookies signs p and returns the three cookies carrying it.
func (s *Signer) Cookies(p Policy, opts CookieOptions) ([]*http.Cookie, error) {
	policy, sig, err := s.Sign(p)
	if err != nil {
		return nil, err
	}
	path := opts.Path
	if path == "" {
		path = "/"
	}
	maxAge := 0
	if opts.MaxAge {
		maxAge = int(time.Until(p.Expires).Seconds())
	}

	out := make([]*http.Cookie, 0, 3)
	for _, kv := range [][2]string{
		{CookiePolicy, policy},
		{CookieSignature, sig},
		{CookieKeyPairID, s.keyID},
	} {
		out = append(out, &http.Cookie{
			Name:     kv[0],
			Value:    kv[1],
			Path:     path,
			Domain:   opts.Domain,
			Secure:   opts.Secure,
			HttpOnly: opts.HTTPOnly,
			SameSite: opts.SameSite,
			MaxAge:   maxAge,
		})
	}
	return out, nil
}

// VerifyValues checks an encoded policy and signature produced by keyID.
func (s *Signer) VerifyValues(keyID, policy, signature string) (Policy, error) {
	if keyID != s.keyID {
		return Policy{}, ErrKeyMismatch
	}
	raw, err := DecodeURLSafe(policy)
	if err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrMalformedPolicy, err)
	}
	got, err := DecodeURLSafe(signature)
	if err != nil {
		return Policy{}, ErrInvalidSignature
	}
	want, err := s.mac(raw)
	if err != nil {
		return Policy{}, fmt.Errorf("signer: mac: %w", err)
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return Policy{}, ErrInvalidSignature
	}

	p, err := unmarshalPolicy(raw)
	if err != nil {
		return Policy{}, err
	}
	if !s.now().Before(p.Expires) {
		return Policy{}, ErrExpired
	}
	return p, nil
}

// Verify checks the policy cookies of r and that they cover path.
func (s *Signer) Verify(r *http.Request, path string) (Policy, error) {
	values := make(map[string]string, 3)
	for _, name := range []string{CookiePolicy, CookieSignature, CookieKeyPairID} {
		c, err := r.Cookie(name)
		if err != nil {
			return Policy{}, ErrMissingCookie
		}
		values[name] = c.Value
	}

	p, err := s.VerifyValues(values[CookieKeyPairID], values[CookiePolicy], values[CookieSignature])
	if err != nil {
		return Policy{}, err
	}
	if !p.Covers(path) {
		return p, ErrNotCovered
	}
	return p, nil
}

// FolderResource returns the policy resource granting a folder.
func FolderResource(folder string) string {
	return "/" + strings.TrimPrefix(folder, "/") + "*"
}
