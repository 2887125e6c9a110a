package signer

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestSigner(t *testing.T, now time.Time) *Signer {
	t.Helper()
	s, err := New("K1", testKey)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.now = func() time.Time { return now }
	return s
}

func TestEncodeURLSafe(t *testing.T) {
	t.Parallel()

	// 0xfb 0xff encodes to "+/8=" in standard base64.
	data := []byte{0xfb, 0xff}
	got := EncodeURLSafe(data)
	if got != "-~8_" {
		t.Errorf("EncodeURLSafe() = %q, want %q", got, "-~8_")
	}
	back, err := DecodeURLSafe(got)
	if err != nil || !bytes.Equal(back, data) {
		t.Errorf("DecodeURLSafe() = %v, %v", back, err)
	}
}

func TestNewValidatesKey(t *testing.T) {
	t.Parallel()

	if _, err := New("", testKey); err == nil {
		t.Error("New() without key id succeeded")
	}
	if _, err := New("K", []byte("short")); err == nil {
		t.Error("New() with short key succeeded")
	}
	if _, err := New("K", make([]byte, 65)); err == nil {
		t.Error("New() with oversized key succeeded")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	s := newTestSigner(t, now)
	p := Policy{Resource: FolderResource("gallery/a/"), Expires: now.Add(time.Hour)}

	policy, sig, err := s.Sign(p)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if strings.ContainsAny(policy+sig, "+/=") {
		t.Errorf("encoded values contain unsafe characters: %q %q", policy, sig)
	}

	got, err := s.VerifyValues("K1", policy, sig)
	if err != nil {
		t.Fatalf("VerifyValues() error = %v", err)
	}
	if got.Resource != "/gallery/a/*" || !got.Expires.Equal(p.Expires) {
		t.Errorf("VerifyValues() = %+v", got)
	}
}

func TestVerifyValuesErrors(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	s := newTestSigner(t, now)
	policy, sig, _ := s.Sign(Policy{Resource: "/gallery/a/*", Expires: now.Add(time.Minute)})
	expiredPolicy, expiredSig, _ := s.Sign(Policy{Resource: "/gallery/a/*", Expires: now})

	other, _ := New("K1", []byte("ffffffffffffffffffffffffffffffff"))
	forgedPolicy, forgedSig, _ := other.Sign(Policy{Resource: "/*", Expires: now.Add(time.Hour)})

	tests := []struct {
		name      string
		keyID     string
		policy    string
		signature string
		want      error
	}{
		{"wrong key id", "K2", policy, sig, ErrKeyMismatch},
		{"tampered policy", "K1", EncodeURLSafe([]byte(`{"Statement":[{"Resource":"/*"}]}`)), sig, ErrInvalidSignature},
		{"signed by another key", "K1", forgedPolicy, forgedSig, ErrInvalidSignature},
		{"garbage signature", "K1", policy, "!!!", ErrInvalidSignature},
		{"expired", "K1", expiredPolicy, expiredSig, ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.VerifyValues(tt.keyID, tt.policy, tt.signature)
			if !errors.Is(err, tt.want) {
				t.Errorf("VerifyValues() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPolicyCovers(t *testing.T) {
	t.Parallel()

	p := Policy{Resource: "/gallery/a/*"}
	tests := []struct {
		path string
		want bool
	}{
		{"/gallery/a/1.jpg", true},
		{"/gallery/a/sub/2.jpg", true},
		{"/gallery/ab/1.jpg", false},
		{"/gallery/b/1.jpg", false},
	}
	for _, tt := range tests {
		if got := p.Covers(tt.path); got != tt.want {
			t.Errorf("Covers(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	exact := Policy{Resource: "/x.jpg"}
	if !exact.Covers("/x.jpg") || exact.Covers("/x.jpg2") {
		t.Error("exact resource matching is wrong")
	}
}

func TestCookiesAndVerify(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := newTestSigner(t, now)
	cookies, err := s.Cookies(Policy{Resource: "/gallery/a/*", Expires: now.Add(time.Hour)}, CookieOptions{
		Secure:   true,
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if err != nil {
		t.Fatalf("Cookies() error = %v", err)
	}
	if len(cookies) != 3 {
		t.Fatalf("len(cookies) = %d, want 3", len(cookies))
	}
	for _, c := range cookies {
		if c.Path != "/" || !c.Secure || !c.HttpOnly || c.MaxAge != 0 {
			t.Errorf("cookie %s attributes = %+v", c.Name, c)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/gallery/a/1.jpg", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	if _, err := s.Verify(req, "/gallery/a/1.jpg"); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if _, err := s.Verify(req, "/gallery/b/1.jpg"); !errors.Is(err, ErrNotCovered) {
		t.Errorf("Verify(other folder) error = %v, want ErrNotCovered", err)
	}

	bare := httptest.NewRequest(http.MethodGet, "/gallery/a/1.jpg", nil)
	if _, err := s.Verify(bare, "/gallery/a/1.jpg"); !errors.Is(err, ErrMissingCookie) {
		t.Errorf("Verify(no cookies) error = %v", err)
	}
}

func TestCookiesMaxAge(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t, time.Now())
	cookies, err := s.Cookies(Policy{Resource: "/a/*", Expires: time.Now().Add(time.Hour)}, CookieOptions{MaxAge: true})
	if err != nil {
		t.Fatalf("Cookies() error = %v", err)
	}
	if cookies[0].MaxAge < 3500 || cookies[0].MaxAge > 3600 {
		t.Errorf("MaxAge = %d, want about 3600", cookies[0].MaxAge)
	}
}
