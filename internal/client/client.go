package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"gallery-viewer/internal/loader"
	"gallery-viewer/internal/refresh"
)

// Listing errors.
var (
	ErrCredentialInvalid = errors.New("access credential invalid")
	ErrNotFound          = errors.New("folder not found")
	ErrListFailed        = errors.New("listing failed")
)

// SessionHeader carries the viewer session id on every request.
const SessionHeader = "X-Gallery-Session"

const (
	defaultUserAgent = "gallery-viewer/1.0"
	// requestTimeout bounds listing, probe and renewal exchanges, and the
	// wait for response headers on every request. Bodies of downloads and
	// media are bounded only by the caller's context.
	requestTimeout = 30 * time.Second
)

// Listing is the response of the listing endpoint.
type Listing struct {
	Files     []string `json:"files"`
	Zip       string   `json:"zip,omitempty"`
	ZipKey    string   `json:"zipKey,omitempty"`
	ZipKeyAlt string   `json:"zip_key,omitempty"`
}

// ArchiveKey returns the precomputed archive key, whichever field carried it.
func (l Listing) ArchiveKey() string {
	for _, k := range []string{l.Zip, l.ZipKey, l.ZipKeyAlt} {
		if k != "" {
			return k
		}
	}
	return ""
}

// Client talks to one gallery server.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	session   string
	timeout   time.Duration
}

// New builds a Client for a server base URL such as http://127.0.0.1:8080.
func New(base string) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = requestTimeout
	return &Client{
		baseURL: u,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
		},
		userAgent: defaultUserAgent,
		session:   uuid.NewString(),
		timeout:   requestTimeout,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("server url required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q has no host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// SessionID returns the id sent with every request.
func (c *Client) SessionID() string {
	return c.session
}

// Resolve turns a server-relative URL into an absolute one.
func (c *Client) Resolve(rel string) (string, error) {
	r, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rel, err)
	}
	return c.baseURL.ResolveReference(r).String(), nil
}

func (c *Client) newRequest(ctx context.Context, method, rel string) (*http.Request, error) {
	abs, err := c.Resolve(rel)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, abs, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(SessionHeader, c.session)
	req.Header.Set("Cache-Control", "no-store")
	return req, nil
}

func (c *Client) do(ctx context.Context, method, rel string, header http.Header) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, rel)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// bounded limits a short exchange to the client timeout.
func (c *Client) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// List fetches the keys under folder.
func (c *Client) List(ctx context.Context, folder, token string) (Listing, error) {
	values := url.Values{}
	values.Set("folder", folder)
	values.Set("t", token)
	rel := (&url.URL{Path: "/list", RawQuery: values.Encode()}).String()

	ctx, cancel := c.bounded(ctx)
	defer cancel()
	resp, err := c.do(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return Listing{}, fmt.Errorf("%w: %v", ErrListFailed, err)
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Listing{}, fmt.Errorf("list %s: %w", folder, ErrCredentialInvalid)
	case resp.StatusCode == http.StatusNotFound:
		return Listing{}, fmt.Errorf("list %s: %w", folder, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Listing{}, fmt.Errorf("list %s: status %d: %w", folder, resp.StatusCode, ErrListFailed)
	}

	var l Listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return Listing{}, fmt.Errorf("decode listing: %v: %w", err, ErrListFailed)
	}
	return l, nil
}

// Probe issues a HEAD for a media URL. Non-2xx answers are returned as
// *loader.StatusError.
func (c *Client) Probe(ctx context.Context, rel string) error {
	ctx, cancel := c.bounded(ctx)
	defer cancel()
	resp, err := c.do(ctx, http.MethodHead, rel, nil)
	if err != nil {
		return err
	}
	drain(resp)
	return statusError(rel, resp)
}

// Renew visits the renewal endpoint for token and follows its redirect.
// It returns the server-relative URL it landed on.
func (c *Client) Renew(ctx context.Context, token string) (string, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()
	resp, err := c.do(ctx, http.MethodGet, refresh.RenewalURL(token), nil)
	if err != nil {
		return "", fmt.Errorf("renew: %w", err)
	}
	defer drain(resp)

	landed := resp.Request.URL
	rel := (&url.URL{Path: landed.Path, RawPath: landed.RawPath, RawQuery: landed.RawQuery}).String()
	if err := statusError(rel, resp); err != nil {
		return rel, fmt.Errorf("renew: %w", err)
	}
	return rel, nil
}

// Download writes the body of rel to w and returns the byte count.
func (c *Client) Download(ctx context.Context, rel string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return 0, err
	}
	defer drain(resp)

	if err := statusError(rel, resp); err != nil {
		return 0, err
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", rel, err)
	}
	return n, nil
}

func statusError(rel string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	return &loader.StatusError{URL: rel, Code: resp.StatusCode}
}
