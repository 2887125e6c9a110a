package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gallery-viewer/internal/metrics"
)

// ErrLinkNotFound is returned for unknown tokens.
var ErrLinkNotFound = errors.New("share link not found")

// ErrLinkExpired is returned for tokens past their expiry.
var ErrLinkExpired = errors.New("share link expired")

// ShareLink grants access to one folder. Token is only populated when the
// link is created; the database keeps a hash.
type ShareLink struct {
	ID        int64
	Token     string
	Folder    string
	CookieTTL time.Duration
	ExpiresAt time.Time
	CreatedAt time.Time
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateLink stores a new link for folder. Cookies issued for it live for
// cookieTTL from each open; the link stops opening after lifetime. A
// non-positive lifetime falls back to cookieTTL.
func (d *Database) CreateLink(ctx context.Context, folder string, cookieTTL, lifetime time.Duration) (*ShareLink, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_link", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tokenBytes := make([]byte, 24)
	if _, err = rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	now := d.now()
	if lifetime <= 0 {
		lifetime = cookieTTL
	}
	expiresAt := now.Add(lifetime)

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO share_links (token_hash, folder, cookie_ttl, expires_at, created_at) VALUES (?, ?, ?, ?, ?)",
		hashToken(token), folder, int64(cookieTTL.Seconds()), expiresAt.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create share link: %w", err)
	}
	id, _ := result.LastInsertId()
	metrics.ShareLinksCreated.Inc()

	return &ShareLink{
		ID:        id,
		Token:     token,
		Folder:    folder,
		CookieTTL: cookieTTL,
		ExpiresAt: time.Unix(expiresAt.Unix(), 0),
		CreatedAt: time.Unix(now.Unix(), 0),
	}, nil
}

// GetLink looks up a token. Expired links return the link together with
// ErrLinkExpired.
func (d *Database) GetLink(ctx context.Context, token string) (*ShareLink, error) {
	start := time.Now()
	var err error
	defer func() {
		qErr := err
		if errors.Is(qErr, ErrLinkNotFound) || errors.Is(qErr, ErrLinkExpired) {
			qErr = nil
		}
		recordQuery("get_link", start, qErr)
	}()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var link ShareLink
	var ttl, expiresAt, createdAt int64
	err = d.db.QueryRowContext(ctx,
		"SELECT id, folder, cookie_ttl, expires_at, created_at FROM share_links WHERE token_hash = ?",
		hashToken(token),
	).Scan(&link.ID, &link.Folder, &ttl, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrLinkNotFound
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share link: %w", err)
	}

	link.CookieTTL = time.Duration(ttl) * time.Second
	link.ExpiresAt = time.Unix(expiresAt, 0)
	link.CreatedAt = time.Unix(createdAt, 0)

	if !d.now().Before(link.ExpiresAt) {
		err = ErrLinkExpired
		return &link, err
	}
	return &link, nil
}

// CountActiveLinks returns the number of unexpired links.
func (d *Database) CountActiveLinks(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_links", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int
	err = d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM share_links WHERE expires_at > ?", d.now().Unix(),
	).Scan(&n)
	return n, err
}

// DeleteExpiredLinks removes links past their expiry and returns how many
// were removed.
func (d *Database) DeleteExpiredLinks(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_expired_links", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM share_links WHERE expires_at <= ?", d.now().Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
