package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionStore is a scoped key/value view over the session_storage table.
// Each viewer profile gets its own scope, so its refresh cooldown and
// resume position survive restarts without leaking into other profiles.
type SessionStore struct {
	d     *Database
	scope string
}

// SessionStore returns the store for scope.
func (d *Database) SessionStore(scope string) *SessionStore {
	return &SessionStore{d: d, scope: scope}
}

// Get returns the value for key, reporting false when absent.
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("session_get", start, err) }()

	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err = s.d.db.QueryRowContext(ctx,
		"SELECT value FROM session_storage WHERE scope = ? AND key = ?", s.scope, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("session_set", start, err) }()

	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.d.db.ExecContext(ctx, `
		INSERT INTO session_storage (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.scope, key, value, s.d.now().Unix())
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("session_delete", start, err) }()

	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.d.db.ExecContext(ctx,
		"DELETE FROM session_storage WHERE scope = ? AND key = ?", s.scope, key)
	return err
}
