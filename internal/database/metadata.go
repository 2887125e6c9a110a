package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const keyLastThumbnailSweep = "last_thumbnail_sweep"

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	start := time.Now()
	var err error
	defer func() {
		if errors.Is(err, sql.ErrNoRows) {
			recordQuery("get_metadata", start, nil)
			return
		}
		recordQuery("get_metadata", start, err)
	}()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err = d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_metadata", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastThumbnailSweep returns when the thumbnail sweep last finished.
// Returns zero time if it never ran.
func (d *Database) GetLastThumbnailSweep(ctx context.Context) (time.Time, error) {
	value, err := d.GetMetadata(ctx, keyLastThumbnailSweep)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// SetLastThumbnailSweep stores the completion time of a thumbnail sweep.
func (d *Database) SetLastThumbnailSweep(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		return d.SetMetadata(ctx, keyLastThumbnailSweep, "")
	}
	return d.SetMetadata(ctx, keyLastThumbnailSweep, t.Format(time.RFC3339))
}
