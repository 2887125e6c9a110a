package signer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TTL bounds for share links.
const (
	MinTTL     = 60 * time.Second
	DefaultTTL = 7 * 24 * time.Hour
	MaxTTL     = 14 * 24 * time.Hour
)

// ErrInvalidFolder is returned for folders a link may not grant.
var ErrInvalidFolder = errors.New("invalid folder")

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9._/-]+/$`)

// ValidateFolder normalizes a folder to key form ("gallery/a/") and checks
// it: only letters, digits and "._-/", no ".." or "//", and under the
// allowed prefix.
func ValidateFolder(folder, allowedPrefix string) (string, error) {
	f := strings.TrimSpace(folder)
	if f == "" {
		return "", fmt.Errorf("%w: folder is required", ErrInvalidFolder)
	}
	f = strings.TrimPrefix(f, "/")
	if !strings.HasSuffix(f, "/") {
		f += "/"
	}
	if strings.Contains(f, "..") || strings.Contains(f, "//") || strings.HasPrefix(f, "/") {
		return "", fmt.Errorf("%w: invalid folder path", ErrInvalidFolder)
	}
	prefix := strings.TrimPrefix(allowedPrefix, "/")
	if !strings.HasPrefix(f, prefix) {
		return "", fmt.Errorf("%w: folder must start with %s", ErrInvalidFolder, prefix)
	}
	if !folderPattern.MatchString(f) {
		return "", fmt.Errorf("%w: folder contains invalid characters", ErrInvalidFolder)
	}
	return f, nil
}

// ClampTTL applies the link TTL bounds: zero means DefaultTTL, anything
// below MinTTL is an error and anything above MaxTTL is capped.
func ClampTTL(ttl time.Duration) (time.Duration, error) {
	if ttl == 0 {
		return DefaultTTL, nil
	}
	if ttl < MinTTL {
		return 0, fmt.Errorf("ttl must be at least %s", MinTTL)
	}
	if ttl > MaxTTL {
		return MaxTTL, nil
	}
	return ttl, nil
}
