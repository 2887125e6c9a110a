package mediatypes

import (
	"net/url"
	"regexp"
	"strings"
)

// Separator is the structural separator of storage keys.
const Separator = "/"

var (
	unsafeZipChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// Basename returns the last path segment of key. A key without a usable last
// segment (for example one ending in a separator) is returned whole.
func Basename(key string) string {
	parts := strings.Split(key, Separator)
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return key
}

// NormalizeFolder trims whitespace and surrounding separators from raw and
// returns it with exactly one trailing separator. The second result is false
// when nothing is left.
func NormalizeFolder(raw string) (string, bool) {
	f := strings.TrimSpace(raw)
	f = strings.TrimLeft(f, Separator)
	f = strings.TrimRight(f, Separator)
	if f == "" {
		return "", false
	}
	return f + Separator, true
}

// EncodeKey percent-encodes every segment of key independently and joins them
// back with the separator.
func EncodeKey(key string) string {
	parts := strings.Split(key, Separator)
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, Separator)
}

// URL returns the server-relative URL of key.
func URL(key string) string {
	return Separator + EncodeKey(key)
}

// SafeZipName derives a download filename for a folder archive.
func SafeZipName(folder string) string {
	if folder == "" {
		folder = "gallery/"
	}
	name := strings.TrimRight(folder, Separator)
	name = unsafeZipChars.ReplaceAllString(name, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	return name + ".zip"
}
