package thumbnail

import (
	"path"
	"strings"

	"gallery-viewer/internal/mediatypes"
)

// Thumbnail output extensions, in the order they are tried.
const (
	ExtJPEG = ".jpg"
	ExtPNG  = ".png"
)

// Policy describes where originals and thumbnails live.
type Policy struct {
	// SourcePrefix is the prefix every original key must start with.
	// An empty prefix accepts every key.
	SourcePrefix string
	// ThumbRoot is the prefix the mirrored thumbnail tree is stored under.
	ThumbRoot string
	// FilePrefix is prepended to the stem of every thumbnail file name.
	FilePrefix string
}

// DefaultPolicy returns the bucket layout used by the gallery.
func DefaultPolicy() Policy {
	return Policy{
		SourcePrefix: "gallery/",
		ThumbRoot:    "thumbs/",
		FilePrefix:   "thumb-of-",
	}
}

// Resolver produces thumbnail candidates for original keys.
type Resolver struct {
	policy Policy
}

// NewResolver creates a Resolver for the given policy.
func NewResolver(p Policy) *Resolver {
	return &Resolver{policy: p}
}

// Policy returns the policy the resolver was created with.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// ThumbKey returns the thumbnail key of an original with the given forced
// extension. The second result is false when the key does not belong to the
// source prefix or has no file name.
func (r *Resolver) ThumbKey(key, ext string) (string, bool) {
	if key == "" || !strings.HasPrefix(key, r.policy.SourcePrefix) {
		return "", false
	}

	rel := strings.TrimPrefix(key, r.policy.SourcePrefix)
	var parts []string
	for _, p := range strings.Split(rel, mediatypes.Separator) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", false
	}

	base := parts[len(parts)-1]
	dir := strings.Join(parts[:len(parts)-1], mediatypes.Separator)
	name := r.policy.FilePrefix + strings.TrimSuffix(base, path.Ext(base)) + ext

	if dir == "" {
		return r.policy.ThumbRoot + name, true
	}
	return r.policy.ThumbRoot + dir + mediatypes.Separator + name, true
}

// CandidateKeys returns the ordered candidate keys for an original. Videos
// only ever get a JPEG thumbnail. Images get the JPEG thumbnail, the PNG
// thumbnail, then the original itself. Keys outside the source prefix and
// non-media keys get nothing.
func (r *Resolver) CandidateKeys(key string) []string {
	switch mediatypes.Classify(key) {
	case mediatypes.FileTypeVideo:
		if k, ok := r.ThumbKey(key, ExtJPEG); ok {
			return []string{k}
		}
		return nil
	case mediatypes.FileTypeImage:
		jpg, ok := r.ThumbKey(key, ExtJPEG)
		if !ok {
			return nil
		}
		png, _ := r.ThumbKey(key, ExtPNG)
		return []string{jpg, png, key}
	default:
		return nil
	}
}

// Candidates is CandidateKeys rendered as server-relative URLs.
func (r *Resolver) Candidates(key string) []string {
	keys := r.CandidateKeys(key)
	if len(keys) == 0 {
		return nil
	}
	urls := make([]string, len(keys))
	for i, k := range keys {
		urls[i] = mediatypes.URL(k)
	}
	return urls
}

// ThumbnailURLs returns only the thumbnail part of the candidates.
func (r *Resolver) ThumbnailURLs(key string) []string {
	orig := r.OriginalURL(key)
	var out []string
	for _, u := range r.Candidates(key) {
		if u != orig {
			out = append(out, u)
		}
	}
	return out
}

// OriginalURL returns the URL of the original object.
func (r *Resolver) OriginalURL(key string) string {
	return mediatypes.URL(key)
}

// TileCandidates returns the URLs a grid tile tries. Images fall back to the
// original; a video tile never proposes the video itself.
func (r *Resolver) TileCandidates(key string) []string {
	thumbs := r.ThumbnailURLs(key)
	if mediatypes.IsVideo(key) {
		return thumbs
	}
	return append(thumbs, r.OriginalURL(key))
}

// ModalCandidates returns the URLs the slideshow image tries: thumbnails
// first, then the original, without duplicates.
func (r *Resolver) ModalCandidates(key string) []string {
	return dedupe(append(r.ThumbnailURLs(key), r.OriginalURL(key)))
}

// Backdrop returns the first thumbnail URL, or the original when there is none.
func (r *Resolver) Backdrop(key string) string {
	if thumbs := r.ThumbnailURLs(key); len(thumbs) > 0 {
		return thumbs[0]
	}
	return r.OriginalURL(key)
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// SourceDir maps a thumbnail key back to the folder its original lives in,
// for example "thumbs/a/thumb-of-1.jpg" to "gallery/a/". The second result
// is false for keys outside the thumbnail tree.
func (r *Resolver) SourceDir(thumbKey string) (string, bool) {
	rel, ok := strings.CutPrefix(thumbKey, r.policy.ThumbRoot)
	if !ok || r.policy.ThumbRoot == "" {
		return "", false
	}
	dir, name := path.Split(rel)
	if !strings.HasPrefix(name, r.policy.FilePrefix) || name == r.policy.FilePrefix {
		return "", false
	}
	return r.policy.SourcePrefix + dir, true
}
