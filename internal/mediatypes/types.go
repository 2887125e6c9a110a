package mediatypes

import (
	"path"
	"strings"
)

// FileType represents the type of a media key.
type FileType string

const (
	// FileTypeImage represents an image object.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video object.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents anything the gallery does not render.
	FileTypeOther FileType = "other"
)

// ImageExtensions maps extensions (lowercase, with dot) to whether they are gallery images.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".avif": true,
	".bmp":  true,
}

// VideoExtensions maps extensions (lowercase, with dot) to whether they are gallery videos.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".m4v":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".avif": "image/avif",
	".bmp":  "image/bmp",

	// Videos
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",

	// Archives
	".zip": "application/zip",
}

// Ext returns the lowercased extension of the last segment of key, including
// the leading dot, or "" when there is none.
func Ext(key string) string {
	return strings.ToLower(path.Ext(Basename(key)))
}

// GetFileType returns the FileType for a given extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
func GetFileType(ext string) FileType {
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// Classify returns the FileType of a storage key based on its extension.
func Classify(key string) FileType {
	return GetFileType(Ext(key))
}

// IsImage reports whether key names an image.
func IsImage(key string) bool {
	return Classify(key) == FileTypeImage
}

// IsVideo reports whether key names a video.
func IsVideo(key string) bool {
	return Classify(key) == FileTypeVideo
}

// IsMedia reports whether key is an image or a video.
func IsMedia(key string) bool {
	return Classify(key) != FileTypeOther
}

// IsRenderable reports whether key gets a tile. Videos only qualify when
// video support is enabled.
func IsRenderable(key string, videos bool) bool {
	switch Classify(key) {
	case FileTypeImage:
		return true
	case FileTypeVideo:
		return videos
	default:
		return false
	}
}

// GetMimeType returns the MIME type for a given extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// MimeType returns the MIME type of a storage key.
func MimeType(key string) string {
	return GetMimeType(Ext(key))
}
