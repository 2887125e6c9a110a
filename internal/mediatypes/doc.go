// Package mediatypes classifies opaque storage keys and provides the small,
// dependency-free helpers every other package needs to talk about them.
//
// A key is a slash separated object path such as "gallery/album/img 1.jpg".
// Classification looks only at the lowercased extension:
//
//	switch mediatypes.Classify(key) {
//	case mediatypes.FileTypeImage:
//	    // jpg, jpeg, png, webp, gif, avif, bmp
//	case mediatypes.FileTypeVideo:
//	    // mp4, mov, webm, m4v
//	default:
//	    // excluded from the grid and from slideshow traversal
//	}
//
// # Keys and folders
//
// NormalizeFolder turns a user supplied folder into the canonical prefix form
// (no leading separator, exactly one trailing separator). EncodeKey escapes each
// segment on its own so that spaces and reserved characters survive transport
// while the separators stay structural.
//
// This package performs no I/O and has no failure modes.
package mediatypes
