// Package thumbnail maps original media keys to the keys and URLs of their
// pre-generated thumbnails.
//
// Originals live under a source prefix and thumbnails under a sibling root
// that mirrors the original folder structure:
//
//	gallery/<album>/file.ext  ->  thumbs/<album>/thumb-of-file.jpg
//	                              thumbs/<album>/thumb-of-file.png
//
// The same Resolver is used by the viewer, to decide what to load, and by the
// server-side generator, to decide where to write.
package thumbnail
