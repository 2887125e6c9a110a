// Package objectstore is a filesystem-backed bucket. Keys are
// slash-separated paths relative to the root directory, listed in
// lexicographic order the way S3 lists them.
//
// Writes go through a hidden temp file and a rename, so readers never see a
// partially written object. Stats and opens retry on NFS stale handles.
package objectstore
