// Package media generates gallery thumbnails.
//
// Every original under the source prefix gets a thumbnail at the key the
// thumbnail resolver derives for it:
//   - Images: fit into a square of MaxSize pixels with Lanczos resampling
//     and EXIF orientation applied; PNG when the source carries alpha,
//     JPEG otherwise
//   - Videos: a 16:9 placeholder with a play triangle and a "VIDEO" label
//
// libvips is used for decode-time shrinking when it was initialized with
// InitVips; imaging handles everything else.
package media
