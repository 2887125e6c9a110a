// Package config loads the terminal viewer's settings.
//
// # Configuration Discovery
//
// Load reads the path it is given, or ~/.config/gallery-viewer/config.toml
// when the path is empty. A missing file is not an error: defaults are used
// and the viewer still starts when a share token arrives on the command line.
// Command line flags override anything the file sets.
//
// # TOML Format
//
//	server = "https://photos.example.com"
//	token = "Zb3v...share-token"
//	folder = "gallery/2024-italy/"   # optional, skips the /open redirect
//	download_dir = "~/Downloads"
//	log_file = "~/.local/share/gallery-viewer/viewer.log"
//	log_level = "info"
//	state_db = "~/.local/share/gallery-viewer/state.db"
//	video_tiles = true
//	tile_width = 24
//	flow = "shortest"                # or "columns"
//
//	# bucket layout, as set on the server
//	source_prefix = "gallery/"
//	thumb_root = "thumbs/"
//	thumb_prefix = "thumb-of-"
//
// Every field is optional. Paths go through tilde expansion and are made
// absolute.
package config
