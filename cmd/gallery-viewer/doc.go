// Command gallery-viewer browses a shared gallery folder in the terminal.
//
// Usage:
//
//	gallery-viewer [flags] [share URL]
//
// The share URL is what sharelink prints (https://host/open?t=...). It can
// also be given as -server and -t, or stored in
// ~/.config/gallery-viewer/config.toml; flags win over the file.
//
// Flags:
//
//	-config       config file path
//	-server       gallery server URL
//	-t            share token
//	-folder       open a folder directly instead of going through /open
//	-downloads    directory downloads are saved to
//	-log          log file (the terminal is used by the UI)
//	-tile-width   tile width in cells
//	-video-tiles  show videos in the grid
//
// Refresh cooldowns and resume positions are kept in a small SQLite file
// (state_db), so reopening the viewer after an expiry redirect resumes the
// slideshow where it stopped.
package main
