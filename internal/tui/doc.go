// Package tui is the terminal gallery viewer.
//
// The Bubble Tea model drives a viewer.Session: it resolves the landing URL
// (renewing cookies through /open when handed a share token), lays the tiles
// out as a masonry grid, and renders the slideshow modal on top of it.
//
// Session collaborators (the slideshow surface, the refresh navigator and
// notifier) are called from loader goroutines, often with the slideshow lock
// held. They never talk to the program directly: they record state and poke
// a one-slot channel that the model drains between updates.
//
// Keys:
//
//	arrows / hjkl   move the cursor (grid) or navigate (modal)
//	enter           open the tile under the cursor
//	esc             close the modal
//	r               retry access for a broken tile
//	d               download the original
//	z               download the folder archive
//	q               quit
//
// Mouse: click a tile to open it, drag horizontally in the modal to swipe,
// click the backdrop to close.
package tui
