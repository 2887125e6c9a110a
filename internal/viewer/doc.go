// Package viewer orchestrates one gallery page load: parse the landing
// query, list the folder, probe access, render and measure tiles, then hand
// interaction over to the slideshow.
//
// A Session lives from one landing URL to the next. Renewal replaces it
// wholesale; only the refresh state kept in a refresh.Store crosses over.
package viewer
