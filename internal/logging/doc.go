// Package logging is the leveled logger shared by the gallery server and
// the terminal viewer.
//
// Levels, from most to least verbose: DEBUG, INFO, WARN, ERROR. FATAL always
// prints and exits. The initial level comes from DEBUG (any truthy value
// forces debug) or LOG_LEVEL; SetLevel overrides it at runtime.
//
// The terminal viewer owns the screen, so it redirects output to a file with
// SetOutput before starting its program.
package logging
