/*
Package streaming protects long object responses from stalled clients.

The gallery server runs without a global write timeout because archives and
videos may legitimately take minutes to download. Instead, object responses
go through a Writer that splits large writes into chunks and moves the
connection's write deadline forward before each one. A client that keeps
reading is never cut off; one that stops reading fails the next write with
ErrStalled once WriteTimeout elapses.

	sw := streaming.NewWriter(w, streaming.DefaultConfig())
	defer sw.Close()
	http.ServeContent(sw, r, name, modTime, f)

Deadlines travel through http.ResponseController, so every wrapper between
the Writer and the connection must implement Unwrap. When that is not
possible (for example httptest.ResponseRecorder) the Writer still chunks but
sets no deadlines.
*/
package streaming
