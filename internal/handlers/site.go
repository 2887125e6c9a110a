package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/viewer"
)

var indexPage = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Access to this folder has been granted for this browser.</p>
<p>Open it in the terminal viewer with:</p>
<pre>gallery-viewer -server {{.Server}} -folder {{.Folder}} -t {{.Token}}</pre>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Gallery unavailable</title></head>
<body>
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
<p><small>code {{.Code}}, reason {{.Reason}}</small></p>
</body>
</html>
`))

// IndexPage is the landing view of an opened link.
func (h *Handlers) IndexPage(w http.ResponseWriter, r *http.Request) {
	params, route := viewer.ParseQuery(r.URL.Query())
	if route != nil {
		http.Redirect(w, r, route.URL(), http.StatusFound)
		return
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	data := map[string]string{
		"Title":  "Gallery " + mediatypes.Basename(params.Folder),
		"Server": scheme + "://" + r.Host,
		"Folder": params.Folder,
		"Token":  params.Token,
	}
	renderPage(w, indexPage, data)
}

// ErrorPage renders an error view. It answers 200 so that clients following
// a redirect here land cleanly and read the code and reason from the URL.
func (h *Handlers) ErrorPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code, err := strconv.Atoi(q.Get("code"))
	if err != nil || code <= 0 {
		code = http.StatusBadRequest
	}
	reason := q.Get("reason")
	data := map[string]string{
		"Heading": strconv.Itoa(code) + " " + http.StatusText(code),
		"Message": viewer.ReasonMessage(reason),
		"Code":    strconv.Itoa(code),
		"Reason":  reason,
	}
	renderPage(w, errorPage, data)
}

func renderPage(w http.ResponseWriter, t *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := t.Execute(w, data); err != nil {
		logging.Error("failed to render %s page: %v", t.Name(), err)
	}
}
