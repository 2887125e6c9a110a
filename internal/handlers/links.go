package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gallery-viewer/internal/database"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/metrics"
	"gallery-viewer/internal/signer"
	"gallery-viewer/internal/viewer"
)

// ListResponse is the body of a folder listing.
type ListResponse struct {
	Files []string `json:"files"`
	Zip   string   `json:"zip,omitempty"`
}

// OpenLink exchanges a share token for policy cookies and redirects to the
// landing view of the link's folder.
func (h *Handlers) OpenLink(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("t"))
	if token == "" {
		metrics.LinkOpensTotal.WithLabelValues("invalid").Inc()
		h.redirectError(w, r, viewer.ErrorRoute{Code: http.StatusForbidden, Reason: viewer.ReasonMissingToken})
		return
	}

	link, err := h.links.GetLink(r.Context(), token)
	switch {
	case errors.Is(err, database.ErrLinkExpired):
		metrics.LinkOpensTotal.WithLabelValues("expired").Inc()
		h.redirectError(w, r, viewer.ErrorRoute{Code: http.StatusForbidden, Reason: viewer.ReasonLinkExpired})
		return
	case errors.Is(err, database.ErrLinkNotFound):
		metrics.LinkOpensTotal.WithLabelValues("invalid").Inc()
		h.redirectError(w, r, viewer.ErrorRoute{Code: http.StatusNotFound, Reason: viewer.ReasonNotFound})
		return
	case err != nil:
		logging.Error("open: lookup failed: %v", err)
		http.Error(w, "Failed to open link", http.StatusInternalServerError)
		return
	}

	policy := signer.Policy{
		Resource: signer.FolderResource(link.Folder),
		Expires:  h.now().Add(link.CookieTTL),
	}
	cookies, err := h.signer.Cookies(policy, h.cookies)
	if err != nil {
		logging.Error("open: sign policy for %s: %v", link.Folder, err)
		http.Error(w, "Failed to open link", http.StatusInternalServerError)
		return
	}
	for _, c := range cookies {
		http.SetCookie(w, c)
	}

	metrics.LinkOpensTotal.WithLabelValues("ok").Inc()
	logging.Debug("open: link %d granted %s until %s", link.ID, link.Folder, policy.Expires.UTC().Format("2006-01-02T15:04:05Z"))

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, viewer.IndexURL(link.Folder, token), http.StatusFound)
}

func (h *Handlers) redirectError(w http.ResponseWriter, r *http.Request, route viewer.ErrorRoute) {
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, route.URL(), http.StatusFound)
}

// ListFolder returns the keys under a folder for a share token whose link
// grants that folder.
func (h *Handlers) ListFolder(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	defer func() {
		metrics.ListingsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	}()
	fail := func(code int, reason string) {
		status = code
		writeJSONError(w, reason, code)
	}

	q := r.URL.Query()
	folder, ok := mediatypes.NormalizeFolder(q.Get("folder"))
	if !ok || strings.Contains(folder, "..") {
		fail(http.StatusBadRequest, viewer.ReasonMissingFolder)
		return
	}
	token := strings.TrimSpace(q.Get("t"))
	if token == "" {
		fail(http.StatusForbidden, viewer.ReasonMissingToken)
		return
	}

	link, err := h.links.GetLink(r.Context(), token)
	if errors.Is(err, database.ErrLinkNotFound) || errors.Is(err, database.ErrLinkExpired) {
		fail(http.StatusForbidden, viewer.ReasonLinkExpired)
		return
	}
	if err != nil {
		logging.Error("list: lookup failed: %v", err)
		fail(http.StatusInternalServerError, viewer.ReasonListFailed)
		return
	}
	if !strings.HasPrefix(folder, link.Folder) {
		logging.Debug("list: link %d for %s does not grant %s", link.ID, link.Folder, folder)
		fail(http.StatusForbidden, viewer.ReasonLinkExpired)
		return
	}

	objects, err := h.objects.List(r.Context(), folder)
	if err != nil {
		logging.Error("list: %s: %v", folder, err)
		fail(http.StatusInternalServerError, viewer.ReasonListFailed)
		return
	}

	archive, hasArchive := h.objects.ArchiveKey(folder)
	resp := ListResponse{Files: make([]string, 0, len(objects))}
	for _, obj := range objects {
		if hasArchive && obj.Key == archive {
			continue
		}
		resp.Files = append(resp.Files, obj.Key)
	}
	if len(resp.Files) == 0 {
		fail(http.StatusNotFound, viewer.ReasonNotFound)
		return
	}
	if hasArchive {
		resp.Zip = archive
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, resp)
}
