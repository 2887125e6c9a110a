package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/mux"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/metrics"
	"gallery-viewer/internal/objectstore"
	"gallery-viewer/internal/signer"
	"gallery-viewer/internal/streaming"
)

const objectCacheControl = "private, max-age=3600"

// Object kinds used as metric labels.
const (
	kindOriginal  = "original"
	kindThumbnail = "thumbnail"
	kindArchive   = "archive"
)

// ServeObject serves the object named by the {key} route variable to a
// request carrying a policy cookie that covers it. Thumbnails are covered
// by a grant on the folder of their original.
func (h *Handlers) ServeObject(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	kind := h.objectKind(key)

	cfg := streaming.DefaultConfig()
	cfg.OnStall = func(int64) { metrics.ObjectStreamsStalled.WithLabelValues(kind).Inc() }
	stream := streaming.NewWriter(w, cfg)
	defer stream.Close()

	sw := &statusWriter{ResponseWriter: stream, status: http.StatusOK}
	defer func() {
		metrics.ObjectRequestsTotal.WithLabelValues(kind, strconv.Itoa(sw.status)).Inc()
		if sw.status < http.StatusBadRequest {
			metrics.ObjectBytesServed.Add(float64(sw.written))
		}
	}()

	if key == "" {
		http.NotFound(sw, r)
		return
	}

	if err := h.authorize(r, key); err != nil {
		metrics.CookieVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
		logging.Debug("object: %s denied: %v", key, err)
		http.Error(sw, "Forbidden", http.StatusForbidden)
		return
	}
	metrics.CookieVerificationsTotal.WithLabelValues("ok").Inc()

	f, obj, err := h.objects.Open(key)
	if errors.Is(err, objectstore.ErrNotFound) || errors.Is(err, objectstore.ErrInvalidKey) {
		http.NotFound(sw, r)
		return
	}
	if err != nil {
		logging.Error("object: open %s: %v", key, err)
		http.Error(sw, "Failed to read object", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	header := sw.Header()
	header.Set("ETag", objectETag(obj))
	header.Set("Content-Type", mediatypes.MimeType(key))
	header.Set("Cache-Control", objectCacheControl)
	if kind == kindArchive {
		header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
	}

	http.ServeContent(sw, r, path.Base(key), obj.ModTime, f)
}

// authorize checks the policy cookies of r against key.
func (h *Handlers) authorize(r *http.Request, key string) error {
	p, err := h.signer.Verify(r, "/"+key)
	if !errors.Is(err, signer.ErrNotCovered) {
		return err
	}
	if dir, ok := h.resolver.SourceDir(key); ok && p.Covers("/"+dir) {
		return nil
	}
	return err
}

func (h *Handlers) objectKind(key string) string {
	if _, ok := h.resolver.SourceDir(key); ok {
		return kindThumbnail
	}
	if mediatypes.Ext(key) == ".zip" {
		return kindArchive
	}
	return kindOriginal
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, signer.ErrMissingCookie):
		return "missing"
	case errors.Is(err, signer.ErrExpired):
		return "expired"
	case errors.Is(err, signer.ErrNotCovered):
		return "not_covered"
	default:
		return "invalid"
	}
}

// objectETag derives a strong validator from the object's identity, size
// and modification time.
func objectETag(obj objectstore.Object) string {
	sum := xxhash.Sum64String(fmt.Sprintf("%s:%d:%d", obj.Key, obj.Size, obj.ModTime.UnixNano()))
	return fmt.Sprintf("%q", strconv.FormatUint(sum, 16))
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
