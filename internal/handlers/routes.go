package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/viewer"
)

// Register adds the gallery routes to r. The object route matches every
// remaining path, so it is registered last.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc(refresh.RenewalPath, h.OpenLink).Methods(http.MethodGet)
	r.HandleFunc("/list", h.ListFolder).Methods(http.MethodGet)
	r.HandleFunc(viewer.IndexPath, h.IndexPage).Methods(http.MethodGet)
	r.HandleFunc(viewer.ErrorPath, h.ErrorPage).Methods(http.MethodGet)

	r.HandleFunc("/{key:.*}", h.ServeObject).Methods(http.MethodGet, http.MethodHead)
}
