package handlers

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gallery-viewer/internal/logging"
)

// scrapeLog routes collection errors to the server log.
type scrapeLog struct{}

func (scrapeLog) Println(v ...interface{}) {
	logging.Warn("metrics: %s", fmt.Sprint(v...))
}

// MetricsHandler serves the gallery_* series and the Go runtime collectors
// on the metrics port. A failing collector is logged and skipped so that one
// bad gauge never blanks a scrape.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:      scrapeLog{},
			ErrorHandling: promhttp.ContinueOnError,
		}))
}
