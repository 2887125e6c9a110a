package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gallery-viewer/internal/database"
	"gallery-viewer/internal/filesystem"
	"gallery-viewer/internal/handlers"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/media"
	"gallery-viewer/internal/memory"
	"gallery-viewer/internal/metrics"
	"gallery-viewer/internal/middleware"
	"gallery-viewer/internal/objectstore"
	"gallery-viewer/internal/signer"
	"gallery-viewer/internal/startup"
	"gallery-viewer/internal/thumbnail"

	"github.com/gorilla/mux"
)

const (
	shutdownTimeout        = 30 * time.Second
	metricsCollectInterval = time.Minute
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(config.DatabasePath, time.Since(dbStart))

	store, err := objectstore.New(config.MediaDir)
	if err != nil {
		startup.LogFatal("Failed to open media directory: %v", err)
	}

	sign, err := signer.New(config.KeyPairID, config.SigningKey)
	if err != nil {
		startup.LogFatal("Failed to initialize cookie signer: %v", err)
	}

	resolver := thumbnail.NewResolver(config.ThumbnailLayout)

	var background sync.WaitGroup
	var generator *media.Generator
	if config.ThumbnailsEnabled {
		media.InitVips()
		defer media.ShutdownVips()

		monitor := memory.NewMonitor(memory.DefaultConfig())
		monitor.Start(ctx)

		generator = media.NewGenerator(store, resolver, mediaOptions(config), db)
		generator.SetPacer(monitor)
		background.Add(1)
		go func() {
			defer background.Done()
			generator.Run(ctx, config.ThumbnailInterval)
		}()
	}
	startup.LogThumbnailInit(config.ThumbnailsEnabled, media.IsVipsAvailable(), config.ThumbnailInterval)

	active, err := db.CountActiveLinks(ctx)
	if err != nil {
		logging.Warn("Failed to count share links: %v", err)
	}
	startup.LogLinkCleanupInit(config.LinkCleanupInterval, active)
	background.Add(1)
	go func() {
		defer background.Done()
		cleanupLinks(ctx, db, config.LinkCleanupInterval)
	}()

	collector := metrics.NewCollector(serverStats(db, generator), metricsCollectInterval)
	collector.Start()

	h := handlers.New(handlers.Config{
		Links:    db,
		Objects:  store,
		Signer:   sign,
		Resolver: resolver,
		Cookies:  config.Cookies,
		DB:       db,
	})

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      wrapHandler(router, loggingConfig),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // archives and videos stream for as long as they need
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h.MetricsHandler())
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, cancel)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		PublicURL:       config.PublicURL,
		AllowedPrefix:   config.AllowedFolderPrefix,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	// Let an in-flight sweep finish before libvips and the database close.
	background.Wait()
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.Register(r)
	return r
}

// wrapHandler applies the middleware that must see every request,
// including ones no route matches.
func wrapHandler(router http.Handler, loggingConfig middleware.LoggingConfig) http.Handler {
	handler := middleware.SecurityHeaders(router)
	handler = middleware.Logger(loggingConfig)(handler)
	return middleware.Compression(middleware.DefaultCompressionConfig())(handler)
}

func newMetricsServer(port string, handler http.Handler) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", handler)
	return &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func mediaOptions(config *startup.Config) media.Options {
	opts := media.DefaultOptions()
	opts.MaxSize = config.ThumbMaxSize
	opts.JPEGQuality = config.JPEGQuality
	opts.Gate = media.GateMode(config.ThumbDeciderMode)
	if config.ThumbMinMiB > 0 {
		opts.MinBytes = int64(config.ThumbMinMiB * 1024 * 1024)
	}
	opts.MinMaxDim = config.ThumbMinMaxDim
	opts.Workers = config.ThumbWorkers
	return opts
}

// linkStats is the part of the database the collector reads.
type linkStats interface {
	CountActiveLinks(ctx context.Context) (int, error)
	OpenConnections() int
}

// sweepStats is satisfied by *media.Generator.
type sweepStats interface {
	LastSweep() media.SweepStats
}

func serverStats(db linkStats, gen *media.Generator) metrics.StatsFunc {
	var sweeps sweepStats
	if gen != nil {
		sweeps = gen
	}
	return collectStats(db, sweeps)
}

func collectStats(db linkStats, sweeps sweepStats) metrics.StatsFunc {
	return func() metrics.Stats {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var stats metrics.Stats
		if n, err := db.CountActiveLinks(ctx); err != nil {
			logging.Warn("Failed to count share links: %v", err)
		} else {
			stats.ActiveLinks = n
		}
		stats.Connections = db.OpenConnections()
		if sweeps != nil {
			last := sweeps.LastSweep()
			stats.Images = last.Images
			stats.Videos = last.Videos
		}
		return stats
	}
}

type linkPruner interface {
	DeleteExpiredLinks(ctx context.Context) (int64, error)
}

// cleanupLinks prunes expired share links every interval until ctx is done.
func cleanupLinks(ctx context.Context, db linkPruner, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.DeleteExpiredLinks(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logging.Warn("Failed to prune expired share links: %v", err)
				}
				continue
			}
			if n > 0 {
				logging.Info("Pruned %d expired share links", n)
			}
		}
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	startup.LogShutdownStep("Stopping background workers")
	cancel()
	collector.Stop()
	startup.LogShutdownStepComplete("Background workers stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
