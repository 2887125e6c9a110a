package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gallery-viewer/internal/handlers"
	"gallery-viewer/internal/media"
	"gallery-viewer/internal/middleware"
	"gallery-viewer/internal/startup"
)

// =============================================================================
// Test Fakes
// =============================================================================

type fakeLinkStats struct {
	active int
	err    error
	conns  int
}

func (f fakeLinkStats) CountActiveLinks(context.Context) (int, error) { return f.active, f.err }
func (f fakeLinkStats) OpenConnections() int                          { return f.conns }

type fakeSweeps struct{ stats media.SweepStats }

func (f fakeSweeps) LastSweep() media.SweepStats { return f.stats }

type fakePruner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *fakePruner) DeleteExpiredLinks(context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return 1, p.err
}

func (p *fakePruner) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// =============================================================================
// Stats Tests
// =============================================================================

func TestCollectStats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		db     fakeLinkStats
		sweeps sweepStats
		want   [4]int
	}{
		{
			name:   "links and sweep",
			db:     fakeLinkStats{active: 3, conns: 2},
			sweeps: fakeSweeps{media.SweepStats{Images: 10, Videos: 4}},
			want:   [4]int{3, 10, 4, 2},
		},
		{
			name: "thumbnails disabled",
			db:   fakeLinkStats{active: 1, conns: 1},
			want: [4]int{1, 0, 0, 1},
		},
		{
			name: "count failure",
			db:   fakeLinkStats{err: errors.New("locked"), conns: 5},
			want: [4]int{0, 0, 0, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := collectStats(tt.db, tt.sweeps).GetStats()
			got := [4]int{s.ActiveLinks, s.Images, s.Videos, s.Connections}
			if got != tt.want {
				t.Errorf("stats = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServerStatsWithoutGenerator(t *testing.T) {
	t.Parallel()

	s := serverStats(fakeLinkStats{active: 2}, nil).GetStats()
	if s.ActiveLinks != 2 || s.Images != 0 {
		t.Errorf("stats = %+v", s)
	}
}

// =============================================================================
// Background Worker Tests
// =============================================================================

func TestCleanupLinks(t *testing.T) {
	t.Parallel()

	pruner := &fakePruner{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanupLinks(ctx, pruner, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for pruner.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("cleanupLinks never pruned")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanupLinks did not stop on cancel")
	}
}

func TestCleanupLinksDisabled(t *testing.T) {
	t.Parallel()

	pruner := &fakePruner{}
	cleanupLinks(context.Background(), pruner, 0)
	if pruner.count() != 0 {
		t.Errorf("calls = %d, want 0", pruner.count())
	}
}

// =============================================================================
// Configuration Tests
// =============================================================================

func TestMediaOptions(t *testing.T) {
	t.Parallel()

	opts := mediaOptions(&startup.Config{
		ThumbMaxSize:     320,
		JPEGQuality:      90,
		ThumbDeciderMode: "pixels",
		ThumbMinMiB:      1.5,
		ThumbMinMaxDim:   800,
		ThumbWorkers:     3,
	})
	want := media.Options{
		MaxSize:     320,
		JPEGQuality: 90,
		Gate:        media.GatePixels,
		MinBytes:    1572864,
		MinMaxDim:   800,
		Workers:     3,
	}
	if opts != want {
		t.Errorf("mediaOptions() = %+v, want %+v", opts, want)
	}
}

func TestMetricsServerTimeouts(t *testing.T) {
	t.Parallel()

	srv := newMetricsServer("9090", http.NotFoundHandler())
	if srv.Addr != ":9090" {
		t.Errorf("Addr = %s", srv.Addr)
	}
	if srv.ReadTimeout == 0 || srv.WriteTimeout == 0 || srv.IdleTimeout == 0 {
		t.Errorf("metrics server timeouts must be bounded: %v %v %v", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// =============================================================================
// Router Tests
// =============================================================================

func TestRouterHealthEndpoints(t *testing.T) {
	t.Parallel()

	h := handlers.New(handlers.Config{})
	handler := wrapHandler(setupRouter(h), middleware.DefaultLoggingConfig())

	for _, path := range []string{"/healthz", "/livez", "/readyz", "/version"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers missing")
			}
		})
	}
}

func TestRouterCompressesJSON(t *testing.T) {
	t.Parallel()

	h := handlers.New(handlers.Config{})
	handler := wrapHandler(setupRouter(h), middleware.DefaultLoggingConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	// Small bodies stay uncompressed.
	if rec.Header().Get("Content-Encoding") != "" {
		t.Errorf("Content-Encoding = %q for a body under the minimum size", rec.Header().Get("Content-Encoding"))
	}
}
