package tui

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gallery-viewer/internal/client"
	"gallery-viewer/internal/loader"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/viewer"
)

// fakeServer answers every request with 200 unless status says otherwise.
type fakeServer struct {
	mu      sync.Mutex
	listing client.Listing
	listErr error
	status  map[string]int
}

func (f *fakeServer) code(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.status[url]; ok {
		return c
	}
	return http.StatusOK
}

func (f *fakeServer) List(context.Context, string, string) (client.Listing, error) {
	return f.listing, f.listErr
}

func (f *fakeServer) Probe(_ context.Context, url string) error {
	if c := f.code(url); c != http.StatusOK {
		return &loader.StatusError{URL: url, Code: c}
	}
	return nil
}

func (f *fakeServer) Download(_ context.Context, url string, w io.Writer) (int64, error) {
	if c := f.code(url); c != http.StatusOK {
		return 0, &loader.StatusError{URL: url, Code: c}
	}
	n, err := io.WriteString(w, "bytes:"+url)
	return int64(n), err
}

func (f *fakeServer) Fetch(_ context.Context, url string) (loader.Media, error) {
	if c := f.code(url); c != http.StatusOK {
		return loader.Media{}, &loader.StatusError{URL: url, Code: c}
	}
	return loader.Media{URL: url, ContentType: "image/jpeg", Width: 100, Height: 50, Size: 2048}, nil
}

func newTestModel(t *testing.T, srv *fakeServer, landing string) Model {
	t.Helper()
	m := New(Options{
		API:         srv,
		Renewer:     &fakeRenewer{landing: landing},
		Images:      srv,
		Videos:      srv,
		Start:       refresh.RenewalURL("tok"),
		DownloadDir: t.TempDir(),
		Workers:     2,
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

// land resolves the start URL and, when a session was created, runs its load.
func land(t *testing.T, m Model) Model {
	t.Helper()
	msg := resolveCmd(m.ctx, m.opts.Renewer, m.gen, m.opts.Start)()
	m, cmd := update(t, m, msg)
	if cmd == nil {
		return m
	}
	m, _ = update(t, m, cmd())
	t.Cleanup(m.Close)
	return m
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func galleryServer(files ...string) *fakeServer {
	return &fakeServer{listing: client.Listing{Files: files}, status: map[string]int{}}
}

var galleryLanding = viewer.IndexURL("gallery/a/", "tok")

// =============================================================================
// Loading Tests
// =============================================================================

func TestModelLoadsGallery(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg", "gallery/a/two.jpg", "gallery/a/notes.txt")
	m := land(t, newTestModel(t, srv, galleryLanding))

	if m.phase != phaseReady {
		t.Fatalf("phase = %d, want ready", m.phase)
	}
	if got := len(m.session.Tiles()); got != 2 {
		t.Errorf("tiles = %d, want 2", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	view := m.View()
	for _, want := range []string{"gallery/a/", "one.jpg", "two.jpg", "Loaded 2 items"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if m.token != "tok" {
		t.Errorf("token = %q", m.token)
	}
}

func TestModelListingFailure(t *testing.T) {
	t.Parallel()

	srv := galleryServer()
	srv.listErr = client.ErrNotFound
	m := land(t, newTestModel(t, srv, galleryLanding))

	if m.phase != phaseError || m.route == nil || m.route.Code != http.StatusNotFound {
		t.Fatalf("phase = %d, route = %+v", m.phase, m.route)
	}
	if !strings.Contains(m.View(), viewer.ReasonMessage(viewer.ReasonNotFound)) {
		t.Error("error view does not explain the failure")
	}
}

func TestModelErrorLandingAndRetry(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg")
	m := land(t, newTestModel(t, srv, "/site/error.html?code=403&reason=link_expired"))

	if m.phase != phaseError {
		t.Fatalf("phase = %d, want error", m.phase)
	}
	view := m.View()
	if !strings.Contains(view, viewer.ReasonMessage(viewer.ReasonLinkExpired)) {
		t.Errorf("error view = %q", view)
	}

	m, cmd := update(t, m, keyRunes('r'))
	if cmd == nil || m.phase != phaseNavigating || m.gen != 2 {
		t.Errorf("retry: phase = %d, gen = %d, cmd nil = %v", m.phase, m.gen, cmd == nil)
	}
}

func TestModelIgnoresStaleMessages(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, galleryServer(), galleryLanding)

	m, cmd := update(t, m, landedMsg{gen: 0, route: clientError()})
	if cmd != nil || m.phase != phaseNavigating {
		t.Errorf("stale landing applied: phase = %d", m.phase)
	}
	m, _ = update(t, m, loadedMsg{gen: 0, err: viewer.ErrRedirected})
	if m.phase != phaseNavigating {
		t.Errorf("stale load applied: phase = %d", m.phase)
	}
}

func TestModelFollowsQueuedNavigation(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg")
	m := land(t, newTestModel(t, srv, galleryLanding))

	_ = m.nav.Replace(refresh.RenewalURL("fresh"))
	m, cmd := update(t, m, changedMsg{})

	if cmd == nil {
		t.Fatal("expected commands after a change")
	}
	if m.phase != phaseNavigating || m.gen != 2 || m.session != nil {
		t.Errorf("phase = %d, gen = %d, session = %v", m.phase, m.gen, m.session)
	}
	if m.token != "fresh" {
		t.Errorf("token = %q, want fresh", m.token)
	}
}

// =============================================================================
// Interaction Tests
// =============================================================================

func TestModelOpensAndClosesModal(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg", "gallery/a/two.jpg")
	m := land(t, newTestModel(t, srv, galleryLanding))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	v := m.surface.snapshot()
	if !v.Open || v.Title != "two.jpg" {
		t.Fatalf("modal = %+v", v)
	}
	if !strings.Contains(m.View(), "2 / 2") {
		t.Error("modal view does not show the position")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.surface.snapshot().Title; got != "one.jpg" {
		t.Errorf("title after left = %q", got)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.surface.snapshot().Open {
		t.Error("escape did not close the modal")
	}
}

func TestModelMouse(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg", "gallery/a/two.jpg")
	m := land(t, newTestModel(t, srv, galleryLanding))

	press := tea.MouseMsg{X: 3, Y: headerRows + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, _ = update(t, m, press)
	if v := m.surface.snapshot(); !v.Open || v.Title != "one.jpg" {
		t.Fatalf("click did not open the first tile: %+v", v)
	}

	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.surface.snapshot().Open {
		t.Error("backdrop click did not close the modal")
	}
}

func TestModelSwipe(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg", "gallery/a/two.jpg")
	m := land(t, newTestModel(t, srv, galleryLanding))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = update(t, m, tea.MouseMsg{X: 40, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 30, Y: 20, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	v := m.surface.snapshot()
	if !v.Open || v.Title != "two.jpg" {
		t.Errorf("swipe left should show the next item, got %+v", v)
	}
}

func TestModelDownloadsOriginal(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg")
	m := land(t, newTestModel(t, srv, galleryLanding))

	m, cmd := update(t, m, keyRunes('d'))
	if cmd == nil {
		t.Fatal("expected a download command")
	}
	msg, ok := cmd().(downloadedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("download = %+v", msg)
	}
	want := filepath.Join(m.opts.DownloadDir, "one.jpg")
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "bytes:/gallery/a/one.jpg" {
		t.Errorf("saved %q, %v", data, err)
	}

	m, _ = update(t, m, msg)
	if toast, _ := m.toasts.current(); toast != "Saved "+want {
		t.Errorf("toast = %q", toast)
	}
}

func TestModelDownloadFailureToasts(t *testing.T) {
	t.Parallel()

	srv := galleryServer("gallery/a/one.jpg")
	m := land(t, newTestModel(t, srv, galleryLanding))
	srv.mu.Lock()
	srv.status["/gallery/a/one.jpg"] = http.StatusInternalServerError
	srv.mu.Unlock()

	m, cmd := update(t, m, keyRunes('d'))
	m, _ = update(t, m, cmd())
	if toast, _ := m.toasts.current(); toast != "Download failed: one.jpg" {
		t.Errorf("toast = %q", toast)
	}
}

func TestModelArchive(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		m := land(t, newTestModel(t, galleryServer("gallery/a/one.jpg"), galleryLanding))
		m, cmd := update(t, m, keyRunes('z'))
		if cmd != nil {
			t.Error("expected no command without an archive")
		}
		if toast, _ := m.toasts.current(); toast != "No archive for this folder" {
			t.Errorf("toast = %q", toast)
		}
	})

	t.Run("present", func(t *testing.T) {
		t.Parallel()
		srv := galleryServer("gallery/a/one.jpg")
		srv.listing.Zip = "gallery/a/a.zip"
		m := land(t, newTestModel(t, srv, galleryLanding))
		_, cmd := update(t, m, keyRunes('z'))
		if cmd == nil {
			t.Fatal("expected an archive download")
		}
		msg := cmd().(downloadedMsg)
		if msg.err != nil || filepath.Base(msg.path) != "a.zip" {
			t.Errorf("download = %+v", msg)
		}
	})
}

func TestModelQuit(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, galleryServer(), galleryLanding)
	_, cmd := update(t, m, keyRunes('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
