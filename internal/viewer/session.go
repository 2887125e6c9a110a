package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"gallery-viewer/internal/client"
	"gallery-viewer/internal/layout"
	"gallery-viewer/internal/loader"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/slideshow"
	"gallery-viewer/internal/thumbnail"
	"gallery-viewer/internal/workers"
)

// Session errors.
var (
	// ErrRedirected means a recovery redirect was initiated and the session
	// is finished.
	ErrRedirected = errors.New("viewer: redirected for access renewal")
	// ErrNoArchive means the listing carried no precomputed archive.
	ErrNoArchive = errors.New("viewer: no archive for this folder")
)

// Tile messages.
const (
	MsgTileBroken      = "Cannot load. Tap to refresh."
	MsgVideoTileBroken = "Cannot load the video thumbnail. Tap to refresh."
	MsgAccessExpired   = "Access expired. Open the link again."
	MsgNoMedia         = "No media found."
)

// resizeSettle is how long a resize burst must be quiet before the order is
// recomputed.
const resizeSettle = 200 * time.Millisecond

// API is the server surface a session needs; *client.Client implements it.
type API interface {
	List(ctx context.Context, folder, token string) (client.Listing, error)
	Probe(ctx context.Context, url string) error
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Recovery is the refresh coordinator as seen by a session.
type Recovery interface {
	RequestRecovery(ctx context.Context, pos int) bool
	ConsumeResume(ctx context.Context) (int, bool)
}

var _ Recovery = (*refresh.Coordinator)(nil)

// Tile is the rendering of one listed key.
type Tile struct {
	Index   int
	Key     string
	Type    mediatypes.FileType
	Source  string // candidate URL that loaded
	Width   int    // natural size, 0 when unknown
	Height  int
	Loaded  bool
	Broken  bool
	Message string
}

// Config wires a Session.
type Config struct {
	Params   Params
	API      API
	Images   loader.Fetcher
	Videos   loader.Fetcher
	Resolver *thumbnail.Resolver
	Recovery Recovery
	Surface  slideshow.Surface
	Notifier refresh.Notifier
	Masonry  layout.Masonry
	// VideoTiles renders videos in the grid.
	VideoTiles bool
	// Workers bounds concurrent tile loads; 0 picks a default.
	Workers int
	// OnChange is called whenever tiles or the order change.
	OnChange func()
}

// Session is one page load.
type Session struct {
	cfg Config

	mu      sync.RWMutex
	files   []string
	archive string
	tiles   []Tile
	byIndex map[int]int // file index -> tile slot
	masonry layout.Masonry
	status  string

	order *layout.Engine
	// ctrl is replaced by Load while the UI reads it.
	ctrl     atomic.Pointer[slideshow.Controller]
	debounce *layout.Debouncer
}

// NewSession creates a Session. Nothing is fetched until Load.
func NewSession(cfg Config) *Session {
	if cfg.Resolver == nil {
		cfg.Resolver = thumbnail.NewResolver(thumbnail.DefaultPolicy())
	}
	if cfg.Workers <= 0 {
		cfg.Workers = workers.ForIO(0)
	}
	s := &Session{cfg: cfg, masonry: cfg.Masonry, byIndex: map[int]int{}}
	s.order = layout.NewEngine(layout.ProviderFunc(s.boxes))
	s.debounce = layout.NewDebouncer(resizeSettle, func() {
		s.order.Recompute()
		s.changed()
	})
	return s
}

func (s *Session) changed() {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange()
	}
}

func (s *Session) boxes() []layout.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]layout.Item, len(s.tiles))
	for i, t := range s.tiles {
		items[i] = layout.Item{Index: t.Index, Height: t.Height}
	}
	return s.masonry.Place(items)
}

// Load lists the folder, renders every tile, waits for them to load and
// reopens the slideshow at a persisted resume position. A returned
// *ErrorRoute is a page-level failure; ErrRedirected means recovery took
// over.
func (s *Session) Load(ctx context.Context) error {
	p := s.cfg.Params
	s.setStatus("Loading…")

	listing, err := s.cfg.API.List(ctx, p.Folder, p.Token)
	if err != nil {
		logging.Warn("viewer: listing %s failed: %v", p.Folder, err)
		return listingRoute(err)
	}

	s.mu.Lock()
	s.files = slices.Clone(listing.Files)
	s.archive = listing.ArchiveKey()
	s.mu.Unlock()

	if !s.probe(ctx) {
		return ErrRedirected
	}

	s.render()
	s.loadTiles(ctx)

	if pos, ok := s.cfg.Recovery.ConsumeResume(ctx); ok {
		s.order.Recompute()
		logging.Debug("viewer: resuming slideshow at position %d", pos)
		s.ctrl.Load().ShowPosition(pos)
	}
	return nil
}

func listingRoute(err error) error {
	switch {
	case errors.Is(err, client.ErrCredentialInvalid):
		return &ErrorRoute{Code: http.StatusForbidden, Reason: ReasonLinkExpired}
	case errors.Is(err, client.ErrNotFound):
		return &ErrorRoute{Code: http.StatusNotFound, Reason: ReasonNotFound}
	default:
		return &ErrorRoute{Code: http.StatusInternalServerError, Reason: ReasonListFailed}
	}
}

// probe checks access on the first media original. It returns false when
// a recovery redirect was initiated.
func (s *Session) probe(ctx context.Context) bool {
	s.mu.RLock()
	idx := slices.IndexFunc(s.files, mediatypes.IsMedia)
	var first string
	if idx >= 0 {
		first = s.files[idx]
	}
	s.mu.RUnlock()

	if first == "" {
		return true
	}
	err := s.cfg.API.Probe(ctx, s.cfg.Resolver.OriginalURL(first))
	if !loader.IsAccessDenied(err) {
		return true
	}
	logging.Info("viewer: media access denied, requesting recovery")
	return !s.cfg.Recovery.RequestRecovery(ctx, -1)
}

// render builds one tile per renderable key, in listing order.
func (s *Session) render() {
	s.mu.Lock()
	s.tiles = s.tiles[:0]
	s.byIndex = make(map[int]int)
	for i, key := range s.files {
		if !mediatypes.IsRenderable(key, s.cfg.VideoTiles) {
			continue
		}
		s.byIndex[i] = len(s.tiles)
		s.tiles = append(s.tiles, Tile{
			Index:  i,
			Key:    key,
			Type:   mediatypes.Classify(key),
			Height: s.masonry.Width,
		})
	}
	n := len(s.tiles)
	files := s.files
	if n == 0 {
		s.status = MsgNoMedia
	} else {
		s.status = fmt.Sprintf("Loaded %d items", n)
	}
	s.mu.Unlock()

	s.ctrl.Store(slideshow.New(slideshow.Config{
		Files:    files,
		Order:    s.order,
		Resolver: s.cfg.Resolver,
		Surface:  s.cfg.Surface,
		Images:   s.cfg.Images,
		Videos:   s.cfg.Videos,
		Recovery: s.cfg.Recovery,
		Notifier: s.cfg.Notifier,
	}))
	s.order.Recompute()
	s.changed()
}

// loadTiles drives every tile through its candidates with bounded
// concurrency and recomputes the order after each outcome.
func (s *Session) loadTiles(ctx context.Context) {
	_ = workers.Each(ctx, s.cfg.Workers, s.Tiles(), func(ctx context.Context, t Tile) error {
		s.loadTile(ctx, t.Index, t.Key)
		return nil
	})
}

func (s *Session) loadTile(ctx context.Context, index int, key string) {
	target := loader.FetchTarget(s.cfg.Images, func(m loader.Media) error {
		s.updateTile(index, func(t *Tile) {
			t.Source = m.URL
			t.Loaded = true
			t.Broken = false
			t.Message = ""
			t.Width, t.Height = m.Width, scaleToColumn(s.masonry.Width, m.Width, m.Height)
		})
		return nil
	})

	loader.Load(ctx, target, s.cfg.Resolver.TileCandidates(key), func(error) {
		msg := MsgTileBroken
		if mediatypes.IsVideo(key) {
			msg = MsgVideoTileBroken
		}
		s.updateTile(index, func(t *Tile) {
			t.Broken = true
			t.Message = msg
		})
	})

	s.order.Recompute()
	s.changed()
}

// scaleToColumn is the height of an image of natural size w×h drawn col
// units wide.
func scaleToColumn(col, w, h int) int {
	if w <= 0 || h <= 0 {
		return col
	}
	return col * h / w
}

// updateTile runs fn on a tile with s.mu held; fn must not lock s.mu.
func (s *Session) updateTile(index int, fn func(*Tile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.byIndex[index]; ok {
		fn(&s.tiles[slot])
	}
}

// Tiles returns a copy of the tiles in listing order.
func (s *Session) Tiles() []Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tiles)
}

// Tile returns the tile of a file index.
func (s *Session) Tile(index int) (Tile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.byIndex[index]
	if !ok {
		return Tile{}, false
	}
	return s.tiles[slot], true
}

// Boxes returns the current geometry of the tiles.
func (s *Session) Boxes() []layout.Box {
	return s.boxes()
}

// Files returns the listed keys.
func (s *Session) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files)
}

// ArchiveKey returns the precomputed archive key, if any.
func (s *Session) ArchiveKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.archive
}

// Status returns a one-line description of the grid.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
	s.changed()
}

// Order returns the current visual order.
func (s *Session) Order() layout.VisualOrder {
	return s.order.Order()
}

// Slideshow returns the controller, or nil before the grid was rendered.
func (s *Session) Slideshow() *slideshow.Controller {
	return s.ctrl.Load()
}

// OpenTile opens the slideshow at a tile's file index.
func (s *Session) OpenTile(index int) bool {
	ctrl := s.ctrl.Load()
	if ctrl == nil {
		return false
	}
	s.order.Recompute()
	return ctrl.OpenAt(index)
}

// RetryTile handles a tap on a broken tile's overlay. It reports whether a
// recovery redirect was initiated.
func (s *Session) RetryTile(index int) bool {
	t, ok := s.Tile(index)
	if !ok || !t.Broken {
		return false
	}
	return s.cfg.Recovery.RequestRecovery(context.Background(), -1)
}

// Resize changes the column layout and schedules a recompute.
func (s *Session) Resize(columns, width int) {
	s.mu.Lock()
	old := s.masonry.Width
	s.masonry.Columns = columns
	if width > 0 && width != old {
		s.masonry.Width = width
		for i := range s.tiles {
			t := &s.tiles[i]
			if t.Width > 0 && t.Height > 0 && old > 0 {
				t.Height = t.Height * width / old
			} else {
				t.Height = width
			}
		}
	}
	s.mu.Unlock()

	s.order.Invalidate()
	s.debounce.Trigger()
}

// DownloadOriginal writes the original of a file index to w.
func (s *Session) DownloadOriginal(ctx context.Context, index int, w io.Writer) (int64, error) {
	s.mu.RLock()
	if index < 0 || index >= len(s.files) {
		s.mu.RUnlock()
		return 0, fmt.Errorf("viewer: no file at index %d", index)
	}
	key := s.files[index]
	s.mu.RUnlock()

	return s.download(ctx, s.cfg.Resolver.OriginalURL(key), w)
}

// DownloadArchive writes the folder's precomputed archive to w.
func (s *Session) DownloadArchive(ctx context.Context, w io.Writer) (int64, error) {
	key := s.ArchiveKey()
	if key == "" {
		return 0, ErrNoArchive
	}
	return s.download(ctx, mediatypes.URL(key), w)
}

func (s *Session) download(ctx context.Context, url string, w io.Writer) (int64, error) {
	n, err := s.cfg.API.Download(ctx, url, w)
	if err == nil || !loader.IsAccessDenied(err) {
		return n, err
	}
	pos := -1
	if ctrl := s.ctrl.Load(); ctrl != nil {
		pos = ctrl.Position()
	}
	if !s.cfg.Recovery.RequestRecovery(ctx, pos) && s.cfg.Notifier != nil {
		s.cfg.Notifier.Toast(MsgAccessExpired, refresh.ToastDefault)
	}
	return n, err
}

// Close closes the slideshow and waits for its loads.
func (s *Session) Close() {
	s.debounce.Stop()
	if ctrl := s.ctrl.Load(); ctrl != nil {
		ctrl.Close()
		ctrl.Wait()
	}
}
