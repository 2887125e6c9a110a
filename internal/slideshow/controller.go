package slideshow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"gallery-viewer/internal/layout"
	"gallery-viewer/internal/loader"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/thumbnail"
)

// SwipeThreshold is the minimum horizontal travel of a navigation swipe.
const SwipeThreshold = 50

// Messages shown when a modal load fails and recovery is refused.
const (
	MsgVideoFailed = "Cannot load the video. Open the link again."
	MsgImageFailed = "Cannot load the image. Open the link again."
)

var errSuperseded = errors.New("slideshow: render superseded")

// Config wires a Controller to its collaborators.
type Config struct {
	Files    []string
	Order    *layout.Engine
	Resolver *thumbnail.Resolver
	Surface  Surface
	Images   loader.Fetcher
	Videos   loader.Fetcher
	Recovery Recoverer
	Notifier refresh.Notifier
	// Context bounds every load; defaults to context.Background.
	Context context.Context
}

// Controller owns the slideshow position. It is safe for concurrent use.
type Controller struct {
	cfg Config

	mu     sync.Mutex
	open   bool
	pos    int
	cancel context.CancelFunc

	reqID atomic.Uint64
	wg    sync.WaitGroup
}

// New creates a closed Controller.
func New(cfg Config) *Controller {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return &Controller{cfg: cfg, pos: -1}
}

// IsOpen reports whether the modal is open.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Position returns the current visual position, or -1 when closed.
func (c *Controller) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return -1
	}
	return c.pos
}

// RequestID returns the id of the most recent render.
func (c *Controller) RequestID() uint64 {
	return c.reqID.Load()
}

// OpenAt opens the modal at the visual position of a file index. An index
// missing from the order opens position 0. It returns false when nothing is
// rendered.
func (c *Controller) OpenAt(fileIndex int) bool {
	if c.cfg.Order.Stale() {
		c.cfg.Order.Recompute()
	}
	pos := c.cfg.Order.Order().Position(fileIndex)
	if pos < 0 {
		logging.Debug("slideshow: file %d not in visual order, opening at 0", fileIndex)
		pos = 0
	}
	return c.ShowPosition(pos)
}

// ShowPosition opens the modal directly at a visual position.
func (c *Controller) ShowPosition(pos int) bool {
	if c.cfg.Order.Stale() {
		c.cfg.Order.Recompute()
	}
	if c.cfg.Order.Order().Len() == 0 {
		return false
	}

	c.mu.Lock()
	if !c.open {
		c.open = true
		c.cfg.Surface.SetOpen(true)
	}
	c.mu.Unlock()

	c.Render(pos)
	return true
}

// Next shows the following position, wrapping at the end.
func (c *Controller) Next() {
	c.step(1)
}

// Prev shows the preceding position, wrapping at the start.
func (c *Controller) Prev() {
	c.step(-1)
}

func (c *Controller) step(delta int) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	pos := c.pos + delta
	c.mu.Unlock()
	c.Render(pos)
}

// Close closes the modal and detaches its media.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	c.open = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.cfg.Surface.ResetMedia()
	c.cfg.Surface.SetOpen(false)
}

// Wait blocks until every load started by the controller has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Render shows the item at pos, normalized modulo the order length in both
// directions. It is a no-op while closed.
func (c *Controller) Render(pos int) {
	order := c.cfg.Order.Order()
	n := order.Len()
	if n == 0 {
		return
	}
	p := ((pos % n) + n) % n

	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.pos = p
	id := c.reqID.Add(1)
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.cfg.Context)
	c.cancel = cancel

	key := c.cfg.Files[order[p]]
	res := c.cfg.Resolver
	name := mediatypes.Basename(key)
	orig := res.OriginalURL(key)

	s := c.cfg.Surface
	s.ResetMedia()
	s.SetTitle(name)
	s.SetDownload(orig, name)
	s.SetBackdrop(res.Backdrop(key))

	video := mediatypes.IsVideo(key)
	if video {
		s.ShowVideo(orig)
	}
	c.mu.Unlock()

	if video {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.loadVideo(ctx, id, p, orig)
		}()
		return
	}

	urls := res.ModalCandidates(key)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loadImage(ctx, id, p, urls)
	}()
}

// current reports whether a render is still the live one.
func (c *Controller) current(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open && c.reqID.Load() == id
}

func (c *Controller) loadVideo(ctx context.Context, id uint64, pos int, url string) {
	if c.cfg.Videos == nil {
		return
	}
	_, err := c.cfg.Videos.Fetch(ctx, url)
	if err == nil || !c.current(id) {
		return
	}
	logging.Debug("slideshow: video %s failed: %v", url, err)
	c.escalate(pos, MsgVideoFailed)
}

func (c *Controller) loadImage(ctx context.Context, id uint64, pos int, urls []string) {
	target := loader.FetchTarget(c.cfg.Images, func(m loader.Media) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.open || c.reqID.Load() != id {
			return errSuperseded
		}
		c.cfg.Surface.ShowImage(m)
		return nil
	})

	loader.Load(ctx, target, urls, func(error) {
		if c.current(id) {
			c.escalate(pos, MsgImageFailed)
		}
	}, loader.WithGate(func() bool { return c.current(id) }))
}

func (c *Controller) escalate(pos int, msg string) {
	if c.cfg.Recovery != nil && c.cfg.Recovery.RequestRecovery(c.cfg.Context, pos) {
		return
	}
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.Toast(msg, refresh.ToastDefault)
	}
}
