package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gallery-viewer/internal/loader"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/slideshow"
)

// changedMsg tells the model that session, surface or toast state moved.
type changedMsg struct{}

// bus coalesces change notifications into a single pending message.
type bus struct {
	ch chan struct{}
}

func newBus() *bus {
	return &bus{ch: make(chan struct{}, 1)}
}

// poke never blocks.
func (b *bus) poke() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

func (b *bus) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.ch:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// modalView is a snapshot of what the slideshow asked the modal to show.
type modalView struct {
	Open         bool
	Title        string
	DownloadURL  string
	DownloadName string
	Backdrop     string
	Image        *loader.Media
	Video        string
}

// surface records slideshow output for the next View.
type surface struct {
	bus *bus

	mu sync.Mutex
	v  modalView
}

var _ slideshow.Surface = (*surface)(nil)

func (s *surface) update(fn func(v *modalView)) {
	s.mu.Lock()
	fn(&s.v)
	s.mu.Unlock()
	s.bus.poke()
}

func (s *surface) SetOpen(open bool) {
	s.update(func(v *modalView) {
		v.Open = open
		if !open {
			v.Image = nil
			v.Video = ""
		}
	})
}

func (s *surface) SetTitle(title string) {
	s.update(func(v *modalView) { v.Title = title })
}

func (s *surface) SetDownload(url, name string) {
	s.update(func(v *modalView) {
		v.DownloadURL = url
		v.DownloadName = name
	})
}

func (s *surface) SetBackdrop(url string) {
	s.update(func(v *modalView) { v.Backdrop = url })
}

func (s *surface) ResetMedia() {
	s.update(func(v *modalView) {
		v.Image = nil
		v.Video = ""
	})
}

func (s *surface) ShowImage(m loader.Media) {
	s.update(func(v *modalView) {
		v.Image = &m
		v.Video = ""
	})
}

func (s *surface) ShowVideo(url string) {
	s.update(func(v *modalView) {
		v.Video = url
		v.Image = nil
	})
}

func (s *surface) reset() {
	s.update(func(v *modalView) { *v = modalView{} })
}

func (s *surface) snapshot() modalView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// toaster holds the single visible toast line.
type toaster struct {
	bus *bus
	now func() time.Time

	mu    sync.Mutex
	msg   string
	until time.Time
}

var _ refresh.Notifier = (*toaster)(nil)

func (t *toaster) Toast(msg string, d time.Duration) {
	t.mu.Lock()
	t.msg = msg
	t.until = t.now().Add(d)
	t.mu.Unlock()
	t.bus.poke()
}

// current returns the visible toast and how long it has left.
func (t *toaster) current() (string, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	left := t.until.Sub(t.now())
	if t.msg == "" || left <= 0 {
		return "", 0
	}
	return t.msg, left
}

// navigator queues the most recent navigation request.
type navigator struct {
	bus *bus

	mu      sync.Mutex
	pending string
}

var _ refresh.Navigator = (*navigator)(nil)

func (n *navigator) Replace(url string) error {
	n.mu.Lock()
	n.pending = url
	n.mu.Unlock()
	n.bus.poke()
	return nil
}

func (n *navigator) take() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	url := n.pending
	n.pending = ""
	return url, url != ""
}
