package refresh

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"gallery-viewer/internal/logging"
)

// CooldownWindow is the minimum interval between two recovery redirects.
const CooldownWindow = 2 * time.Minute

// Toast durations and messages.
const (
	ToastDefault    = 3500 * time.Millisecond
	ToastRefreshing = 1500 * time.Millisecond

	MsgCannotLoad = "Cannot load. If the link expired, open it again."
	MsgRefreshing = "Refreshing access…"
)

// Navigator performs a replace-style navigation to url.
type Navigator interface {
	Replace(url string) error
}

// Notifier shows a transient, non-blocking message.
type Notifier interface {
	Toast(msg string, d time.Duration)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(url string) error

// Replace calls f.
func (f NavigatorFunc) Replace(url string) error {
	return f(url)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(msg string, d time.Duration)

// Toast calls f.
func (f NotifierFunc) Toast(msg string, d time.Duration) {
	f(msg, d)
}

// Coordinator decides whether a recovery redirect may happen and performs it.
type Coordinator struct {
	store  Store
	nav    Navigator
	notify Notifier
	token  string
	window time.Duration
	now    func() time.Time

	mu sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWindow overrides CooldownWindow.
func WithWindow(d time.Duration) Option {
	return func(c *Coordinator) { c.window = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a Coordinator for the session's access token.
func New(store Store, nav Navigator, notify Notifier, token string, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		nav:    nav,
		notify: notify,
		token:  token,
		window: CooldownWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RenewalPath is the server route that exchanges a share token for cookies.
const RenewalPath = "/open"

// RenewalURL returns the endpoint that re-establishes access for token.
func RenewalURL(token string) string {
	return RenewalPath + "?t=" + url.QueryEscape(token)
}

// RecentlyRefreshed reports whether a recovery redirect happened within the
// cool-down window. An unreadable store counts as "not recently".
func (c *Coordinator) RecentlyRefreshed(ctx context.Context) bool {
	v, ok, err := c.store.Get(ctx, KeyCooldown)
	if err != nil {
		logging.Warn("refresh: reading cooldown failed: %v", err)
		return false
	}
	if !ok {
		return false
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false
	}
	return c.now().Sub(time.UnixMilli(ms)) < c.window
}

// RequestRecovery redirects through the renewal endpoint unless there is no
// token or a redirect already happened within the window. A non-negative pos
// is persisted so the next session reopens the slideshow there. It reports
// whether a redirect was initiated.
func (c *Coordinator) RequestRecovery(ctx context.Context, pos int) bool {
	if c.token == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.RecentlyRefreshed(ctx) {
		c.toast(MsgCannotLoad, ToastDefault)
		return false
	}

	now := c.now()
	if err := c.store.Set(ctx, KeyCooldown, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		logging.Warn("refresh: persisting cooldown failed: %v", err)
	}
	if pos >= 0 {
		if err := c.store.Set(ctx, KeyResume, strconv.Itoa(pos)); err != nil {
			logging.Warn("refresh: persisting resume position failed: %v", err)
		}
	}
	c.toast(MsgRefreshing, ToastRefreshing)

	target := RenewalURL(c.token)
	logging.Info("refresh: access expired, redirecting to renewal endpoint (resume=%d)", pos)
	if err := c.nav.Replace(target); err != nil {
		logging.Error("refresh: navigation to renewal endpoint failed: %v", err)
	}
	return true
}

// ConsumeResume returns the persisted resume position and deletes it.
// Missing, malformed and negative values yield false.
func (c *Coordinator) ConsumeResume(ctx context.Context) (int, bool) {
	v, ok, err := c.store.Get(ctx, KeyResume)
	if err != nil || !ok {
		return 0, false
	}
	if err := c.store.Delete(ctx, KeyResume); err != nil {
		logging.Warn("refresh: clearing resume position failed: %v", err)
	}
	pos, err := strconv.Atoi(v)
	if err != nil || pos < 0 {
		return 0, false
	}
	return pos, true
}

func (c *Coordinator) toast(msg string, d time.Duration) {
	if c.notify != nil {
		c.notify.Toast(msg, d)
	}
}
