package loader

import (
	"context"

	"gallery-viewer/internal/logging"
)

// Target receives candidate URLs. Load returns nil once the candidate is
// displayed and an error when it failed to load.
type Target interface {
	Load(ctx context.Context, url string) error
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(ctx context.Context, url string) error

// Load calls f.
func (f TargetFunc) Load(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Status is the outcome of Load.
type Status int

const (
	// StatusLoaded means a candidate loaded.
	StatusLoaded Status = iota
	// StatusExhausted means every candidate failed.
	StatusExhausted
	// StatusAbandoned means the gate closed or the context ended first.
	StatusAbandoned
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusExhausted:
		return "exhausted"
	case StatusAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Result describes a finished Load.
type Result struct {
	Status   Status
	URL      string // the candidate that loaded
	Attempts int
	Err      error // the last candidate failure
}

type options struct {
	gate    func() bool
	onError func(url string, err error)
}

// Option configures Load.
type Option func(*options)

// WithGate makes Load consult gate before every attempt and before acting on
// every outcome. A false result abandons the load.
func WithGate(gate func() bool) Option {
	return func(o *options) {
		o.gate = gate
	}
}

// WithFailureHook calls fn after each failed candidate that is not the
// result of an abandoned load.
func WithFailureHook(fn func(url string, err error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func (o *options) open(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	return o.gate == nil || o.gate()
}

// Load tries urls in order against target until one loads. When every
// candidate failed, onExhausted is called exactly once with the last
// failure (nil when there were no candidates at all).
func Load(ctx context.Context, target Target, urls []string, onExhausted func(error), opts ...Option) Result {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	chain := NewChain(urls)
	var last error
	for {
		if !o.open(ctx) {
			return Result{Status: StatusAbandoned, Attempts: chain.Attempts(), Err: last}
		}

		u, ok := chain.Next()
		if !ok {
			logging.Debug("loader: %d candidate(s) exhausted: %v", chain.Attempts(), last)
			if onExhausted != nil {
				onExhausted(last)
			}
			return Result{Status: StatusExhausted, Attempts: chain.Attempts(), Err: last}
		}

		err := target.Load(ctx, u)
		if !o.open(ctx) {
			return Result{Status: StatusAbandoned, Attempts: chain.Attempts(), Err: last}
		}
		if err == nil {
			return Result{Status: StatusLoaded, URL: u, Attempts: chain.Attempts()}
		}

		last = err
		if o.onError != nil {
			o.onError(u, err)
		}
		logging.Debug("loader: candidate %s failed: %v", u, err)
	}
}
