package filesystem

import "sync/atomic"

// RetryOutcome classifies a retry event.
type RetryOutcome int

// Retry events reported to the Observer.
const (
	RetryStale RetryOutcome = iota
	RetryAttempt
	RetrySucceeded
	RetryExhausted
)

// Observer records filesystem operation metrics. The metrics package
// provides the implementation, which keeps this package free of a
// dependency on it.
type Observer interface {
	// ObserveOperation records duration and error status for an
	// operation ("stat", "open", "rename").
	ObserveOperation(operation string, durationSeconds float64, err error)
	ObserveRetry(operation string, outcome RetryOutcome)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, float64, error) {}
func (nopObserver) ObserveRetry(string, RetryOutcome)       {}

var defaultObserver atomic.Value // observerBox

type observerBox struct{ Observer }

// SetObserver sets the package-level metrics observer. A nil observer
// disables recording.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	defaultObserver.Store(observerBox{o})
}

func observe() Observer {
	if b, ok := defaultObserver.Load().(observerBox); ok {
		return b.Observer
	}
	return nopObserver{}
}
