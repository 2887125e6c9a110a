package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

type recordingObserver struct {
	mu       sync.Mutex
	ops      []string
	outcomes []RetryOutcome
}

func (r *recordingObserver) ObserveOperation(op string, _ float64, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recordingObserver) ObserveRetry(_ string, outcome RetryOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func noSleep(config RetryConfig) (RetryConfig, *[]time.Duration) {
	var slept []time.Duration
	config.sleep = func(d time.Duration) { slept = append(slept, d) }
	return config, &slept
}

func TestDefaultRetryConfig(t *testing.T) {
	t.Parallel()

	config := DefaultRetryConfig()
	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"ESTALE error", syscall.ESTALE, true},
		{"wrapped ESTALE", &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, true},
		{"ENOENT error", syscall.ENOENT, false},
		{"generic error", os.ErrNotExist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Retry Loop Tests
// =============================================================================

func TestWithRetryRecoversFromStale(t *testing.T) {
	config, slept := noSleep(DefaultRetryConfig())

	calls := 0
	got, err := withRetry("stat", "/x", config, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, syscall.ESTALE
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("withRetry() = %d, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("backoffs = %v, want %v", *slept, want)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	config, slept := noSleep(RetryConfig{MaxRetries: 4, InitialBackoff: 200 * time.Millisecond, MaxBackoff: 500 * time.Millisecond})

	calls := 0
	_, err := withRetry("open", "/x", config, func() (int, error) {
		calls++
		return 0, syscall.ESTALE
	})
	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("err = %v, want ESTALE", err)
	}
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
	for i, d := range *slept {
		if d > 500*time.Millisecond {
			t.Errorf("backoff[%d] = %v exceeds MaxBackoff", i, d)
		}
	}
}

func TestWithRetryOtherErrorsFailFast(t *testing.T) {
	config, slept := noSleep(DefaultRetryConfig())

	calls := 0
	_, err := withRetry("stat", "/x", config, func() (int, error) {
		calls++
		return 0, os.ErrPermission
	})
	if !errors.Is(err, os.ErrPermission) || calls != 1 || len(*slept) != 0 {
		t.Errorf("err = %v, calls = %d, sleeps = %d", err, calls, len(*slept))
	}
}

// Not parallel: swaps the package observer.
func TestObserverReceivesRetryEvents(t *testing.T) {
	rec := &recordingObserver{}
	SetObserver(rec)
	t.Cleanup(func() { SetObserver(nil) })

	config, _ := noSleep(RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	_, _ = withRetry("stat", "/x", config, func() (int, error) { return 0, syscall.ESTALE })

	want := []RetryOutcome{RetryStale, RetryAttempt, RetryStale, RetryExhausted}
	if len(rec.outcomes) != len(want) {
		t.Fatalf("outcomes = %v, want %v", rec.outcomes, want)
	}
	for i := range want {
		if rec.outcomes[i] != want[i] {
			t.Errorf("outcome[%d] = %v, want %v", i, rec.outcomes[i], want[i])
		}
	}
	if len(rec.ops) != 1 || rec.ops[0] != "stat" {
		t.Errorf("ops = %v, want [stat]", rec.ops)
	}
}

// =============================================================================
// Real Filesystem Tests
// =============================================================================

func TestStatOpenRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	info, err := StatWithRetry(src, DefaultRetryConfig())
	if err != nil || info.Size() != 5 {
		t.Fatalf("StatWithRetry() = %v, %v", info, err)
	}

	f, err := OpenWithRetry(src, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("OpenWithRetry() error = %v", err)
	}
	f.Close()

	dst := filepath.Join(dir, "b.txt")
	if err := RenameWithRetry(src, dst, DefaultRetryConfig()); err != nil {
		t.Fatalf("RenameWithRetry() error = %v", err)
	}
	if _, err := StatWithRetry(src, DefaultRetryConfig()); !os.IsNotExist(err) {
		t.Errorf("source still exists: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenWithRetry(filepath.Join(t.TempDir(), "missing"), DefaultRetryConfig())
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
