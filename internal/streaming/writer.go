package streaming

import (
	"errors"
	"net/http"
	"os"
	"time"

	"gallery-viewer/internal/logging"
)

// Sentinel errors for streaming operations.
var (
	// ErrStalled indicates that the client stopped reading and a write
	// missed its deadline.
	ErrStalled = errors.New("client stalled")

	// ErrMaxDuration indicates that the response ran longer than allowed.
	ErrMaxDuration = errors.New("stream exceeded maximum duration")
)

// Config configures a Writer.
type Config struct {
	// WriteTimeout bounds each chunk. The connection's write deadline is
	// moved forward before every chunk, so a slow but steady client is
	// never cut off.
	WriteTimeout time.Duration
	// MaxDuration caps the whole response (0 = unlimited).
	MaxDuration time.Duration
	// ChunkSize is the size of chunks to write (0 = write as received).
	ChunkSize int
	// OnStall is called once when a write misses its deadline.
	OnStall func(written int64)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Writer wraps an http.ResponseWriter with a rolling write deadline. It is
// meant for servers running without a global WriteTimeout, where a stalled
// download would otherwise hold its handler forever.
type Writer struct {
	http.ResponseWriter
	rc  *http.ResponseController
	cfg Config
	now func() time.Time

	start        time.Time
	bytesWritten int64
	noDeadline   bool
	stalled      bool
}

// NewWriter wraps w. Call Close when the handler is done writing.
func NewWriter(w http.ResponseWriter, cfg Config) *Writer {
	return &Writer{
		ResponseWriter: w,
		rc:             http.NewResponseController(w),
		cfg:            cfg,
		now:            time.Now,
		start:          time.Now(),
	}
}

// Write writes p in chunks, extending the deadline before each one.
func (sw *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if sw.cfg.MaxDuration > 0 && sw.now().Sub(sw.start) > sw.cfg.MaxDuration {
			return total, ErrMaxDuration
		}

		n := len(p)
		if sw.cfg.ChunkSize > 0 && n > sw.cfg.ChunkSize {
			n = sw.cfg.ChunkSize
		}

		sw.extend()
		written, err := sw.ResponseWriter.Write(p[:n])
		total += written
		sw.bytesWritten += int64(written)
		if err != nil {
			return total, sw.classify(err)
		}
		p = p[n:]
	}
	return total, nil
}

func (sw *Writer) extend() {
	if sw.noDeadline || sw.cfg.WriteTimeout <= 0 {
		return
	}
	if err := sw.rc.SetWriteDeadline(sw.now().Add(sw.cfg.WriteTimeout)); err != nil {
		// Recorders and wrappers without Unwrap cannot carry deadlines.
		sw.noDeadline = true
		if !errors.Is(err, http.ErrNotSupported) {
			logging.Debug("streaming: cannot set write deadline: %v", err)
		}
	}
}

func (sw *Writer) classify(err error) error {
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		return err
	}
	if !sw.stalled {
		sw.stalled = true
		logging.Warn("streaming: client stalled after %d bytes", sw.bytesWritten)
		if sw.cfg.OnStall != nil {
			sw.cfg.OnStall(sw.bytesWritten)
		}
	}
	return ErrStalled
}

// Flush sends buffered data to the client.
func (sw *Writer) Flush() {
	_ = sw.rc.Flush()
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (sw *Writer) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// BytesWritten returns how many bytes reached the wrapped writer.
func (sw *Writer) BytesWritten() int64 {
	return sw.bytesWritten
}

// Close clears the write deadline so a kept-alive connection is not cut
// off while serving its next request.
func (sw *Writer) Close() error {
	if sw.noDeadline || sw.cfg.WriteTimeout <= 0 {
		return nil
	}
	err := sw.rc.SetWriteDeadline(time.Time{})
	if errors.Is(err, http.ErrNotSupported) {
		return nil
	}
	return err
}
