package media

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/metrics"
	"gallery-viewer/internal/objectstore"
	"gallery-viewer/internal/thumbnail"
	"gallery-viewer/internal/workers"
)

// GateMode selects how originals are filtered before thumbnailing.
type GateMode string

const (
	// GateBytes skips originals smaller than MinBytes without reading them.
	GateBytes GateMode = "bytes"
	// GatePixels skips images whose larger side is below MinMaxDim.
	GatePixels GateMode = "pixels"
)

// Result statuses.
const (
	StatusGenerated = "generated"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Bucket is the object storage the generator reads originals from and
// writes thumbnails to.
type Bucket interface {
	List(ctx context.Context, prefix string) ([]objectstore.Object, error)
	Stat(key string) (objectstore.Object, error)
	Open(key string) (*os.File, objectstore.Object, error)
	Put(ctx context.Context, key string, r io.Reader) error
}

// SweepRecorder persists when a sweep finished.
type SweepRecorder interface {
	SetLastThumbnailSweep(ctx context.Context, t time.Time) error
}

// Pacer holds work back while the process is short of memory.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Options configures a Generator.
type Options struct {
	MaxSize     int
	JPEGQuality int
	Gate        GateMode
	MinBytes    int64
	MinMaxDim   int
	Workers     int
}

// DefaultOptions returns 640px thumbnails at JPEG quality 75 with no gate.
func DefaultOptions() Options {
	return Options{MaxSize: 640, JPEGQuality: 75, Gate: GateBytes}
}

// Result describes what happened to one original.
type Result struct {
	Key    string
	Thumb  string
	Type   mediatypes.FileType
	Status string
	Reason string
}

// SweepStats summarizes a sweep.
type SweepStats struct {
	Images    int
	Videos    int
	Generated int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Generator creates thumbnails for the originals in a bucket.
type Generator struct {
	bucket   Bucket
	resolver *thumbnail.Resolver
	opts     Options
	recorder SweepRecorder
	pacer    Pacer

	sweepMu sync.Mutex
	statsMu sync.RWMutex
	last    SweepStats
}

// NewGenerator creates a Generator. recorder may be nil.
func NewGenerator(bucket Bucket, resolver *thumbnail.Resolver, opts Options, recorder SweepRecorder) *Generator {
	def := DefaultOptions()
	if opts.MaxSize <= 0 {
		opts.MaxSize = def.MaxSize
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = def.JPEGQuality
	}
	if opts.Gate != GatePixels {
		opts.Gate = GateBytes
	}
	return &Generator{bucket: bucket, resolver: resolver, opts: opts, recorder: recorder}
}

// SetPacer makes sweeps wait on p before each original. Call it before
// the first sweep.
func (g *Generator) SetPacer(p Pacer) {
	g.pacer = p
}

// LastSweep returns the stats of the most recent completed sweep.
func (g *Generator) LastSweep() SweepStats {
	g.statsMu.RLock()
	defer g.statsMu.RUnlock()
	return g.last
}

// Generate creates the thumbnail for one original, overwriting any
// existing one.
func (g *Generator) Generate(ctx context.Context, obj objectstore.Object) Result {
	res := Result{Key: obj.Key, Type: mediatypes.Classify(obj.Key)}

	if !mediatypes.IsMedia(obj.Key) {
		return res.skip("not_image_or_video")
	}
	if _, ok := g.resolver.ThumbKey(obj.Key, thumbnail.ExtJPEG); !ok {
		return res.skip("not_source")
	}
	if g.opts.Gate == GateBytes && g.opts.MinBytes > 0 && obj.Size < g.opts.MinBytes {
		return res.skip("bytes_gate")
	}

	start := time.Now()
	var err error
	if res.Type == mediatypes.FileTypeVideo {
		res, err = g.generateVideo(ctx, res)
	} else {
		res, err = g.generateImage(ctx, res)
	}

	typ := string(res.Type)
	metrics.ThumbnailGenerationDuration.WithLabelValues(typ).Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.ThumbnailGenerationsTotal.WithLabelValues(typ, "error").Inc()
		logging.Warn("Thumbnail generation failed for %s: %v", obj.Key, err)
		res.Status = StatusFailed
		res.Reason = err.Error()
	case res.Status == StatusSkipped:
		metrics.ThumbnailGenerationsTotal.WithLabelValues(typ, "skipped").Inc()
	default:
		metrics.ThumbnailGenerationsTotal.WithLabelValues(typ, "success").Inc()
		logging.Debug("Thumbnail generated: %s -> %s", obj.Key, res.Thumb)
	}
	return res
}

func (r Result) skip(reason string) Result {
	r.Status = StatusSkipped
	r.Reason = reason
	return r
}

func (g *Generator) generateVideo(ctx context.Context, res Result) (Result, error) {
	key, _ := g.resolver.ThumbKey(res.Key, thumbnail.ExtJPEG)

	var buf bytes.Buffer
	img := VideoPlaceholder(g.opts.MaxSize, "VIDEO")
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(g.opts.JPEGQuality)); err != nil {
		return res, fmt.Errorf("encode placeholder: %w", err)
	}
	if err := g.bucket.Put(ctx, key, &buf); err != nil {
		return res, err
	}
	res.Thumb = key
	res.Status = StatusGenerated
	return res, nil
}

func (g *Generator) generateImage(ctx context.Context, res Result) (Result, error) {
	f, _, err := g.bucket.Open(res.Key)
	if err != nil {
		return res, err
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return res, fmt.Errorf("read original: %w", err)
	}

	info, err := Inspect(data)
	if err != nil {
		return res, fmt.Errorf("unsupported image: %w", err)
	}
	if g.opts.Gate == GatePixels && g.opts.MinMaxDim > 0 && info.MaxDim() < g.opts.MinMaxDim {
		return res.skip("pixels_gate"), nil
	}

	img, err := resizeImage(data, info, g.opts.MaxSize)
	if err != nil {
		return res, err
	}

	ext := thumbnail.ExtJPEG
	var buf bytes.Buffer
	if info.HasAlpha {
		ext = thumbnail.ExtPNG
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(g.opts.JPEGQuality))
	}
	if err != nil {
		return res, fmt.Errorf("encode thumbnail: %w", err)
	}

	key, _ := g.resolver.ThumbKey(res.Key, ext)
	if err := g.bucket.Put(ctx, key, &buf); err != nil {
		return res, err
	}
	res.Thumb = key
	res.Status = StatusGenerated
	return res, nil
}

// upToDate reports whether obj already has a thumbnail at least as new as
// the original.
func (g *Generator) upToDate(obj objectstore.Object) bool {
	for _, ext := range []string{thumbnail.ExtJPEG, thumbnail.ExtPNG} {
		key, ok := g.resolver.ThumbKey(obj.Key, ext)
		if !ok {
			return false
		}
		if t, err := g.bucket.Stat(key); err == nil && !t.ModTime.Before(obj.ModTime) {
			return true
		}
	}
	return false
}

// Sweep generates missing and stale thumbnails for every original under
// the source prefix. Only one sweep runs at a time.
func (g *Generator) Sweep(ctx context.Context) (SweepStats, error) {
	g.sweepMu.Lock()
	defer g.sweepMu.Unlock()

	start := time.Now()
	metrics.ThumbnailGeneratorRunning.Set(1)
	defer metrics.ThumbnailGeneratorRunning.Set(0)

	objects, err := g.bucket.List(ctx, g.resolver.Policy().SourcePrefix)
	if err != nil {
		return SweepStats{}, fmt.Errorf("list originals: %w", err)
	}

	var stats SweepStats
	var pending []objectstore.Object
	for _, obj := range objects {
		switch mediatypes.Classify(obj.Key) {
		case mediatypes.FileTypeImage:
			stats.Images++
		case mediatypes.FileTypeVideo:
			stats.Videos++
		default:
			continue
		}
		if g.upToDate(obj) {
			stats.Skipped++
			continue
		}
		pending = append(pending, obj)
	}

	var generated, skipped, failed atomic.Int64
	n := workers.ForCPU(g.opts.Workers)
	logging.Info("Thumbnail sweep: %d originals, %d pending, %d workers", stats.Images+stats.Videos, len(pending), n)

	err = workers.Each(ctx, n, pending, func(ctx context.Context, obj objectstore.Object) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.pacer != nil {
			if err := g.pacer.Wait(ctx); err != nil {
				return err
			}
		}
		switch g.Generate(ctx, obj).Status {
		case StatusGenerated:
			generated.Add(1)
		case StatusSkipped:
			skipped.Add(1)
		default:
			failed.Add(1)
		}
		return nil
	})

	stats.Generated = int(generated.Load())
	stats.Skipped += int(skipped.Load())
	stats.Failed = int(failed.Load())
	stats.Duration = time.Since(start)

	metrics.ThumbnailGenerationFilesTotal.WithLabelValues(StatusGenerated).Set(float64(stats.Generated))
	metrics.ThumbnailGenerationFilesTotal.WithLabelValues(StatusSkipped).Set(float64(stats.Skipped))
	metrics.ThumbnailGenerationFilesTotal.WithLabelValues(StatusFailed).Set(float64(stats.Failed))
	metrics.ThumbnailGenerationLastDuration.Set(stats.Duration.Seconds())

	if err != nil {
		return stats, err
	}

	metrics.ThumbnailGenerationLastTimestamp.Set(float64(time.Now().Unix()))
	g.statsMu.Lock()
	g.last = stats
	g.statsMu.Unlock()

	if g.recorder != nil {
		if err := g.recorder.SetLastThumbnailSweep(ctx, time.Now()); err != nil {
			logging.Warn("Failed to record thumbnail sweep time: %v", err)
		}
	}

	logging.Info("Thumbnail sweep complete in %v: generated=%d skipped=%d failed=%d",
		stats.Duration, stats.Generated, stats.Skipped, stats.Failed)
	return stats, nil
}

// Run sweeps immediately and then every interval until ctx is done.
func (g *Generator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := g.Sweep(ctx); err != nil && ctx.Err() == nil {
			logging.Error("Thumbnail sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
