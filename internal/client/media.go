package client

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"

	// Registered decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"gallery-viewer/internal/loader"
)

// ImageFetcher downloads images and measures them.
type ImageFetcher struct {
	c *Client
}

// VideoFetcher checks that a video is reachable without downloading it.
type VideoFetcher struct {
	c *Client
}

var (
	_ loader.Fetcher = ImageFetcher{}
	_ loader.Fetcher = VideoFetcher{}
)

// Images returns a loader.Fetcher for images.
func (c *Client) Images() ImageFetcher {
	return ImageFetcher{c: c}
}

// Videos returns a loader.Fetcher for videos.
func (c *Client) Videos() VideoFetcher {
	return VideoFetcher{c: c}
}

// countingReader counts bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// Fetch downloads url and decodes the image header. Formats without a
// registered decoder load with unknown dimensions; a corrupt header fails.
func (f ImageFetcher) Fetch(ctx context.Context, url string) (loader.Media, error) {
	resp, err := f.c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return loader.Media{}, err
	}
	defer drain(resp)

	if err := statusError(url, resp); err != nil {
		return loader.Media{}, err
	}

	m := loader.Media{URL: url, ContentType: resp.Header.Get("Content-Type")}
	cr := &countingReader{r: resp.Body}
	cfg, _, err := image.DecodeConfig(cr)
	switch {
	case err == nil:
		m.Width, m.Height = cfg.Width, cfg.Height
	case errors.Is(err, image.ErrFormat):
	default:
		return loader.Media{}, fmt.Errorf("decode %s: %w", url, err)
	}

	if _, err := io.Copy(io.Discard, cr); err != nil {
		return loader.Media{}, fmt.Errorf("read %s: %w", url, err)
	}
	m.Size = cr.n
	return m, nil
}

// Fetch requests the first byte of url.
func (f VideoFetcher) Fetch(ctx context.Context, url string) (loader.Media, error) {
	resp, err := f.c.do(ctx, http.MethodGet, url, http.Header{"Range": []string{"bytes=0-0"}})
	if err != nil {
		return loader.Media{}, err
	}
	defer drain(resp)

	if err := statusError(url, resp); err != nil {
		return loader.Media{}, err
	}
	return loader.Media{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}
