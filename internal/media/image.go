package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/webp" // WebP format support

	"gallery-viewer/internal/logging"
)

// MaxImagePixels is the largest source image decoded without libvips.
// A 100MP image needs ~400MB as RGBA.
const MaxImagePixels = 100_000_000

// ImageInfo is what DecodeConfig reveals about a source image.
type ImageInfo struct {
	Width    int
	Height   int
	Format   string
	HasAlpha bool
}

// MaxDim returns the larger side.
func (i ImageInfo) MaxDim() int {
	return max(i.Width, i.Height)
}

// Inspect reads image dimensions and alpha support without decoding pixels.
func Inspect(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, err
	}
	return ImageInfo{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		HasAlpha: modelHasAlpha(cfg.ColorModel),
	}, nil
}

// modelHasAlpha reports whether images in model can be transparent. Opaque
// truecolor PNGs decode as RGBA and do not count.
func modelHasAlpha(model color.Model) bool {
	if p, ok := model.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	switch model {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model, color.NYCbCrAModel:
		return true
	}
	return false
}

// resizeImage decodes data and fits it into a size x size box. Smaller
// images keep their size.
func resizeImage(data []byte, info ImageInfo, size int) (image.Image, error) {
	if IsVipsAvailable() && info.MaxDim() > size {
		img, err := thumbnailWithVips(data, size, info.HasAlpha)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips thumbnail failed, falling back to imaging: %v", err)
	}

	if pixels := info.Width * info.Height; pixels > MaxImagePixels {
		return nil, fmt.Errorf("image too large to decode: %dx%d", info.Width, info.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return imaging.Fit(img, size, size, imaging.Lanczos), nil
}
