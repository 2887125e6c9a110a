package media

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	placeholderBackground = color.RGBA{12, 12, 12, 255}
	placeholderTriangle   = color.RGBA{240, 240, 240, 255}
	placeholderLabel      = color.RGBA{200, 200, 200, 255}
)

// VideoPlaceholder renders a 16:9 poster for a video: a dark frame with a
// centered play triangle and label in the lower left corner. The width is
// size, but never below 240.
func VideoPlaceholder(size int, label string) *image.RGBA {
	w := max(240, size)
	h := max(135, w*9/16)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBackground), image.Point{}, draw.Src)

	cx, cy := float32(w/2), float32(h/2)
	r := vector.NewRasterizer(w, h)
	r.MoveTo(cx-float32(w/12), cy-float32(h/10))
	r.LineTo(cx-float32(w/12), cy+float32(h/10))
	r.LineTo(cx+float32(w/10), cy)
	r.ClosePath()
	r.Draw(img, img.Bounds(), image.NewUniform(placeholderTriangle), image.Point{})

	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(placeholderLabel),
		Face: face,
		Dot:  fixed.P(10, h-10-face.Metrics().Descent.Ceil()),
	}
	d.DrawString(label)

	return img
}
