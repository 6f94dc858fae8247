package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/soocke/qr-scan-go/domain/region"
)

// Overlay colours for the scan frame.
var (
	ShadeColor  = color.RGBA{0, 0, 0, 110}
	MarkerColor = color.RGBA{0xFC, 0xD3, 0x4D, 0xFF}
)

// ScaleRegion maps r from frame pixels into an image scaled by ratio.
func ScaleRegion(r region.Region, ratio float64) region.Region {
	if ratio == 1 || r.Empty() {
		return r
	}
	s := func(v int) int { return int(float64(v)*ratio + 0.5) }
	return region.Region{X: s(r.X), Y: s(r.Y), Width: max(1, s(r.Width)), Height: max(1, s(r.Height))}
}

// DrawRegionOverlay shades dst outside r and draws corner markers around it.
// r is in dst's pixel space; an empty r leaves dst untouched.
func DrawRegionOverlay(dst draw.Image, r region.Region) {
	if dst == nil || r.Empty() {
		return
	}
	b := dst.Bounds()
	inner := r.Rect().Add(b.Min).Intersect(b)
	if inner.Empty() {
		return
	}
	shade := image.NewUniform(ShadeColor)
	for _, band := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, inner.Min.Y),
		image.Rect(b.Min.X, inner.Max.Y, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, b.Max.X, inner.Max.Y),
	} {
		if !band.Empty() {
			draw.Draw(dst, band, shade, image.Point{}, draw.Over)
		}
	}

	arm := max(2, min(inner.Dx(), inner.Dy())/6)
	thick := max(1, arm/6)
	marker := image.NewUniform(MarkerColor)
	fill := func(x0, y0, x1, y1 int) {
		draw.Draw(dst, image.Rect(x0, y0, x1, y1).Intersect(b), marker, image.Point{}, draw.Src)
	}
	x0, y0, x1, y1 := inner.Min.X, inner.Min.Y, inner.Max.X, inner.Max.Y
	// top-left, top-right, bottom-left, bottom-right
	fill(x0, y0, x0+arm, y0+thick)
	fill(x0, y0, x0+thick, y0+arm)
	fill(x1-arm, y0, x1, y0+thick)
	fill(x1-thick, y0, x1, y0+arm)
	fill(x0, y1-thick, x0+arm, y1)
	fill(x0, y1-arm, x0+thick, y1)
	fill(x1-arm, y1-thick, x1, y1)
	fill(x1-thick, y1-arm, x1, y1)
}
