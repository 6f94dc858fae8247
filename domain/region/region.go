package region

import (
	"image"
	"math"
)

const (
	// SmallFraction is the share of the smaller frame side used on small viewports.
	SmallFraction = 0.6
	// LargeFraction is the share used everywhere else.
	LargeFraction = 0.4
	// DefaultSmallViewportWidth matches a max-width: 768px media query.
	DefaultSmallViewportWidth = 768
)

// Region is a square area of a video frame, in frame pixel coordinates, within
// which decoding is attempted. The zero value is an empty region.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Compute returns the centered square region for a frame of the given size.
// The side is round(min(w,h) * f) with f = 0.6 on small viewports and 0.4
// otherwise. Non-positive dimensions yield an empty region.
func Compute(frameWidth, frameHeight int, small bool) Region {
	if frameWidth <= 0 || frameHeight <= 0 {
		return Region{}
	}
	base := min(frameWidth, frameHeight)
	fraction := LargeFraction
	if small {
		fraction = SmallFraction
	}
	size := int(math.Round(float64(base) * fraction))
	x := int(math.Round(float64(frameWidth-size) / 2))
	y := int(math.Round(float64(frameHeight-size) / 2))
	return Region{X: x, Y: y, Width: size, Height: size}
}

// Empty reports whether r has no area.
func (r Region) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Rect converts r into an image.Rectangle anchored at origin.
func (r Region) Rect() image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Within reports whether r lies fully inside a w x h frame.
func (r Region) Within(w, h int) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.Width <= w && r.Y+r.Height <= h
}

// IsSmallViewport reports whether a surface of the given width counts as a
// small (mobile) viewport. A non-positive breakpoint uses the default.
func IsSmallViewport(width, breakpoint int) bool {
	if breakpoint <= 0 {
		breakpoint = DefaultSmallViewportWidth
	}
	return width > 0 && width <= breakpoint
}

// Calculator maps frame dimensions to a scan region.
type Calculator func(frameWidth, frameHeight int) Region

// NewCalculator returns a Calculator bound to a fixed viewport class.
func NewCalculator(small bool) Calculator {
	return func(w, h int) Region { return Compute(w, h, small) }
}

// ViewportCalculator returns a Calculator that classifies the viewport on every
// call, so resizing the surface changes the region fraction.
func ViewportCalculator(viewportWidth func() int, breakpoint int) Calculator {
	return func(w, h int) Region {
		small := false
		if viewportWidth != nil {
			small = IsSmallViewport(viewportWidth(), breakpoint)
		}
		return Compute(w, h, small)
	}
}
