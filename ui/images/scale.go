package images

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	_ = enc.Encode(&buf, img)
	return buf.Bytes()
}

// FitSize returns the largest size with the aspect ratio of w x h that fits
// within maxW x maxH, and the scale factor applied. Sizes that already fit
// are returned unchanged with scale 1.
func FitSize(w, h, maxW, maxH int) (int, int, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	if w <= maxW && h <= maxH {
		return w, h, 1
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(float64(w)*ratio+0.5)), max(1, int(float64(h)*ratio+0.5)), ratio
}

// ScaleToFit copies src into a new RGBA image that fits within maxW x maxH.
// The copy is always made because the source frame is recycled after
// Present returns. The scale factor is returned so overlays can be mapped.
func ScaleToFit(src image.Image, maxW, maxH int) (*image.RGBA, float64) {
	if src == nil {
		return nil, 0
	}
	b := src.Bounds()
	nw, nh, ratio := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	if nw == 0 {
		return nil, 0
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	if ratio == 1 {
		xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	} else {
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}
	return dst, ratio
}
