package decode

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultStillImageMaxSide bounds the resolution still images are decoded at.
const DefaultStillImageMaxSide = 1600

// MaxImagePixels bounds the pixel count a still image may declare. The header
// is checked before any pixel buffer is allocated.
const MaxImagePixels = 50_000_000

// ReadImage decodes still-image bytes (png, jpeg, gif, bmp, webp). Images
// declaring more than MaxImagePixels are rejected with ErrInvalidImage.
func ReadImage(r io.Reader) (image.Image, string, error) {
	if r == nil {
		return nil, "", ErrInvalidImage
	}
	br := bufio.NewReader(r)
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(br, &head))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, MaxImagePixels)
	}
	img, format, err := image.Decode(io.MultiReader(&head, br))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return img, format, nil
}

// Downscale returns img scaled so its longer side is at most maxSide,
// preserving aspect ratio. Images that already fit, or maxSide <= 0, are
// returned as is.
func Downscale(img image.Image, maxSide int) image.Image {
	if img == nil || maxSide <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}
	var nw, nh int
	if w >= h {
		nw = maxSide
		nh = max(1, int(float64(h)*float64(maxSide)/float64(w)+0.5))
	} else {
		nh = maxSide
		nw = max(1, int(float64(w)*float64(maxSide)/float64(h)+0.5))
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Still reads one image from r and decodes it as a whole. It shares nothing
// with camera sessions.
func Still(ctx context.Context, d Decoder, r io.Reader, maxSide int) (string, error) {
	img, _, err := ReadImage(r)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", fmt.Errorf("%w: nil decoder", ErrDecodeTransport)
	}
	return d.Decode(ctx, Downscale(img, maxSide))
}
