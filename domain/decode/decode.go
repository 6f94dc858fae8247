package decode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/soocke/qr-scan-go/domain/region"
)

var (
	// ErrNoCodeFound is the steady-state "nothing readable in this image" result.
	ErrNoCodeFound = errors.New("decode: no QR code found")
	// ErrDecodeTransport marks an unexpected failure while preparing or decoding a frame.
	ErrDecodeTransport = errors.New("decode: transport error")
	// ErrInvalidImage reports still-image bytes that are not a supported image format.
	ErrInvalidImage = errors.New("decode: unsupported or corrupt image")
)

// Decoder extracts a QR payload from an image. Implementations return
// ErrNoCodeFound when nothing decodes and wrap other failures in
// ErrDecodeTransport. Decoders must be safe for concurrent use.
type Decoder interface {
	Decode(ctx context.Context, img image.Image) (string, error)
}

// Func adapts a function to the Decoder interface.
type Func func(ctx context.Context, img image.Image) (string, error)

func (f Func) Decode(ctx context.Context, img image.Image) (string, error) { return f(ctx, img) }

// Chain tries each decoder in order and returns the first payload. The chain
// reports ErrNoCodeFound only when every decoder reported it; otherwise the
// transport failures are joined.
type Chain []Decoder

func (c Chain) Decode(ctx context.Context, img image.Image) (string, error) {
	if len(c) == 0 {
		return "", fmt.Errorf("%w: empty decoder chain", ErrDecodeTransport)
	}
	var failures []error
	for _, d := range c {
		if d == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := d.Decode(ctx, img)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrNoCodeFound) {
			continue
		}
		failures = append(failures, err)
	}
	if len(failures) == 0 {
		return "", ErrNoCodeFound
	}
	return "", errors.Join(failures...)
}

// Crop returns the part of frame covered by r, clamped to the frame bounds
// and at least 1x1. An empty region returns the frame unchanged.
func Crop(frame image.Image, r region.Region) (image.Image, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("decode: nil frame")
	}
	b := frame.Bounds()
	if r.Empty() {
		return frame, b, nil
	}
	rect := r.Rect().Add(b.Min).Intersect(b)
	if rect.Empty() {
		x0 := min(max(b.Min.X+r.X, b.Min.X), b.Max.X-1)
		y0 := min(max(b.Min.Y+r.Y, b.Min.Y), b.Max.Y-1)
		rect = image.Rect(x0, y0, x0+1, y0+1)
	}
	if s, ok := frame.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(rect), rect, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), frame, rect.Min, draw.Src)
	return out, rect, nil
}

// InRegion crops frame to r, downscales the crop so its longer side is at most
// maxSide (0 disables), and decodes it.
func InRegion(ctx context.Context, d Decoder, frame image.Image, r region.Region, maxSide int) (string, error) {
	if d == nil {
		return "", fmt.Errorf("%w: nil decoder", ErrDecodeTransport)
	}
	crop, _, err := Crop(frame, r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeTransport, err)
	}
	return d.Decode(ctx, Downscale(crop, maxSide))
}

// Safe wraps d so a panicking decoder surfaces as a transport error instead of
// taking down the caller.
func Safe(d Decoder) Decoder {
	return Func(func(ctx context.Context, img image.Image) (text string, err error) {
		defer func() {
			if r := recover(); r != nil {
				text, err = "", fmt.Errorf("%w: decoder panic: %v", ErrDecodeTransport, r)
			}
		}()
		return d.Decode(ctx, img)
	})
}
