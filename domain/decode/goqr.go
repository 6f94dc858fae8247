package decode

import (
	"context"
	"fmt"
	"image"

	"github.com/liyue201/goqr"
)

// GoQR decodes with the quirc-derived goqr recognizer. It is a useful second
// opinion on blurry or low-contrast frames where ZXing's binarizer gives up.
type GoQR struct{}

func (GoQR) Decode(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("%w: empty image", ErrDecodeTransport)
	}
	codes, err := goqr.Recognize(img)
	// goqr only fails when no grid could be read.
	if err != nil || len(codes) == 0 {
		return "", ErrNoCodeFound
	}
	for _, c := range codes {
		if len(c.Payload) > 0 {
			return string(c.Payload), nil
		}
	}
	return "", ErrNoCodeFound
}

// Default returns the decoder chain used by the scanner: ZXing first, goqr as
// fallback, both guarded against panics.
func Default() Decoder {
	return Chain{Safe(NewZXing()), Safe(GoQR{})}
}
