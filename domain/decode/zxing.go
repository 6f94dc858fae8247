package decode

import (
	"context"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ZXing decodes QR codes with the gozxing port of ZXing.
type ZXing struct {
	TryHarder bool
}

// NewZXing returns a ZXing decoder with the TRY_HARDER hint enabled.
func NewZXing() *ZXing { return &ZXing{TryHarder: true} }

func (z *ZXing) Decode(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("%w: empty image", ErrDecodeTransport)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: binarize: %v", ErrDecodeTransport, err)
	}
	var hints map[gozxing.DecodeHintType]interface{}
	if z.TryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{gozxing.DecodeHintType_TRY_HARDER: true}
	}
	// QRCodeReader keeps per-decode state, so each call gets its own.
	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		switch err.(type) {
		case gozxing.NotFoundException, gozxing.ChecksumException, gozxing.FormatException:
			return "", ErrNoCodeFound
		}
		return "", fmt.Errorf("%w: %v", ErrDecodeTransport, err)
	}
	return res.GetText(), nil
}
