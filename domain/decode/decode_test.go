package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/soocke/qr-scan-go/domain/region"
)

// qrFrame renders text as a QR code of side size, centered on a white frame.
func qrFrame(t *testing.T, text string, size, frameW, frameH int) *image.RGBA {
	t.Helper()
	m, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	frame := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	ox, oy := (frameW-m.GetWidth())/2, (frameH-m.GetHeight())/2
	for y := 0; y < m.GetHeight(); y++ {
		for x := 0; x < m.GetWidth(); x++ {
			if m.Get(x, y) {
				frame.Set(ox+x, oy+y, color.Black)
			}
		}
	}
	return frame
}

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func TestZXing_DecodesCenteredCode(t *testing.T) {
	frame := qrFrame(t, "https://example.com/pay?id=42", 200, 400, 400)
	text, err := NewZXing().Decode(context.Background(), frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text != "https://example.com/pay?id=42" {
		t.Fatalf("unexpected payload %q", text)
	}
}

func TestZXing_BlankIsNoCode(t *testing.T) {
	_, err := NewZXing().Decode(context.Background(), blank(120, 120))
	if !errors.Is(err, ErrNoCodeFound) {
		t.Fatalf("expected ErrNoCodeFound, got %v", err)
	}
}

func TestGoQR_BlankIsNoCode(t *testing.T) {
	_, err := GoQR{}.Decode(context.Background(), blank(120, 120))
	if !errors.Is(err, ErrNoCodeFound) {
		t.Fatalf("expected ErrNoCodeFound, got %v", err)
	}
}

func TestInRegion_DecodesInsideScanRegion(t *testing.T) {
	frame := qrFrame(t, "region-hit", 240, 1000, 1000)
	r := region.Compute(1000, 1000, false)
	text, err := InRegion(context.Background(), NewZXing(), frame, r, 400)
	if err != nil || text != "region-hit" {
		t.Fatalf("expected region-hit, got %q err=%v", text, err)
	}
}

func TestInRegion_CodeOutsideRegionIsMissed(t *testing.T) {
	frame := blank(1000, 1000)
	code := qrFrame(t, "corner", 150, 150, 150)
	draw.Draw(frame, image.Rect(0, 0, 150, 150), code, image.Point{}, draw.Src)
	_, err := InRegion(context.Background(), NewZXing(), frame, region.Compute(1000, 1000, false), 400)
	if !errors.Is(err, ErrNoCodeFound) {
		t.Fatalf("expected code outside region to be ignored, got %v", err)
	}
}

func TestCrop_ClampsAndOffsets(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 100))
	_, rect, err := Crop(frame, region.Region{X: 30, Y: 30, Width: 40, Height: 40})
	if err != nil || rect != image.Rect(30, 30, 70, 70) {
		t.Fatalf("unexpected crop %v err=%v", rect, err)
	}
	_, rect, _ = Crop(frame, region.Region{X: 90, Y: 90, Width: 40, Height: 40})
	if rect.Max.X > 100 || rect.Max.Y > 100 {
		t.Fatalf("crop exceeds frame: %v", rect)
	}
	_, rect, _ = Crop(frame, region.Region{X: 500, Y: 500, Width: 10, Height: 10})
	if rect.Dx() != 1 || rect.Dy() != 1 {
		t.Fatalf("expected 1x1 fallback, got %v", rect)
	}
	if _, _, err := Crop(nil, region.Region{}); err == nil {
		t.Fatalf("expected error for nil frame")
	}
}

func TestChain_Semantics(t *testing.T) {
	miss := Func(func(context.Context, image.Image) (string, error) { return "", ErrNoCodeFound })
	hit := Func(func(context.Context, image.Image) (string, error) { return "ok", nil })
	broken := Func(func(context.Context, image.Image) (string, error) {
		return "", errors.Join(ErrDecodeTransport, errors.New("boom"))
	})
	ctx := context.Background()
	img := blank(4, 4)

	if text, err := (Chain{miss, hit}).Decode(ctx, img); err != nil || text != "ok" {
		t.Fatalf("expected fallback hit, got %q %v", text, err)
	}
	if _, err := (Chain{miss, miss}).Decode(ctx, img); !errors.Is(err, ErrNoCodeFound) {
		t.Fatalf("expected no code, got %v", err)
	}
	if _, err := (Chain{miss, broken}).Decode(ctx, img); !errors.Is(err, ErrDecodeTransport) || errors.Is(err, ErrNoCodeFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if _, err := (Chain{}).Decode(ctx, img); !errors.Is(err, ErrDecodeTransport) {
		t.Fatalf("empty chain should be a transport error, got %v", err)
	}
}

func TestSafe_RecoversPanics(t *testing.T) {
	d := Safe(Func(func(context.Context, image.Image) (string, error) { panic("bad frame") }))
	if _, err := d.Decode(context.Background(), blank(2, 2)); !errors.Is(err, ErrDecodeTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestStill_PNGRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, qrFrame(t, "still-image", 300, 640, 480)); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	text, err := Still(context.Background(), Default(), &buf, DefaultStillImageMaxSide)
	if err != nil || text != "still-image" {
		t.Fatalf("expected still-image, got %q err=%v", text, err)
	}
}

func TestStill_NoCodeAndGarbage(t *testing.T) {
	var buf bytes.Buffer
	_ = png.Encode(&buf, blank(200, 200))
	if _, err := Still(context.Background(), Default(), &buf, 0); !errors.Is(err, ErrNoCodeFound) {
		t.Fatalf("expected ErrNoCodeFound, got %v", err)
	}
	if _, err := Still(context.Background(), Default(), strings.NewReader("not an image"), 0); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestDownscale_PreservesAspect(t *testing.T) {
	out := Downscale(blank(2000, 1000), 400)
	if b := out.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("unexpected size %v", b)
	}
	small := blank(100, 50)
	if Downscale(small, 400) != image.Image(small) {
		t.Fatalf("small image should be returned unchanged")
	}
}

// hugeHeaderPNG returns a valid 1x1 PNG whose IHDR claims w x h.
func hugeHeaderPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	b := buf.Bytes()
	// 8-byte signature, 4-byte length, "IHDR", then width and height.
	binary.BigEndian.PutUint32(b[16:20], w)
	binary.BigEndian.PutUint32(b[20:24], h)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))
	return b
}

func TestReadImage_RejectsOversizedHeader(t *testing.T) {
	data := hugeHeaderPNG(t, 20000, 20000)
	if _, _, err := ReadImage(bytes.NewReader(data)); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if _, err := Still(context.Background(), Default(), bytes.NewReader(data), 0); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("still: expected ErrInvalidImage, got %v", err)
	}
}

func TestReadImage_HeaderPeekKeepsBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, blank(37, 23)); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	img, format, err := ReadImage(&buf)
	if err != nil || format != "png" {
		t.Fatalf("read: format=%q err=%v", format, err)
	}
	if b := img.Bounds(); b.Dx() != 37 || b.Dy() != 23 {
		t.Fatalf("unexpected bounds %v", b)
	}
}
