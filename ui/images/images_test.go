package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/soocke/qr-scan-go/domain/region"
)

func TestFitSize_PreservesAspect(t *testing.T) {
	w, h, ratio := FitSize(1920, 1080, 960, 960)
	if w != 960 || h != 540 || ratio != 0.5 {
		t.Fatalf("got %dx%d ratio %v", w, h, ratio)
	}
	w, h, ratio = FitSize(320, 240, 960, 960)
	if w != 320 || h != 240 || ratio != 1 {
		t.Fatalf("small frame should be unchanged, got %dx%d ratio %v", w, h, ratio)
	}
	if w, h, _ := FitSize(0, 10, 100, 100); w != 0 || h != 0 {
		t.Fatalf("zero size should stay zero")
	}
}

func TestScaleToFit_CopiesFrame(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	src.Set(1, 1, color.White)
	out, ratio := ScaleToFit(src, 100, 100)
	if ratio != 1 || out.Bounds() != src.Bounds() {
		t.Fatalf("unexpected %v ratio %v", out.Bounds(), ratio)
	}
	src.Set(1, 1, color.Black)
	if r, _, _, _ := out.At(1, 1).RGBA(); r == 0 {
		t.Fatalf("output aliases the source frame")
	}
	out, ratio = ScaleToFit(src, 20, 20)
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 10 || ratio != 0.5 {
		t.Fatalf("downscale got %v ratio %v", out.Bounds(), ratio)
	}
}

func TestDrawRegionOverlay_ShadesOutsideOnly(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	r := region.Compute(100, 100, false)
	DrawRegionOverlay(img, r)

	if c := img.RGBAAt(50, 50); c.R != 0xFF || c.G != 0xFF {
		t.Fatalf("region center should be untouched, got %v", c)
	}
	if c := img.RGBAAt(2, 2); c.R == 0xFF {
		t.Fatalf("outside region should be shaded, got %v", c)
	}
	if c := img.RGBAAt(r.X, r.Y); c != MarkerColor {
		t.Fatalf("corner marker missing, got %v", c)
	}
}

func TestScaleRegion(t *testing.T) {
	r := region.Region{X: 100, Y: 50, Width: 200, Height: 200}
	if got := ScaleRegion(r, 0.5); got != (region.Region{X: 50, Y: 25, Width: 100, Height: 100}) {
		t.Fatalf("got %+v", got)
	}
	if got := ScaleRegion(r, 1); got != r {
		t.Fatalf("identity scale changed region")
	}
}

func TestEncodePNG_Decodes(t *testing.T) {
	data := EncodePNG(image.NewRGBA(image.Rect(0, 0, 3, 2)))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil || img.Bounds().Dx() != 3 {
		t.Fatalf("decode: %v", err)
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}
