package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"
)

func newFakeScreen(t *testing.T) (*ScreenProvider, *int) {
	t.Helper()
	grabs := 0
	p := &ScreenProvider{
		bounds: func() (image.Rectangle, error) { return image.Rect(0, 0, 64, 48), nil },
		grab: func() (*image.RGBA, error) {
			grabs++
			return image.NewRGBA(image.Rect(0, 0, 64, 48)), nil
		},
		grabRect: func(r image.Rectangle) (*image.RGBA, error) {
			grabs++
			return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
		},
	}
	return p, &grabs
}

func TestScreenStream_ReadAndStop(t *testing.T) {
	p, grabs := newFakeScreen(t)
	s, err := p.Open(context.Background(), Constraints{FPS: 200})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	img, err := s.ReadFrame(context.Background())
	if err != nil || img == nil {
		t.Fatalf("read: img=%v err=%v", img, err)
	}
	if *grabs != 1 {
		t.Fatalf("expected one grab, got %d", *grabs)
	}
	for _, tr := range s.Tracks() {
		if err := tr.Stop(); err != nil {
			t.Fatalf("stop: %v", err)
		}
		// idempotent
		if err := tr.Stop(); err != nil {
			t.Fatalf("second stop: %v", err)
		}
	}
	if _, err := s.ReadFrame(context.Background()); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
}

func TestScreenStream_SelectionUsed(t *testing.T) {
	p, _ := newFakeScreen(t)
	sel := image.Rect(10, 10, 30, 20)
	p.SetSelectionProvider(func() *image.Rectangle { return &sel })
	s, err := p.Open(context.Background(), Constraints{FPS: 200})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Tracks()[0].Stop()
	img, err := s.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("expected selection-sized frame, got %v", b)
	}
}

func TestScreenStream_ContextCancel(t *testing.T) {
	p, _ := newFakeScreen(t)
	s, err := p.Open(context.Background(), Constraints{FPS: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Tracks()[0].Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.ReadFrame(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestScreenProvider_NoTorch(t *testing.T) {
	p, _ := newFakeScreen(t)
	s, err := p.Open(context.Background(), Constraints{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Tracks()[0].Stop()
	if ok, _ := s.HasTorch(); ok {
		t.Fatalf("screen should not report a torch")
	}
	if err := s.SetTorch(true); !errors.Is(err, ErrTorchUnsupported) {
		t.Fatalf("expected ErrTorchUnsupported, got %v", err)
	}
}

func TestScreenProvider_NoScreen(t *testing.T) {
	p, _ := newFakeScreen(t)
	p.bounds = func() (image.Rectangle, error) { return image.Rectangle{}, errors.New("no display") }
	ok, err := p.HasCamera(context.Background())
	if ok || !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected no device, got ok=%v err=%v", ok, err)
	}
	if _, err := p.Open(context.Background(), Constraints{}); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("open should fail with ErrNoDevice, got %v", err)
	}
}

func TestToRGBA_CopiesPixelsAtOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 9, 8))
	src.SetGray(5, 5, color.Gray{Y: 200})
	dst := ToRGBA(src)
	if dst.Rect != image.Rect(0, 0, 4, 3) {
		t.Fatalf("unexpected bounds %v", dst.Rect)
	}
	if c := dst.RGBAAt(0, 0); c.R != 200 || c.A != 255 {
		t.Fatalf("pixel not copied: %v", c)
	}
	RecycleFrame(dst)
	again := AcquireFrame(image.Rect(0, 0, 2, 2))
	if len(again.Pix) != 16 || again.Stride != 8 {
		t.Fatalf("pooled frame not resized: len=%d stride=%d", len(again.Pix), again.Stride)
	}
}

func TestParseFacing(t *testing.T) {
	cases := map[string]Facing{"back": FacingEnvironment, "environment": FacingEnvironment, "Front": FacingUser, "": FacingAny, "x": FacingAny}
	for in, want := range cases {
		if got := ParseFacing(in); got != want {
			t.Fatalf("ParseFacing(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoopCounters_Snapshot(t *testing.T) {
	var c LoopCounters
	c.Frame(time.Now())
	c.Attempt(2*time.Millisecond, false, true)
	c.Attempt(4*time.Millisecond, true, false)
	c.ReadError()
	s := c.Snapshot()
	if s.Frames != 1 || s.Attempts != 2 || s.Misses != 1 || s.Decodes != 1 || s.Errors != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if s.AvgAttempt != 3*time.Millisecond {
		t.Fatalf("avg = %v", s.AvgAttempt)
	}
}
