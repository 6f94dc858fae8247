//go:build gocv

package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// CameraSupported reports whether this build can open physical cameras.
const CameraSupported = true

// GocvProvider opens webcams through OpenCV. OpenCV exposes no torch control,
// so streams report no torch capability.
type GocvProvider struct {
	logger *slog.Logger
	index  int
	opens  func(index int) bool
	mu     sync.Mutex
}

// NewCameraProvider returns the OpenCV-backed provider. HasCamera checks the
// device at index, the one sessions open.
func NewCameraProvider(logger *slog.Logger, index int) (Provider, error) {
	if index < 0 {
		index = 0
	}
	return &GocvProvider{logger: logger, index: index, opens: deviceOpens}, nil
}

func deviceOpens(index int) bool {
	cam, err := gocv.VideoCaptureDevice(index)
	if err != nil {
		return false
	}
	ok := cam.IsOpened()
	_ = cam.Close()
	return ok
}

func (p *GocvProvider) HasCamera(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens(p.index), nil
}

func (p *GocvProvider) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cam, err := gocv.VideoCaptureDevice(c.DeviceIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: open device %d: %v", ErrNoDevice, c.DeviceIndex, err)
	}
	if !cam.IsOpened() {
		_ = cam.Close()
		return nil, fmt.Errorf("%w: device %d not opened", ErrPermissionDenied, c.DeviceIndex)
	}
	if c.Width > 0 {
		cam.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
	}
	if c.Height > 0 {
		cam.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))
	}
	if c.FPS > 0 {
		cam.Set(gocv.VideoCaptureFPS, float64(c.FPS))
	}
	mat := gocv.NewMat()
	s := &gocvStream{cam: cam, frame: mat, logger: p.logger}
	if p.logger != nil {
		p.logger.Debug("capture.camera.open", "device", c.DeviceIndex, "facing", c.Facing.String())
	}
	return s, nil
}

type gocvStream struct {
	mu     sync.Mutex
	cam    *gocv.VideoCapture
	frame  gocv.Mat
	closed bool
	logger *slog.Logger
}

func (s *gocvStream) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}
	if ok := s.cam.Read(&s.frame); !ok {
		return nil, fmt.Errorf("capture: cannot read frame")
	}
	if s.frame.Empty() {
		return nil, fmt.Errorf("capture: frame is empty")
	}
	return s.frame.ToImage()
}

func (s *gocvStream) Tracks() []Track { return []Track{gocvTrack{s}} }

func (s *gocvStream) HasTorch() (bool, error) { return false, nil }

func (s *gocvStream) SetTorch(bool) error { return ErrTorchUnsupported }

type gocvTrack struct{ s *gocvStream }

func (t gocvTrack) Kind() string { return "video" }

// Stop waits for an in-progress read before releasing the device.
func (t gocvTrack) Stop() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.closed {
		return nil
	}
	t.s.closed = true
	err := t.s.cam.Close()
	if cerr := t.s.frame.Close(); err == nil {
		err = cerr
	}
	return err
}
