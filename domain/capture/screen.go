package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/vova616/screenshot"
)

const defaultScreenFPS = 10

// ScreenProvider exposes the primary monitor as a capture device, which lets
// the scanner read QR codes shown on screen. Frames are paced by a ticker
// instead of device delivery. It never has a torch.
type ScreenProvider struct {
	logger   *slog.Logger
	selFn    func() *image.Rectangle
	bounds   func() (image.Rectangle, error)
	grab     func() (*image.RGBA, error)
	grabRect func(image.Rectangle) (*image.RGBA, error)
}

// NewScreenProvider constructs a provider backed by the screenshot library.
// selectionFn may return a sub-rectangle of the screen to capture; nil or an
// empty rectangle captures the full screen.
func NewScreenProvider(logger *slog.Logger, selectionFn func() *image.Rectangle) *ScreenProvider {
	return &ScreenProvider{
		logger:   logger,
		selFn:    selectionFn,
		bounds:   screenshot.ScreenRect,
		grab:     screenshot.CaptureScreen,
		grabRect: screenshot.CaptureRect,
	}
}

func (p *ScreenProvider) SetSelectionProvider(fn func() *image.Rectangle) { p.selFn = fn }

func (p *ScreenProvider) HasCamera(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r, err := p.bounds()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	return !r.Empty(), nil
}

func (p *ScreenProvider) Open(ctx context.Context, c Constraints) (Stream, error) {
	ok, err := p.HasCamera(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoDevice
	}
	fps := c.FPS
	if fps <= 0 {
		fps = defaultScreenFPS
	}
	s := &screenStream{
		provider: p,
		ticker:   time.NewTicker(time.Second / time.Duration(fps)),
		done:     make(chan struct{}),
	}
	s.track = &screenTrack{stream: s}
	if p.logger != nil {
		p.logger.Debug("capture.screen.open", "fps", fps)
	}
	return s, nil
}

type screenStream struct {
	provider *ScreenProvider
	ticker   *time.Ticker
	done     chan struct{}
	once     sync.Once
	track    *screenTrack
}

func (s *screenStream) ReadFrame(ctx context.Context) (image.Image, error) {
	select {
	case <-s.done:
		return nil, ErrStreamClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ticker.C:
	}
	// A stop may race the tick; closed wins.
	select {
	case <-s.done:
		return nil, ErrStreamClosed
	default:
	}
	p := s.provider
	if p.selFn != nil {
		if r := p.selFn(); r != nil && !r.Empty() {
			img, err := p.grabRect(*r)
			if err == nil {
				return img, nil
			}
			if p.logger != nil {
				p.logger.Error("capture selection", "error", err)
			}
		}
	}
	img, err := p.grab()
	if err != nil {
		return nil, fmt.Errorf("capture: grab screen: %w", err)
	}
	return img, nil
}

func (s *screenStream) Tracks() []Track { return []Track{s.track} }

func (s *screenStream) HasTorch() (bool, error) { return false, nil }

func (s *screenStream) SetTorch(bool) error { return ErrTorchUnsupported }

func (s *screenStream) close() {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
}

type screenTrack struct{ stream *screenStream }

func (t *screenTrack) Kind() string { return "video" }

func (t *screenTrack) Stop() error {
	t.stream.close()
	return nil
}
