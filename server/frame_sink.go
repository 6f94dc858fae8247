package server

import (
	"image"
	"sync"

	"github.com/soocke/qr-scan-go/domain/region"
)

// FrameSink is the headless video sink. It is always mounted and keeps only
// the geometry of the last frame.
type FrameSink struct {
	mu     sync.Mutex
	frames uint64
	size   image.Point
	reg    region.Region
}

func (s *FrameSink) Mounted() bool { return true }

func (s *FrameSink) Present(frame image.Image, r region.Region) {
	if frame == nil {
		return
	}
	s.mu.Lock()
	s.frames++
	s.size = frame.Bounds().Size()
	s.reg = r
	s.mu.Unlock()
}

// FrameInfo is the sink state reported by GET /session.
type FrameInfo struct {
	Frames uint64        `json:"frames"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Region region.Region `json:"region"`
}

func (s *FrameSink) Info() FrameInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FrameInfo{Frames: s.frames, Width: s.size.X, Height: s.size.Y, Region: s.reg}
}
