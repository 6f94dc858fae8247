package presenter

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/soocke/qr-scan-go/domain/region"
	"github.com/soocke/qr-scan-go/ui/images"
	"github.com/soocke/qr-scan-go/ui/model"
)

// PreviewView receives the rendered preview.
type PreviewView interface {
	UpdatePreview(img image.Image)
	PreviewReset()
}

type previewFrame struct {
	seq uint64
	img *image.RGBA
	reg region.Region // in img pixels
}

// PreviewSink is the session video sink for the desktop UI. Present runs on
// the decode loop and only copies the frame; Flush runs on the UI tick and
// renders the latest copy with its scan-region overlay.
type PreviewSink struct {
	maxW, maxH int
	Regions    *model.RegionModel

	mounted atomic.Bool
	seq     atomic.Uint64
	latest  atomic.Pointer[previewFrame]

	mu    sync.Mutex // guards shown
	shown uint64
}

func NewPreviewSink(maxW, maxH int, regions *model.RegionModel) *PreviewSink {
	if maxW <= 0 {
		maxW = 640
	}
	if maxH <= 0 {
		maxH = 480
	}
	return &PreviewSink{maxW: maxW, maxH: maxH, Regions: regions}
}

// SetMounted marks the preview widget as present.
func (s *PreviewSink) SetMounted(b bool) {
	if s == nil {
		return
	}
	s.mounted.Store(b)
	if !b {
		s.latest.Store(nil)
		s.Regions.Clear()
	}
}

func (s *PreviewSink) Mounted() bool { return s != nil && s.mounted.Load() }

func (s *PreviewSink) Present(frame image.Image, r region.Region) {
	if s == nil || frame == nil || !s.mounted.Load() {
		return
	}
	img, ratio := images.ScaleToFit(frame, s.maxW, s.maxH)
	if img == nil {
		return
	}
	s.latest.Store(&previewFrame{seq: s.seq.Add(1), img: img, reg: images.ScaleRegion(r, ratio)})
	s.Regions.Set(r, frame.Bounds().Size())
}

// Flush pushes the newest frame to v. It returns false when nothing new arrived.
func (s *PreviewSink) Flush(v PreviewView) bool {
	if s == nil || v == nil {
		return false
	}
	f := s.latest.Load()
	if f == nil {
		return false
	}
	s.mu.Lock()
	if f.seq == s.shown {
		s.mu.Unlock()
		return false
	}
	s.shown = f.seq
	s.mu.Unlock()
	images.DrawRegionOverlay(f.img, f.reg)
	v.UpdatePreview(f.img)
	return true
}

// Reset drops any pending frame and clears the view.
func (s *PreviewSink) Reset(v PreviewView) {
	if s == nil {
		return
	}
	s.latest.Store(nil)
	s.Regions.Clear()
	if v != nil {
		v.PreviewReset()
	}
}
