package model

import (
	"image"
	"sync"

	"github.com/soocke/qr-scan-go/domain/region"
)

// RegionModel holds the scan region last presented together with the frame
// size it belongs to. The zero value is usable. Writes come from the decode
// loop, reads from the UI tick.
type RegionModel struct {
	mu    sync.RWMutex
	reg   region.Region
	frame image.Point
}

func NewRegionModel() *RegionModel { return &RegionModel{} }

// Set stores r for a frame of the given size. An empty region or frame clears.
func (m *RegionModel) Set(r region.Region, frame image.Point) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Empty() || frame.X <= 0 || frame.Y <= 0 {
		m.reg, m.frame = region.Region{}, image.Point{}
		return
	}
	m.reg, m.frame = r, frame
}

func (m *RegionModel) Clear() { m.Set(region.Region{}, image.Point{}) }

// Region returns the current region and frame size (zero when cleared).
func (m *RegionModel) Region() (region.Region, image.Point) {
	if m == nil {
		return region.Region{}, image.Point{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg, m.frame
}
