//go:build !gocv

package capture

import (
	"fmt"
	"log/slog"
)

// CameraSupported reports whether this build can open physical cameras.
const CameraSupported = false

// NewCameraProvider fails in builds without the gocv tag.
func NewCameraProvider(logger *slog.Logger, index int) (Provider, error) {
	return nil, fmt.Errorf("%w: built without gocv support (rebuild with -tags gocv)", ErrNoDevice)
}
