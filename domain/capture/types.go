package capture

import (
	"context"
	"errors"
	"image"
	"strings"
)

var (
	// ErrNoDevice reports that no capture device is present.
	ErrNoDevice = errors.New("capture: no capture device")
	// ErrPermissionDenied reports that the platform refused access to the device.
	ErrPermissionDenied = errors.New("capture: permission denied")
	// ErrStreamClosed is returned by ReadFrame once every track has been stopped.
	ErrStreamClosed = errors.New("capture: stream closed")
	// ErrTorchUnsupported reports a device without controllable torch hardware.
	ErrTorchUnsupported = errors.New("capture: torch unsupported")
)

// Facing selects which camera to prefer on devices with several.
type Facing int

const (
	FacingAny Facing = iota
	FacingUser
	FacingEnvironment
)

func (f Facing) String() string {
	switch f {
	case FacingUser:
		return "user"
	case FacingEnvironment:
		return "environment"
	default:
		return "any"
	}
}

// ParseFacing maps "user"/"front" and "environment"/"back" to a Facing. Anything
// else is FacingAny.
func ParseFacing(s string) Facing {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "front":
		return FacingUser
	case "environment", "back", "rear":
		return FacingEnvironment
	default:
		return FacingAny
	}
}

// Constraints describe the stream a caller wants opened.
type Constraints struct {
	Facing      Facing
	DeviceIndex int
	Width       int
	Height      int
	FPS         int
}

// Track is one media track of a stream. Stopping a track releases the
// hardware behind it; Stop is idempotent.
type Track interface {
	Kind() string
	Stop() error
}

// Stream is a live capture stream. ReadFrame blocks until the device delivers
// the next frame, ctx is done, or the stream is closed.
type Stream interface {
	ReadFrame(ctx context.Context) (image.Image, error)
	Tracks() []Track
	HasTorch() (bool, error)
	SetTorch(on bool) error
}

// Provider enumerates and opens capture devices.
type Provider interface {
	HasCamera(ctx context.Context) (bool, error)
	Open(ctx context.Context, c Constraints) (Stream, error)
}
