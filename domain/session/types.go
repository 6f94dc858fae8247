package session

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"github.com/soocke/qr-scan-go/domain/capture"
	"github.com/soocke/qr-scan-go/domain/decode"
	"github.com/soocke/qr-scan-go/domain/region"
)

// State enumerates the camera session lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

var (
	// ErrCameraUnavailable covers a missing device and denied permission. The
	// caller may retry by calling Start again.
	ErrCameraUnavailable = errors.New("session: camera unavailable")
	// ErrFlashUnavailable is returned when no session runs or the device has no torch.
	ErrFlashUnavailable = errors.New("session: flash unavailable")
	// ErrSinkUnavailable is returned when Start gets a nil or unmounted sink.
	ErrSinkUnavailable = errors.New("session: video sink not mounted")
	// ErrStartCanceled is returned when Stop (or a newer Start) won the race
	// against an in-flight Start.
	ErrStartCanceled = errors.New("session: start canceled")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("session: manager closed")

	ErrNoCodeFound     = decode.ErrNoCodeFound
	ErrDecodeTransport = decode.ErrDecodeTransport
)

// Sink is the video surface a session renders into. Present is called from
// the decode loop with every delivered frame and the region in force for it.
// The frame is only valid for the duration of the call. Present must not
// call Stop or Start: Stop waits for Present to return.
type Sink interface {
	Mounted() bool
	Present(frame image.Image, r region.Region)
}

// Options configure one Start call.
type Options struct {
	PreferredFacing capture.Facing
	// RegionCalculator maps frame size to the scan region. Nil uses the
	// large-viewport calculator.
	RegionCalculator region.Calculator
	// RegionPerFrame recomputes the region on every frame instead of only when
	// the frame size changes. Use it with calculators that depend on the
	// viewport rather than the frame.
	RegionPerFrame bool
	// OnDecode receives the payload of the first successful decode. Required.
	OnDecode func(text string)
	// OnDecodeError receives per-frame failures other than "no code found".
	OnDecodeError func(err error)
}

// Listener is called after each state transition.
type Listener func(prev, next State)

// Config holds manager-wide capture and decode tuning.
type Config struct {
	DeviceIndex       int
	Width             int
	Height            int
	FPS               int
	MaxScansPerSecond int
	DownscaleSize     int
	StillImageMaxSide int
	ReadRetryDelay    time.Duration
}

const (
	DefaultMaxScansPerSecond = 25
	DefaultDownscaleSize     = 400
	DefaultReadRetryDelay    = 100 * time.Millisecond
)

// DefaultConfig returns the manager defaults.
func DefaultConfig() Config {
	return Config{
		MaxScansPerSecond: DefaultMaxScansPerSecond,
		DownscaleSize:     DefaultDownscaleSize,
		StillImageMaxSide: decode.DefaultStillImageMaxSide,
		ReadRetryDelay:    DefaultReadRetryDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxScansPerSecond <= 0 {
		c.MaxScansPerSecond = DefaultMaxScansPerSecond
	}
	if c.DownscaleSize < 0 {
		c.DownscaleSize = 0
	}
	if c.StillImageMaxSide < 0 {
		c.StillImageMaxSide = 0
	}
	if c.ReadRetryDelay <= 0 {
		c.ReadRetryDelay = DefaultReadRetryDelay
	}
	return c
}

// Controller is the surface UI code drives. *Manager implements it.
type Controller interface {
	Start(ctx context.Context, sink Sink, opts Options) error
	Stop()
	ToggleFlashlight(ctx context.Context) (bool, error)
	ScanStillImage(ctx context.Context, r io.Reader) (string, error)
	State() State
	Torch() bool
	AddListener(Listener)
}
