package presenter

import (
	"context"
)

// Scanner is the screen the camera toggle shows and hides.
type Scanner interface {
	Mount(ctx context.Context)
	Unmount()
	Mounted() bool
}

// CameraPreference stores the persisted openCamera choice.
type CameraPreference interface {
	OpenCamera() bool
	SetOpenCamera(bool) error
}

// CameraView updates UI elements affected by the camera toggle.
type CameraView interface {
	PreviewReset()
	SetCameraOpen(bool)
}

// CameraPresenter owns the openCamera toggle: it persists the choice and
// mounts or unmounts the scanner to match.
type CameraPresenter struct {
	pref    CameraPreference
	scanner Scanner
	view    CameraView
}

func NewCameraPresenter(pref CameraPreference, scanner Scanner, view CameraView) *CameraPresenter {
	return &CameraPresenter{pref: pref, scanner: scanner, view: view}
}

// Restore applies the persisted preference at startup.
func (c *CameraPresenter) Restore(ctx context.Context) {
	if c == nil || c.pref == nil || c.scanner == nil || c.view == nil {
		return
	}
	open := c.pref.OpenCamera()
	c.view.SetCameraOpen(open)
	if open {
		c.scanner.Mount(ctx)
	}
}

// Open persists openCamera=true and mounts the scanner. Idempotent.
func (c *CameraPresenter) Open(ctx context.Context) {
	if c == nil || c.pref == nil || c.scanner == nil || c.view == nil {
		return
	}
	// A failed save still opens the camera for this run.
	_ = c.pref.SetOpenCamera(true)
	c.view.SetCameraOpen(true)
	c.scanner.Mount(ctx)
}

// Close persists openCamera=false, stops scanning and clears the preview. Idempotent.
func (c *CameraPresenter) Close() {
	if c == nil || c.pref == nil || c.scanner == nil || c.view == nil {
		return
	}
	_ = c.pref.SetOpenCamera(false)
	c.view.SetCameraOpen(false)
	if !c.scanner.Mounted() {
		return
	}
	c.scanner.Unmount()
	c.view.PreviewReset()
}

// Toggle flips the preference delegating to Open/Close.
func (c *CameraPresenter) Toggle(ctx context.Context) {
	if c == nil || c.pref == nil {
		return
	}
	if c.pref.OpenCamera() {
		c.Close()
		return
	}
	c.Open(ctx)
}
