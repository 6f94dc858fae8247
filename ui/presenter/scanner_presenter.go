package presenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/soocke/qr-scan-go/domain/capture"
	"github.com/soocke/qr-scan-go/domain/region"
	"github.com/soocke/qr-scan-go/domain/session"
	"github.com/soocke/qr-scan-go/ui/model"
)

// User-facing notices.
const (
	NoticeNoCamera         = "No camera found"
	NoticeFlashUnavailable = "Flashlight not available"
	NoticeNoCodeInImage    = "No QR code found in image"
	NoticeImageUnreadable  = "Could not read image"
)

// ScannerController narrows the session manager to what the scanner screen uses.
type ScannerController interface {
	Start(ctx context.Context, sink session.Sink, opts session.Options) error
	Stop()
	ToggleFlashlight(ctx context.Context) (bool, error)
	ScanStillImage(ctx context.Context, r io.Reader) (string, error)
}

// ScannerOptions carry per-screen session settings.
type ScannerOptions struct {
	Facing         capture.Facing
	Region         region.Calculator
	RegionPerFrame bool
}

// ScannerPresenter drives the scanner screen: it starts a session on mount,
// stops it on unmount, publishes results into the store and restarts
// scanning when a result is dismissed. Camera acquisition runs off the
// calling goroutine; its outcome reaches the UI through the store.
type ScannerPresenter struct {
	ctrl   ScannerController
	store  *model.ScanStore
	sink   session.Sink
	opts   ScannerOptions
	logger *slog.Logger

	// OpenFile opens a still image; os.Open by default.
	OpenFile func(path string) (io.ReadCloser, error)

	mounted bool          // owned by the UI goroutine
	gen     atomic.Uint64 // bumped by every mount, dismiss and unmount
	startMu sync.Mutex    // one start in flight at a time
	pending sync.WaitGroup
}

func NewScannerPresenter(ctrl ScannerController, store *model.ScanStore, sink session.Sink, opts ScannerOptions, logger *slog.Logger) *ScannerPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ScannerPresenter{
		ctrl:     ctrl,
		store:    store,
		sink:     sink,
		opts:     opts,
		logger:   logger,
		OpenFile: func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Mounted reports whether the scanner screen is shown.
func (p *ScannerPresenter) Mounted() bool { return p != nil && p.mounted }

// Mount shows the scanner and starts a camera session in the background.
// Idempotent.
func (p *ScannerPresenter) Mount(ctx context.Context) {
	if p == nil || p.ctrl == nil || p.mounted {
		return
	}
	p.mounted = true
	p.startAsync(ctx)
}

// Unmount stops the session before the screen goes away. A start still in
// flight is stopped once it returns. Idempotent.
func (p *ScannerPresenter) Unmount() {
	if p == nil || p.ctrl == nil || !p.mounted {
		return
	}
	p.mounted = false
	p.gen.Add(1)
	p.ctrl.Stop()
	p.store.SetFlashlightOn(false)
}

// Wait blocks until background starts have returned.
func (p *ScannerPresenter) Wait() {
	if p != nil {
		p.pending.Wait()
	}
}

func (p *ScannerPresenter) startAsync(ctx context.Context) {
	gen := p.gen.Add(1)
	p.store.ClearResult()
	p.store.SetFlashlightOn(false)
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		p.start(ctx, gen)
	}()
}

func (p *ScannerPresenter) start(ctx context.Context, gen uint64) {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.gen.Load() != gen {
		return
	}
	err := p.ctrl.Start(ctx, p.sink, session.Options{
		PreferredFacing:  p.opts.Facing,
		RegionCalculator: p.opts.Region,
		RegionPerFrame:   p.opts.RegionPerFrame,
		OnDecode:         p.onDecode,
		OnDecodeError:    p.onDecodeError,
	})
	switch {
	case err == nil && p.gen.Load() != gen:
		// Unmounted or superseded while the camera was opening.
		p.ctrl.Stop()
	case err == nil:
		p.store.SetNotice("")
	case errors.Is(err, session.ErrStartCanceled), errors.Is(err, session.ErrClosed):
	case errors.Is(err, session.ErrCameraUnavailable):
		p.logger.Warn("scanner.start", "error", err)
		p.store.SetNotice(NoticeNoCamera)
	default:
		p.logger.Error("scanner.start", "error", err)
		p.store.SetNotice(fmt.Sprintf("Scanner error: %v", err))
	}
}

func (p *ScannerPresenter) onDecode(text string) {
	p.store.SetFlashlightOn(false)
	p.store.SetResult(text)
}

func (p *ScannerPresenter) onDecodeError(err error) {
	p.store.SetNotice(fmt.Sprintf("Scanner error: %v", err))
}

// Dismiss closes the result and, while the screen is mounted, scans again.
func (p *ScannerPresenter) Dismiss(ctx context.Context) {
	if p == nil {
		return
	}
	p.store.ClearResult()
	if !p.mounted || p.ctrl == nil {
		return
	}
	p.startAsync(ctx)
}

// ToggleFlashlight flips the torch and mirrors the outcome into the store.
func (p *ScannerPresenter) ToggleFlashlight(ctx context.Context) {
	if p == nil || p.ctrl == nil {
		return
	}
	on, err := p.ctrl.ToggleFlashlight(ctx)
	p.store.SetFlashlightOn(on)
	if err != nil {
		p.logger.Warn("scanner.flashlight", "error", err)
		p.store.SetNotice(NoticeFlashUnavailable)
	}
}

// ScanImage decodes the still image at path. A found code becomes the scan
// result; failures only raise a notice.
func (p *ScannerPresenter) ScanImage(ctx context.Context, path string) {
	if p == nil || p.ctrl == nil || path == "" {
		return
	}
	f, err := p.OpenFile(path)
	if err != nil {
		p.logger.Warn("scanner.image", "path", path, "error", err)
		p.store.SetNotice(NoticeImageUnreadable)
		return
	}
	defer f.Close()
	text, err := p.ctrl.ScanStillImage(ctx, f)
	switch {
	case err == nil:
		p.store.SetResult(text)
	case errors.Is(err, session.ErrNoCodeFound):
		p.store.SetNotice(NoticeNoCodeInImage)
	default:
		p.logger.Warn("scanner.image", "path", path, "error", err)
		p.store.SetNotice(NoticeImageUnreadable)
	}
}
