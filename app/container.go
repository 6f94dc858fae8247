package app

import (
	"image"
	"log/slog"
	"sync"

	"github.com/soocke/qr-scan-go/config"
	"github.com/soocke/qr-scan-go/domain/capture"
	"github.com/soocke/qr-scan-go/domain/decode"
	"github.com/soocke/qr-scan-go/domain/region"
	"github.com/soocke/qr-scan-go/domain/session"
	"github.com/soocke/qr-scan-go/ui/model"
	"github.com/soocke/qr-scan-go/ui/presenter"
	"github.com/soocke/qr-scan-go/ui/view"
)

// previewMargin is the room left around the preview for the controls.
const previewMargin = 200

// Core holds the services shared by the window and the headless server.
type Core struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Provider   capture.Provider
	Screen     *capture.ScreenProvider // nil for the camera source
	Manager    *session.Manager
	Prefs      model.PreferenceStore
	Store      *model.ScanStore
	Facing     capture.Facing
	Region     region.Calculator
}

// BuildCore opens no device; it only selects the provider and wires the
// session manager and the stores.
func BuildCore(cfg *config.Config, cfgPath string, logger *slog.Logger) (*Core, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	switch cfg.Source {
	case config.SourceCamera:
		p, err := capture.NewCameraProvider(logger, cfg.DeviceIndex)
		if err != nil {
			// Start reports the camera as unavailable; still images keep working.
			logger.Warn("capture.camera", "error", err)
			break
		}
		c.Provider = p
	default:
		c.Screen = capture.NewScreenProvider(logger, cfg.Selection)
		c.Provider = c.Screen
	}
	c.Manager = session.NewManager(c.Provider, decode.Default(), SessionConfig(cfg), logger)
	if cfg.PrefsPath == "" {
		// No file: openCamera lives for this run only.
		c.Prefs = &model.MemoryPreferences{}
	} else {
		c.Prefs = model.NewFilePreferences(cfg.PrefsPath)
	}
	c.Store = model.NewScanStore(c.Prefs, logger)
	logStoreChanges(c.Store, logger)
	c.Facing = capture.ParseFacing(cfg.Facing)
	c.Region = region.ViewportCalculator(cfg.EffectiveViewportWidth, cfg.SmallViewportWidth)
	return c, nil
}

// logStoreChanges logs each new scan result and notice.
func logStoreChanges(store *model.ScanStore, logger *slog.Logger) (unsubscribe func()) {
	var (
		mu     sync.Mutex
		had    bool
		notice string
	)
	return store.Subscribe(func(s model.ScanSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.HasResult && !had {
			logger.Info("scan.result", "length", len(s.Result))
		}
		had = s.HasResult
		if s.Notice != "" && s.Notice != notice {
			logger.Info("scan.notice", "notice", s.Notice)
		}
		notice = s.Notice
	})
}

// SessionConfig maps the capture and scanning settings onto the manager.
func SessionConfig(cfg *config.Config) session.Config {
	sc := session.DefaultConfig()
	sc.DeviceIndex = cfg.DeviceIndex
	sc.Width = cfg.FrameWidth
	sc.Height = cfg.FrameHeight
	sc.FPS = cfg.FPS
	sc.MaxScansPerSecond = cfg.MaxScansPerSecond
	sc.DownscaleSize = cfg.DownscaleSize
	return sc
}

// SessionOptions returns the start options shared by every surface. Callbacks
// are left to the caller.
func (c *Core) SessionOptions() session.Options {
	return session.Options{
		PreferredFacing:  c.Facing,
		RegionCalculator: c.Region,
		RegionPerFrame:   c.Config.RegionPerFrame,
	}
}

// AppContainer assembles models, presenters and the root view on top of Core.
type AppContainer struct {
	*Core

	Session  *model.SessionModel
	Regions  *model.RegionModel
	Sink     *presenter.PreviewSink
	RootView *view.RootView

	// Presenters
	Scanner          *presenter.ScannerPresenter
	Camera           *presenter.CameraPresenter
	StatePresenter   *presenter.StatePresenter
	SessionPresenter *presenter.SessionPresenter
	ResultPresenter  *presenter.ResultPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. Widgets are created later by
// RootView.Build on the Tk thread.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	core, err := BuildCore(cfg, cfgPath, logger)
	if err != nil {
		return nil, err
	}
	c := &AppContainer{Core: core}
	c.Session = model.NewSessionModel()
	c.Regions = model.NewRegionModel()
	c.Sink = presenter.NewPreviewSink(core.Config.WindowWidth-previewMargin, core.Config.WindowHeight-previewMargin, c.Regions)
	c.RootView = view.NewRootView(core.Config, cfgPath, logger)
	opts := core.SessionOptions()
	c.Scanner = presenter.NewScannerPresenter(core.Manager, core.Store, c.Sink, presenter.ScannerOptions{
		Facing:         opts.PreferredFacing,
		Region:         opts.RegionCalculator,
		RegionPerFrame: opts.RegionPerFrame,
	}, logger)
	c.Camera = presenter.NewCameraPresenter(core.Store, c.Scanner, c.RootView)
	c.StatePresenter = presenter.NewStatePresenter(c.RootView)
	core.Manager.AddListener(c.StatePresenter.OnTransition)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, core.Manager, core.Store, c.RootView)
	return c, nil
}

// selection prefers the area picked in the window over the saved one.
func (c *AppContainer) selection() *image.Rectangle {
	if c.RootView != nil && c.RootView.Area != nil {
		return c.RootView.Area.ActiveRect()
	}
	return c.Config.Selection()
}
