package app

import (
	"context"
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/qr-scan-go/assets"
	"github.com/soocke/qr-scan-go/debug"
	"github.com/soocke/qr-scan-go/ui/presenter"
	"github.com/soocke/qr-scan-go/ui/theme"
	"github.com/soocke/qr-scan-go/ui/view"
)

const (
	tick = 100 * time.Millisecond
)

type app struct {
	c       *AppContainer
	title   string
	ctx     context.Context
	cancel  context.CancelFunc
	afterID string
}

func NewApp(title string, c *AppContainer) *app {
	ctx, cancel := context.WithCancel(context.Background())
	return &app{c: c, title: title, ctx: ctx, cancel: cancel}
}

func (a *app) Start() {
	c := a.c
	theme.InitStyles(true)
	App.WmTitle(a.title)
	App.IconPhoto(NewPhoto(Data(assets.AppIconPNG)))
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", c.Config.WindowWidth, c.Config.WindowHeight))

	h := view.Handlers{
		OnToggleCamera: func() { c.Camera.Toggle(a.ctx) },
		OnFlashlight:   func() { c.Scanner.ToggleFlashlight(a.ctx) },
		OnScanImage:    func(path string) { c.Scanner.ScanImage(a.ctx, path) },
		OnExit:         a.exitHandler,
	}
	if c.Screen != nil {
		h.OnCaptureArea = func() { c.RootView.Area.OpenOrFocus() }
	}
	c.RootView.Build(h)
	if c.Screen != nil {
		c.Screen.SetSelectionProvider(c.selection)
	}
	c.Sink.SetMounted(true)

	c.ResultPresenter = presenter.NewResultPresenter(c.Store, c.RootView, func() { c.Scanner.Dismiss(a.ctx) })
	c.Loop = &presenter.Loop{
		State:    c.StatePresenter,
		Session:  c.SessionPresenter,
		Result:   c.ResultPresenter,
		Preview:  c.Sink,
		View:     c.RootView,
		Scanner:  c.Scanner,
		Schedule: a.scheduleUpdate,
	}

	if c.Config.Debug {
		debug.StartRuntimeLogger(a.ctx, 2*time.Second, c.Logger, c.Manager.Stats)
	}

	c.Camera.Restore(a.ctx)
	a.scheduleUpdate()
	App.Wait()
}

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.Scanner.Unmount()
	a.c.Sink.SetMounted(false)
	a.c.Manager.Close()
	a.cancel()
	// A start still opening the camera releases it before the window goes.
	a.c.Scanner.Wait()
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps the update on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

