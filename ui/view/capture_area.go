package view

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/soocke/qr-scan-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// CaptureArea is a see-through window the user drags over the part of the
// screen the screen source should capture.
type CaptureArea interface {
	OpenOrFocus()
	Clear()
	ActiveRect() *image.Rectangle
}

type captureArea struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgPath string
	area    atomic.Pointer[image.Rectangle]
	win     *ToplevelWidget
}

const transparentKey = "#008080"

// NewCaptureArea restores the area saved in cfg.
func NewCaptureArea(cfg *config.Config, cfgPath string, logger *slog.Logger) CaptureArea {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &captureArea{logger: logger, cfg: cfg, cfgPath: cfgPath}
	if cfg != nil {
		v.area.Store(cfg.Selection())
	}
	return v
}

func (v *captureArea) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background(transparentKey))
	win.WmTitle("Capture Area")
	v.win = win
	geom := "480x480+200+200"
	if r := v.ActiveRect(); r != nil {
		geom = fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
	}
	WmGeometry(win.Window, geom)
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-transparentcolor", transparentKey)
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(1))
	center := win.Frame(Background(transparentKey), Borderwidth(3), Relief("solid"))
	Grid(center, Row(0), Column(0), Sticky("nsew"))
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Sticky("we"))
	confirm := win.Button(Txt("Use Area [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.destroy))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	full := win.Button(Txt("Full Screen"), Command(func() { v.Clear(); v.destroy() }))
	Grid(full, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.destroy))
}

func (v *captureArea) Clear() {
	v.area.Store(nil)
	v.persist(image.Rectangle{})
}

func (v *captureArea) confirm() {
	if v.win == nil {
		return
	}
	if rect, ok := parseGeometry(WmGeometry(v.win.Window)); ok {
		v.area.Store(&rect)
		v.persist(rect)
	}
	v.destroy()
}

func (v *captureArea) persist(r image.Rectangle) {
	if v.cfg == nil {
		return
	}
	v.cfg.SelectionX, v.cfg.SelectionY = r.Min.X, r.Min.Y
	v.cfg.SelectionW, v.cfg.SelectionH = r.Dx(), r.Dy()
	if err := v.cfg.Save(v.cfgPath); err != nil {
		v.logger.Warn("config.save", "error", err)
	}
}

func (v *captureArea) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

// ActiveRect is safe to call from the capture goroutine.
func (v *captureArea) ActiveRect() *image.Rectangle {
	r := v.area.Load()
	if r == nil || r.Empty() {
		return nil
	}
	out := *r
	return &out
}

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y"
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

func parseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
