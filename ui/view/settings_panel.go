package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/qr-scan-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SettingsPanel edits the capture and scanning part of the config. Changes
// are saved to the config file and take effect on the next launch.
type SettingsPanel interface {
	Build(startRow int) (endRow int)
	SetEditable(enabled bool)
	ApplyChanges() error
}

type settingsPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget
	order    []string
}

func NewSettingsPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) SettingsPanel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &settingsPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *settingsPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		v.order = append(v.order, id)
		row++
	}
	makeRow("source", "Source (screen/camera)", c.Source)
	makeRow("facing", "Facing (any/user/environment)", c.Facing)
	makeRow("deviceIndex", "Camera Index", strconv.Itoa(c.DeviceIndex))
	makeRow("fps", "Frames Per Second", strconv.Itoa(c.FPS))
	makeRow("maxScans", "Max Scans Per Second", strconv.Itoa(c.MaxScansPerSecond))
	makeRow("downscale", "Decode Size Px (0 = off)", strconv.Itoa(c.DownscaleSize))
	makeRow("smallViewport", "Small Viewport Width", strconv.Itoa(c.SmallViewportWidth))
	makeRow("regionPerFrame", "Region Per Frame (true/false)", fmt.Sprintf("%t", c.RegionPerFrame))
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { _ = v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *settingsPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, id := range v.order {
		if w := v.widgets[id]; w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *settingsPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	s := strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
	return s, s != ""
}

func (v *settingsPanel) ApplyChanges() error {
	if v.cfg == nil {
		return nil
	}
	cfg := *v.cfg // copy
	assignInt := func(id string, dst *int) {
		if s, ok := v.text(id); ok {
			if i, err := strconv.Atoi(s); err == nil {
				*dst = i
			}
		}
	}
	if s, ok := v.text("source"); ok {
		cfg.Source = strings.ToLower(s)
	}
	if s, ok := v.text("facing"); ok {
		cfg.Facing = strings.ToLower(s)
	}
	assignInt("deviceIndex", &cfg.DeviceIndex)
	assignInt("fps", &cfg.FPS)
	assignInt("maxScans", &cfg.MaxScansPerSecond)
	assignInt("downscale", &cfg.DownscaleSize)
	assignInt("smallViewport", &cfg.SmallViewportWidth)
	if s, ok := v.text("regionPerFrame"); ok {
		if b, ok := parseBoolLoose(s); ok {
			cfg.RegionPerFrame = b
		}
	}
	if err := cfg.Validate(); err != nil {
		v.logger.Warn("config.invalid", "error", err)
		return err
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		v.logger.Error("config.save", "error", err)
		return err
	}
	v.logger.Info("config.save", "path", v.cfgPath)
	return nil
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
