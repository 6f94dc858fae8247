package config

import (
	"encoding/json"
	"fmt"
	"image"
	"os"

	"github.com/go-playground/validator/v10"
)

// DefaultPath is the config file used when -config is not given.
const DefaultPath = "qrscan.json"

// Capture sources.
const (
	SourceScreen = "screen"
	SourceCamera = "camera"
)

// Config holds runtime configuration for capture, scanning and the UI.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Capture
	Source      string `json:"source" validate:"oneof=screen camera"`
	DeviceIndex int    `json:"device_index" validate:"gte=0"`
	Facing      string `json:"facing" validate:"oneof=any user environment"`
	FrameWidth  int    `json:"frame_width" validate:"gte=0"`
	FrameHeight int    `json:"frame_height" validate:"gte=0"`
	FPS         int    `json:"fps" validate:"gte=1,lte=120"`

	// Screen capture area (screen source only); zero size means full screen.
	SelectionX int `json:"selection_x"`
	SelectionY int `json:"selection_y"`
	SelectionW int `json:"selection_w" validate:"gte=0"`
	SelectionH int `json:"selection_h" validate:"gte=0"`

	// Scanning
	MaxScansPerSecond  int  `json:"max_scans_per_second" validate:"gte=1,lte=60"`
	RegionPerFrame     bool `json:"region_per_frame"`
	SmallViewportWidth int  `json:"small_viewport_width" validate:"gte=1"`
	// ViewportWidth is the preview width used for the small-viewport check.
	// 0 means use WindowWidth.
	ViewportWidth int `json:"viewport_width" validate:"gte=0"`
	DownscaleSize int `json:"downscale_size" validate:"gte=0"`

	// Persistence and surfaces
	PrefsPath    string `json:"prefs_path"`
	HTTPAddr     string `json:"http_addr" validate:"omitempty,hostname_port"`
	WindowWidth  int    `json:"window_width" validate:"gte=320"`
	WindowHeight int    `json:"window_height" validate:"gte=240"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		Source:             SourceScreen,
		DeviceIndex:        0,
		Facing:             "environment",
		FrameWidth:         1280,
		FrameHeight:        720,
		FPS:                15,
		MaxScansPerSecond:  25,
		RegionPerFrame:     false,
		SmallViewportWidth: 768,
		ViewportWidth:      0,
		DownscaleSize:      400,
		PrefsPath:          "qrscan_prefs.json",
		HTTPAddr:           "127.0.0.1:8765",
		WindowWidth:        960,
		WindowHeight:       720,
	}
}

// Validate clamps numeric values to safe ranges, fills empty enums with
// defaults and then checks the struct tags.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.Source == "" {
		c.Source = d.Source
	}
	if c.Facing == "" {
		c.Facing = d.Facing
	}
	if c.DeviceIndex < 0 {
		c.DeviceIndex = 0
	}
	if c.FrameWidth < 0 || c.FrameHeight < 0 {
		c.FrameWidth, c.FrameHeight = d.FrameWidth, d.FrameHeight
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.FPS > 120 {
		c.FPS = 120
	}
	if c.MaxScansPerSecond <= 0 {
		c.MaxScansPerSecond = d.MaxScansPerSecond
	}
	if c.MaxScansPerSecond > 60 {
		c.MaxScansPerSecond = 60
	}
	if c.SmallViewportWidth <= 0 {
		c.SmallViewportWidth = d.SmallViewportWidth
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	if c.ViewportWidth < 0 {
		c.ViewportWidth = 0
	}
	if c.DownscaleSize < 0 {
		c.DownscaleSize = 0
	}
	if c.WindowWidth < 320 {
		c.WindowWidth = 320
	}
	if c.WindowHeight < 240 {
		c.WindowHeight = 240
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// EffectiveViewportWidth is the width compared against SmallViewportWidth.
func (c *Config) EffectiveViewportWidth() int {
	if c.ViewportWidth > 0 {
		return c.ViewportWidth
	}
	return c.WindowWidth
}

// Selection returns the configured screen capture area, or nil for full screen.
func (c *Config) Selection() *image.Rectangle {
	if c.SelectionW <= 0 || c.SelectionH <= 0 {
		return nil
	}
	r := image.Rect(c.SelectionX, c.SelectionY, c.SelectionX+c.SelectionW, c.SelectionY+c.SelectionH)
	return &r
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON or validation error it returns the
// config read so far with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save validates and writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
