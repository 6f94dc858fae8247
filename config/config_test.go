package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestValidate_ClampsRanges(t *testing.T) {
	c := DefaultConfig()
	c.FPS = 0
	c.MaxScansPerSecond = 500
	c.DownscaleSize = -5
	c.WindowWidth = 10
	c.SmallViewportWidth = 0
	c.Source = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.FPS != 15 || c.MaxScansPerSecond != 60 || c.DownscaleSize != 0 || c.WindowWidth != 320 || c.SmallViewportWidth != 768 || c.Source != SourceScreen {
		t.Fatalf("unexpected clamp result %+v", c)
	}
}

func TestValidate_RejectsBadEnums(t *testing.T) {
	c := DefaultConfig()
	c.Facing = "sideways"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected facing error")
	}
	c = DefaultConfig()
	c.Source = "scanner"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected source error")
	}
	c = DefaultConfig()
	c.HTTPAddr = "not an address"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected http_addr error")
	}
	c.HTTPAddr = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("empty http_addr should be allowed: %v", err)
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qrscan.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("missing file should give defaults: %v", err)
	}
	cfg.Source = SourceCamera
	cfg.RegionPerFrame = true
	cfg.ViewportWidth = 600
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Source != SourceCamera || !got.RegionPerFrame || got.EffectiveViewportWidth() != 600 {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if cfg == nil || cfg.Source != SourceScreen {
		t.Fatalf("defaults should be returned with the error")
	}
}

func TestEffectiveViewportWidth_FallsBackToWindow(t *testing.T) {
	c := DefaultConfig()
	if c.EffectiveViewportWidth() != c.WindowWidth {
		t.Fatalf("expected window width fallback")
	}
}

func TestSelection(t *testing.T) {
	c := DefaultConfig()
	if c.Selection() != nil {
		t.Fatalf("default selection should be full screen")
	}
	c.SelectionX, c.SelectionY, c.SelectionW, c.SelectionH = 10, 20, 300, 200
	r := c.Selection()
	if r == nil || r.Min.X != 10 || r.Max.Y != 220 {
		t.Fatalf("unexpected selection %v", r)
	}
	c.SelectionW = -1
	_ = c.Validate()
	if c.Selection() != nil {
		t.Fatalf("negative size should reset selection")
	}
}
