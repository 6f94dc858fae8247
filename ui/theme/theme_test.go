package theme

import "testing"

func TestCurrent_FollowsMode(t *testing.T) {
	prev := darkMode
	t.Cleanup(func() { darkMode = prev })

	darkMode = true
	var p PaletteSnapshot = Current()
	if p.Accent != "#fcd34d" || p.AppBg != "#000000" {
		t.Fatalf("unexpected dark palette %+v", p)
	}
	darkMode = false
	if p = Current(); p != lightPalette {
		t.Fatalf("unexpected light palette %+v", p)
	}
}
