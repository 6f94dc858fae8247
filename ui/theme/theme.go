package theme

// Styling for the scanner window: a dark camera surface with the amber scan
// accent, and a light variant for bright rooms.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// PaletteSnapshot holds resolved colors for one mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

var (
	darkPalette = PaletteSnapshot{
		AppBg:     "#000000",
		Surface:   "#171717",
		Primary:   "#262626",
		Danger:    "#dc2626",
		Accent:    "#fcd34d", // scan frame amber
		Text:      "#ffffff",
		TextMuted: "#a3a3a3",
	}
	lightPalette = PaletteSnapshot{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#b45309",
		Text:      "#1e293b",
		TextMuted: "#64748b",
	}
)

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
	StyleStateLabel    = "state.TLabel"
)

var darkMode = true

// Current returns the palette of the active mode.
func Current() PaletteSnapshot {
	if darkMode {
		return darkPalette
	}
	return lightPalette
}

// InitStyles activates the base theme and configures the named styles.
func InitStyles(dark bool) {
	darkMode = dark
	p := Current()
	_ = ActivateTheme("azure dark")
	if !dark {
		_ = ActivateTheme("azure light")
	}
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleAccentLabel,
		Foreground(p.Accent),
		Background(p.Surface),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground(p.Text),
		Background(p.Surface),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
