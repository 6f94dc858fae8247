package view

import (
	"image"
	"log/slog"

	"github.com/soocke/qr-scan-go/config"
	"github.com/soocke/qr-scan-go/ui/model"
	"github.com/soocke/qr-scan-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are invoked on user actions. Nil handlers disable their button.
type Handlers struct {
	OnToggleCamera func()
	OnFlashlight   func()
	OnScanImage    func(path string)
	OnCaptureArea  func()
	OnExit         func()
}

// RootView composes the top-level layout. It implements the view contracts
// of the presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session  SessionStats
	Settings SettingsPanel
	Preview  ScanPreview
	Area     CaptureArea

	// Widgets
	StateLabel  *TLabelWidget
	NoticeLabel *TLabelWidget
	CameraBtn   *TButtonWidget
	FlashBtn    *TButtonWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

var imageFileTypes = []FileType{
	{TypeName: "Images", Extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}},
	{TypeName: "All files", Extensions: []string{"*"}},
}

func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: stats, state label, buttons
	statsFrame := Frame()
	Grid(statsFrame, Row(0), Column(0), Columnspan(2), Sticky("w"), Padx("0.3m"), Pady("0.3m"))
	rv.Session = NewSessionStats(statsFrame, 0, 0)
	rv.StateLabel = TLabel(Txt("State: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(3), Rowspan(3), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	btnRow := 0
	addButton := func(text, style string, fn func()) *TButtonWidget {
		opts := []Opt{Txt(text), Style(style)}
		if fn == nil {
			opts = append(opts, State("disabled"))
		} else {
			opts = append(opts, Command(fn))
		}
		b := TButton(opts...)
		Grid(b, In(btnFrame), Row(btnRow), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		btnRow++
		return b
	}
	rv.CameraBtn = addButton("Open Camera", theme.StylePrimaryButton, h.OnToggleCamera)
	rv.FlashBtn = addButton("Flashlight", theme.StylePrimaryButton, h.OnFlashlight)
	var scanImage func()
	if h.OnScanImage != nil {
		scanImage = func() {
			files := GetOpenFile(Title("Scan QR image"), Filetypes(imageFileTypes))
			if len(files) > 0 && files[0] != "" {
				h.OnScanImage(files[0])
			}
		}
	}
	addButton("Scan Image", theme.StylePrimaryButton, scanImage)
	addButton("Capture Area", theme.StylePrimaryButton, h.OnCaptureArea)
	addButton("Exit", theme.StyleDangerButton, h.OnExit)

	// Row 1: notice
	rv.NoticeLabel = TLabel(Txt(""), Style(theme.StyleAccentLabel), Anchor("w"))
	Grid(rv.NoticeLabel, Row(1), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.2m"))

	endRow := 2
	rv.Settings = NewSettingsPanel(rv.cfg, rv.cfgPath, rv.logger)
	endRow = rv.Settings.Build(endRow)

	pw, ph := 640, 480
	if rv.cfg != nil {
		pw, ph = rv.cfg.WindowWidth-200, rv.cfg.WindowHeight-200
	}
	rv.Preview = NewScanPreview(endRow, 4, pw, ph)
	rv.Area = NewCaptureArea(rv.cfg, rv.cfgPath, rv.logger)
}

func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePreview(img)
	}
}

func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}

func (rv *RootView) SetSession(stats model.SessionStats) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetStats(stats)
	}
}

func (rv *RootView) SetNotice(msg string) {
	if rv != nil && rv.NoticeLabel != nil {
		rv.NoticeLabel.Configure(Txt(msg))
	}
}

func (rv *RootView) SetFlashlight(on bool) {
	if rv == nil || rv.FlashBtn == nil {
		return
	}
	text := "Flashlight"
	if on {
		text = "Flashlight (on)"
	}
	rv.FlashBtn.Configure(Txt(text))
}

// SetCameraOpen relabels the camera button; settings are locked while scanning.
func (rv *RootView) SetCameraOpen(open bool) {
	if rv == nil {
		return
	}
	if rv.CameraBtn != nil {
		text := "Open Camera"
		if open {
			text = "Close Camera"
		}
		rv.CameraBtn.Configure(Txt(text))
	}
	if rv.Settings != nil {
		rv.Settings.SetEditable(!open)
	}
}

// ShowResult blocks in a modal dialog and calls onClose once it is dismissed.
func (rv *RootView) ShowResult(text string, onClose func()) {
	MessageBox(Title("QR Code Detected"), Msg(text), Icon("info"), Type("ok"))
	if onClose != nil {
		onClose()
	}
}
