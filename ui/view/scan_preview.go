package view

import (
	"image"

	"github.com/soocke/qr-scan-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ScanPreview shows the camera feed with the scan region overlay already drawn.
type ScanPreview interface {
	UpdatePreview(img image.Image)
	Reset()
}

type scanPreview struct {
	label     *LabelWidget
	prevPhoto *Img // disposed before each replacement
	placeW    int
	placeH    int
}

// NewScanPreview creates the preview label and grids it across the given row.
func NewScanPreview(row, columns, placeW, placeH int) ScanPreview {
	if placeW < 50 {
		placeW = 50
	}
	if placeH < 50 {
		placeH = 50
	}
	photo := NewPhoto(Data(placeholderPNG(placeW, placeH)))
	lbl := Label(Image(photo), Borderwidth(1), Relief("sunken"))
	Grid(lbl, Row(row), Column(0), Columnspan(columns), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	return &scanPreview{label: lbl, prevPhoto: photo, placeW: placeW, placeH: placeH}
}

func placeholderPNG(w, h int) []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// UpdatePreview expects an image already scaled for display.
func (v *scanPreview) UpdatePreview(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	v.replace(images.EncodePNG(img))
}

func (v *scanPreview) Reset() {
	if v == nil || v.label == nil {
		return
	}
	v.replace(placeholderPNG(v.placeW, v.placeH))
}

func (v *scanPreview) replace(pngBytes []byte) {
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.prevPhoto))
}
