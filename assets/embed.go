package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/png"
)

// AppIconPNG contains the raw PNG bytes of the window icon.
//
//go:embed app_icon.png
var AppIconPNG []byte

// AppIcon decodes the embedded icon into an image.Image.
func AppIcon() (image.Image, error) {
	if len(AppIconPNG) == 0 {
		return nil, fmt.Errorf("embedded app_icon.png is empty")
	}
	img, err := png.Decode(bytes.NewReader(AppIconPNG))
	if err != nil {
		return nil, err
	}
	return img, nil
}
