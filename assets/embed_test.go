package assets

import "testing"

func TestAppIcon_Decodes(t *testing.T) {
	img, err := AppIcon()
	if err != nil {
		t.Fatalf("decode icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("unexpected icon size %v", b)
	}
}
