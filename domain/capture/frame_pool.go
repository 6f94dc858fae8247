package capture

import (
	"image"
	"image/draw"
	"sync"
)

// Frames from cameras arrive in whatever image type the driver produces
// (YCbCr, BGR-converted RGBA, ...). The decode loop normalises each one into a
// pooled *image.RGBA so a steady stream does not allocate a fresh backing
// slice per frame. Consumers hand frames back with RecycleFrame once the
// decode attempt and the preview hand-off are done; frames that are never
// recycled are simply garbage collected.
var framePool sync.Pool // stores *image.RGBA

// AcquireFrame returns a reusable RGBA image sized to rect. Pix length is
// exactly rect area * 4 and Stride is width*4.
func AcquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// RecycleFrame returns the frame to the pool. The caller must not touch it
// afterwards.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}

// ToRGBA copies src into a pooled RGBA frame whose bounds start at the origin.
func ToRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	dst := AcquireFrame(image.Rect(0, 0, b.Dx(), b.Dy()))
	if len(dst.Pix) == 0 {
		return dst
	}
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}
