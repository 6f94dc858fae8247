//go:build gocv

package capture

import (
	"context"
	"testing"
)

func TestGocvProvider_ChecksConfiguredDevice(t *testing.T) {
	p, err := NewCameraProvider(nil, 1)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	gp := p.(*GocvProvider)
	var checked []int
	gp.opens = func(index int) bool {
		checked = append(checked, index)
		return index == 1
	}
	ok, err := gp.HasCamera(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected device 1 to be found, ok=%v err=%v", ok, err)
	}
	if len(checked) != 1 || checked[0] != 1 {
		t.Fatalf("expected a check of device 1 only, got %v", checked)
	}
}
