package model

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/soocke/qr-scan-go/domain/region"
)

func TestScanStore_RestoresAndPersistsOpenCamera(t *testing.T) {
	prefs := &MemoryPreferences{}
	_ = prefs.Save(Preferences{OpenCamera: true})

	s := NewScanStore(prefs, nil)
	if !s.OpenCamera() {
		t.Fatalf("openCamera not restored")
	}
	if err := s.SetOpenCamera(false); err != nil {
		t.Fatalf("set: %v", err)
	}
	if p, _ := prefs.Load(); p.OpenCamera {
		t.Fatalf("openCamera not persisted")
	}
	before := prefs.Saves()
	_ = s.SetOpenCamera(false)
	if prefs.Saves() != before {
		t.Fatalf("unchanged value should not be written")
	}
}

type failingPrefs struct{}

func (failingPrefs) Load() (Preferences, error) { return Preferences{}, errors.New("disk gone") }
func (failingPrefs) Save(Preferences) error     { return errors.New("disk gone") }

func TestScanStore_PreferenceFailuresKeepMemoryState(t *testing.T) {
	s := NewScanStore(failingPrefs{}, nil)
	if s.OpenCamera() {
		t.Fatalf("failed load should fall back to false")
	}
	if err := s.SetOpenCamera(true); err == nil {
		t.Fatalf("expected save error")
	}
	if !s.OpenCamera() {
		t.Fatalf("in-memory value should still update")
	}
}

func TestScanStore_ResultAndSubscribers(t *testing.T) {
	s := NewScanStore(nil, nil)
	var mu sync.Mutex
	var seen []ScanSnapshot
	unsub := s.Subscribe(func(snap ScanSnapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	})

	if _, ok := s.Result(); ok {
		t.Fatalf("fresh store has a result")
	}
	s.SetResult("hello")
	s.SetResult("hello") // no change, no event
	if text, ok := s.Result(); !ok || text != "hello" {
		t.Fatalf("result %q %v", text, ok)
	}
	s.SetResult("") // empty payload is still a result
	if _, ok := s.Result(); !ok {
		t.Fatalf("empty payload should be present")
	}
	s.ClearResult()
	s.SetFlashlightOn(true)
	unsub()
	unsub()
	s.SetNotice("ignored by removed subscriber")

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(seen), seen)
	}
	if !seen[0].HasResult || seen[0].Result != "hello" || seen[2].HasResult || !seen[3].FlashlightOn {
		t.Fatalf("unexpected event sequence %+v", seen)
	}
}

func TestFilePreferences_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	p := NewFilePreferences(path)
	got, err := p.Load()
	if err != nil || got.OpenCamera {
		t.Fatalf("missing file should load defaults, got %+v err=%v", got, err)
	}
	if err := p.Save(Preferences{OpenCamera: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = NewFilePreferences(path).Load()
	if err != nil || !got.OpenCamera {
		t.Fatalf("reload: %+v err=%v", got, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestFilePreferences_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFilePreferences(path).Load(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRegionModel_SetAndClear(t *testing.T) {
	var m RegionModel
	r := region.Compute(640, 480, false)
	m.Set(r, image.Pt(640, 480))
	if got, size := m.Region(); got != r || size != image.Pt(640, 480) {
		t.Fatalf("got %+v %v", got, size)
	}
	m.Set(r, image.Point{})
	if got, _ := m.Region(); !got.Empty() {
		t.Fatalf("zero frame should clear, got %+v", got)
	}
	m.Set(r, image.Pt(640, 480))
	m.Clear()
	if got, _ := m.Region(); !got.Empty() {
		t.Fatalf("clear failed")
	}
}
