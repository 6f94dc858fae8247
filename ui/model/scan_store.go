package model

import (
	"log/slog"
	"sync"
)

// ScanSnapshot is a copy of the store at one point in time.
type ScanSnapshot struct {
	OpenCamera   bool
	FlashlightOn bool
	Result       string
	HasResult    bool
	Notice       string
}

// ScanStore holds the scanner's shared UI state: the persisted camera
// preference, the torch indicator, the last scan result and a transient
// notice. Writes are last-write-wins; subscribers are called after every
// change, outside the lock.
type ScanStore struct {
	prefs  PreferenceStore
	logger *slog.Logger

	mu           sync.Mutex
	openCamera   bool
	flashlightOn bool
	result       *string
	notice       string
	nextSub      int
	subs         map[int]func(ScanSnapshot)
}

// NewScanStore restores openCamera from prefs. A failed load keeps the default.
func NewScanStore(prefs PreferenceStore, logger *slog.Logger) *ScanStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &ScanStore{prefs: prefs, logger: logger, subs: map[int]func(ScanSnapshot){}}
	if prefs != nil {
		p, err := prefs.Load()
		if err != nil {
			logger.Warn("prefs.load", "error", err)
		} else {
			s.openCamera = p.OpenCamera
		}
	}
	return s
}

func (s *ScanStore) Snapshot() ScanSnapshot {
	if s == nil {
		return ScanSnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ScanStore) snapshotLocked() ScanSnapshot {
	snap := ScanSnapshot{
		OpenCamera:   s.openCamera,
		FlashlightOn: s.flashlightOn,
		Notice:       s.notice,
	}
	if s.result != nil {
		snap.Result, snap.HasResult = *s.result, true
	}
	return snap
}

func (s *ScanStore) OpenCamera() bool { return s.Snapshot().OpenCamera }

// SetOpenCamera stores the preference and persists it.
func (s *ScanStore) SetOpenCamera(open bool) error {
	if s == nil {
		return nil
	}
	changed := s.update(func() bool {
		if s.openCamera == open {
			return false
		}
		s.openCamera = open
		return true
	})
	if !changed || s.prefs == nil {
		return nil
	}
	if err := s.prefs.Save(Preferences{OpenCamera: open}); err != nil {
		s.logger.Warn("prefs.save", "error", err)
		return err
	}
	return nil
}

func (s *ScanStore) SetFlashlightOn(on bool) {
	s.update(func() bool {
		if s.flashlightOn == on {
			return false
		}
		s.flashlightOn = on
		return true
	})
}

// Result returns the last decoded payload and whether one is present.
func (s *ScanStore) Result() (string, bool) {
	snap := s.Snapshot()
	return snap.Result, snap.HasResult
}

func (s *ScanStore) SetResult(text string) {
	s.update(func() bool {
		if s.result != nil && *s.result == text {
			return false
		}
		s.result = &text
		return true
	})
}

func (s *ScanStore) ClearResult() {
	s.update(func() bool {
		if s.result == nil {
			return false
		}
		s.result = nil
		return true
	})
}

// SetNotice replaces the transient notice; "" clears it.
func (s *ScanStore) SetNotice(msg string) {
	s.update(func() bool {
		if s.notice == msg {
			return false
		}
		s.notice = msg
		return true
	})
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *ScanStore) Subscribe(fn func(ScanSnapshot)) (unsubscribe func()) {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *ScanStore) update(mutate func() bool) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	if !mutate() {
		s.mu.Unlock()
		return false
	}
	snap := s.snapshotLocked()
	subs := make([]func(ScanSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
	return true
}
