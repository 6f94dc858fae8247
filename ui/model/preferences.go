package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultPreferencesFile is used when no path is configured.
const DefaultPreferencesFile = "qrscan_prefs.json"

// Preferences is the persisted UI state. Only the camera choice survives a restart.
type Preferences struct {
	OpenCamera bool `json:"openCamera"`
}

// PreferenceStore loads and saves Preferences.
type PreferenceStore interface {
	Load() (Preferences, error)
	Save(Preferences) error
}

// FilePreferences keeps Preferences in a JSON file. A missing file reads as defaults.
type FilePreferences struct {
	path string
	mu   sync.RWMutex
}

func NewFilePreferences(path string) *FilePreferences {
	if path == "" {
		path = DefaultPreferencesFile
	}
	return &FilePreferences{path: path}
}

func (p *FilePreferences) Path() string { return p.path }

func (p *FilePreferences) Load() (Preferences, error) {
	var prefs Preferences
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("prefs: read %s: %w", p.path, err)
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("prefs: decode %s: %w", p.path, err)
	}
	return prefs, nil
}

// Save writes through a temp file so a crash never leaves a truncated file.
func (p *FilePreferences) Save(prefs Preferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prefs: %w", err)
		}
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("prefs: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("prefs: %w", err)
	}
	return nil
}

// MemoryPreferences is an in-process PreferenceStore, used when no
// preferences file is configured.
type MemoryPreferences struct {
	mu    sync.Mutex
	prefs Preferences
	saves int
}

func (m *MemoryPreferences) Load() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *MemoryPreferences) Save(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryPreferences) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
