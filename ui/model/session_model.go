package model

import (
	"time"
)

// SessionStats is what the stats panel shows.
type SessionStats struct {
	Current  time.Duration // running (or last finished) scanning session
	Total    time.Duration // all scanning time, including the running session
	Sessions int           // number of sessions started
	Decodes  int
}

// SessionModel accumulates scanning time from periodic observations of the
// session state. It is driven from the UI tick only and is not synchronized.
type SessionModel struct {
	running  bool
	since    time.Time
	current  time.Duration
	finished time.Duration
	sessions int
	decodes  int
}

func NewSessionModel() *SessionModel { return &SessionModel{} }

// Observe records whether a session is running at now.
func (m *SessionModel) Observe(running bool, now time.Time) {
	if m == nil {
		return
	}
	switch {
	case running && !m.running:
		m.running = true
		m.since = now
		m.current = 0
		m.sessions++
	case running:
		m.current = now.Sub(m.since)
	case m.running:
		m.current = now.Sub(m.since)
		m.finished += m.current
		m.running = false
	}
}

// Decoded counts one successful scan.
func (m *SessionModel) Decoded() {
	if m != nil {
		m.decodes++
	}
}

func (m *SessionModel) Stats() SessionStats {
	if m == nil {
		return SessionStats{}
	}
	total := m.finished
	if m.running {
		total += m.current
	}
	return SessionStats{Current: m.current, Total: total, Sessions: m.sessions, Decodes: m.decodes}
}
