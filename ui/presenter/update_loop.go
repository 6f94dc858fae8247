package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters, flushes the preview and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	State    *StatePresenter
	Session  *SessionPresenter
	Result   *ResultPresenter
	Preview  *PreviewSink
	View     PreviewView
	Scanner  Scanner
	Schedule func()
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Preview != nil && l.View != nil && (l.Scanner == nil || l.Scanner.Mounted()) {
		l.Preview.Flush(l.View)
	}
	// Result last: its dialog may block until dismissed.
	if l.Result != nil {
		l.Result.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
