package presenter

import (
	"time"

	"github.com/soocke/qr-scan-go/domain/session"
	"github.com/soocke/qr-scan-go/ui/model"
)

// StateSource reports the session state.
type StateSource interface{ State() session.State }

// ResultSource reports whether a scan result is present.
type ResultSource interface{ Result() (string, bool) }

// SessionView displays scanning durations and counters.
type SessionView interface {
	SetSession(stats model.SessionStats)
}

// SessionPresenter advances the session model from the manager state and
// pushes the values to the view.
type SessionPresenter struct {
	sess    *model.SessionModel
	src     StateSource
	results ResultSource
	view    SessionView
	had     bool
}

func NewSessionPresenter(sess *model.SessionModel, src StateSource, results ResultSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, results: results, view: view}
}

func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	p.sess.Observe(p.src.State() == session.StateRunning, now)
	if p.results != nil {
		_, has := p.results.Result()
		if has && !p.had {
			p.sess.Decoded()
		}
		p.had = has
	}
	p.view.SetSession(p.sess.Stats())
}
