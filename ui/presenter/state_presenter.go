package presenter

import (
	"sync"
	"time"

	"github.com/soocke/qr-scan-go/domain/session"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives session transitions from any goroutine and reflects
// the latest one on the next Tick.
type StatePresenter struct {
	view StateView

	mu      sync.Mutex
	pending []session.State
	latest  session.State
	shown   bool
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnTransition is a session.Listener.
func (p *StatePresenter) OnTransition(prev, next session.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		if !p.shown {
			p.shown = true
			p.view.SetStateLabel("State: " + p.latest.String())
		}
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	p.mu.Unlock()
	if last != p.latest || !p.shown {
		p.latest = last
		p.shown = true
		p.view.SetStateLabel("State: " + last.String())
	}
}
