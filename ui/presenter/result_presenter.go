package presenter

import (
	"time"

	"github.com/soocke/qr-scan-go/ui/model"
)

// DefaultNoticeTTL is how long a notice stays up.
const DefaultNoticeTTL = 4 * time.Second

// ResultView shows the scan result, notices and the torch indicator.
// ShowResult may block (a modal dialog); onClose must be called once the
// user dismisses it.
type ResultView interface {
	ShowResult(text string, onClose func())
	SetNotice(msg string)
	SetFlashlight(on bool)
}

// ResultPresenter mirrors the scan store into the view on every tick.
type ResultPresenter struct {
	store   *model.ScanStore
	view    ResultView
	dismiss func()
	ttl     time.Duration

	init     bool
	flash    bool
	notice   string
	noticeAt time.Time
	showing  bool
}

// NewResultPresenter builds the presenter; dismiss runs after the result dialog closes.
func NewResultPresenter(store *model.ScanStore, view ResultView, dismiss func()) *ResultPresenter {
	return &ResultPresenter{store: store, view: view, dismiss: dismiss, ttl: DefaultNoticeTTL}
}

func (p *ResultPresenter) Tick(now time.Time) {
	if p == nil || p.store == nil || p.view == nil {
		return
	}
	snap := p.store.Snapshot()
	if !p.init || snap.FlashlightOn != p.flash {
		p.flash = snap.FlashlightOn
		p.view.SetFlashlight(p.flash)
	}
	switch {
	case !p.init || snap.Notice != p.notice:
		p.notice = snap.Notice
		p.noticeAt = now
		p.view.SetNotice(p.notice)
	case p.notice != "" && now.Sub(p.noticeAt) >= p.ttl:
		p.store.SetNotice("")
	}
	p.init = true

	if !snap.HasResult {
		p.showing = false
		return
	}
	if p.showing {
		return
	}
	p.showing = true
	p.view.ShowResult(snap.Result, func() {
		if p.dismiss != nil {
			p.dismiss()
		}
	})
}
