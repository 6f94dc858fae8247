package view

import (
	"fmt"
	"time"

	"github.com/soocke/qr-scan-go/ui/model"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows scanning durations and the scan counter.
type SessionStats interface {
	SetStats(s model.SessionStats)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	scansLbl   *LabelWidget
}

// NewSessionStats creates the labels inside parent starting at (row, startCol).
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), scansLbl: Label(Width(10))}
	for i, lbl := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.scansLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.SetStats(model.SessionStats{})
	return s
}

func (s *sessionStats) SetStats(st model.SessionStats) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(st.Current)))
	s.totalLbl.Configure(Txt("Total: " + clock(st.Total)))
	s.scansLbl.Configure(Txt(fmt.Sprintf("Scans: %d", st.Decodes)))
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
