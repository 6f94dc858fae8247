package capture

import (
	"sync/atomic"
	"time"
)

// LoopStats summarises decode loop behaviour for instrumentation.
type LoopStats struct {
	Frames         uint64        `json:"frames"`
	Attempts       uint64        `json:"attempts"`
	Misses         uint64        `json:"misses"`
	Errors         uint64        `json:"errors"`
	Decodes        uint64        `json:"decodes"`
	AvgAttempt     time.Duration `json:"avg_attempt_ns"`
	LastFrame      time.Time     `json:"last_frame"`
	LatestFrameAge time.Duration `json:"latest_frame_age_ns"`
}

// LoopCounters accumulates LoopStats from a running loop. The zero value is ready.
type LoopCounters struct {
	frames       atomic.Uint64
	attempts     atomic.Uint64
	misses       atomic.Uint64
	errors       atomic.Uint64
	decodes      atomic.Uint64
	attemptNanos atomic.Uint64
	lastFrame    atomic.Int64
}

func (c *LoopCounters) Frame(at time.Time) {
	c.frames.Add(1)
	c.lastFrame.Store(at.UnixNano())
}

// Attempt records one decode attempt and its outcome.
func (c *LoopCounters) Attempt(d time.Duration, decoded, miss bool) {
	c.attempts.Add(1)
	c.attemptNanos.Add(uint64(d.Nanoseconds()))
	switch {
	case decoded:
		c.decodes.Add(1)
	case miss:
		c.misses.Add(1)
	default:
		c.errors.Add(1)
	}
}

// ReadError records a failed frame read.
func (c *LoopCounters) ReadError() { c.errors.Add(1) }

func (c *LoopCounters) Snapshot() LoopStats {
	attempts := c.attempts.Load()
	var avg time.Duration
	if attempts > 0 {
		avg = time.Duration(c.attemptNanos.Load() / attempts)
	}
	var last time.Time
	var age time.Duration
	if ns := c.lastFrame.Load(); ns != 0 {
		last = time.Unix(0, ns)
		age = time.Since(last)
	}
	return LoopStats{
		Frames:         c.frames.Load(),
		Attempts:       attempts,
		Misses:         c.misses.Load(),
		Errors:         c.errors.Load(),
		Decodes:        c.decodes.Load(),
		AvgAttempt:     avg,
		LastFrame:      last,
		LatestFrameAge: age,
	}
}
