package debug

// Runtime diagnostics, started only when config.Debug is true.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/soocke/qr-scan-go/domain/capture"
)

// StatsFunc returns the decode loop counters.
type StatsFunc func() capture.LoopStats

// StartRuntimeLogger logs goroutine count, stack, heap and resident memory and
// the decode loop counters every interval until ctx is done. A failing RSS
// query is logged once and then reported as 0.
func StartRuntimeLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, stats StatsFunc) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		var prev capture.LoopStats
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := processRSS()
			if err != nil && !rssErrLogged {
				logger.Warn("loop.stats.rss", slog.String("error", err.Error()))
				rssErrLogged = true
			}
			attrs := []any{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
				slog.Uint64("rss", rss),
			}
			if stats != nil {
				cur := stats()
				attrs = append(attrs,
					slog.Uint64("frames", cur.Frames-prev.Frames),
					slog.Uint64("attempts", cur.Attempts-prev.Attempts),
					slog.Uint64("decodes", cur.Decodes),
					slog.Uint64("errors", cur.Errors),
					slog.Duration("avg_attempt", cur.AvgAttempt),
				)
				prev = cur
			}
			logger.Info("loop.stats", attrs...)
		}
	}()
}
