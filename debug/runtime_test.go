package debug

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soocke/qr-scan-go/domain/capture"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestStartRuntimeLogger_LogsLoopStats(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartRuntimeLogger(ctx, 5*time.Millisecond, logger, func() capture.LoopStats {
		return capture.LoopStats{Frames: 10, Decodes: 1}
	})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if out := buf.String(); strings.Contains(out, `"msg":"loop.stats"`) && strings.Contains(out, `"decodes":1`) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no loop.stats line logged: %s", buf.String())
}

func TestProcessRSS_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("rss from /proc only")
	}
	rss, err := processRSS()
	if err != nil || rss == 0 {
		t.Fatalf("expected resident memory, got %d err=%v", rss, err)
	}
}
