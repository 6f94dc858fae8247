package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/qr-scan-go/domain/capture"
	"github.com/soocke/qr-scan-go/domain/decode"
	"github.com/soocke/qr-scan-go/domain/region"
)

// Manager owns at most one camera session: the capture stream, the decode
// loop reading from it and the torch state. All methods are safe for
// concurrent use.
type Manager struct {
	provider capture.Provider
	decoder  decode.Decoder
	logger   *slog.Logger
	cfg      Config
	counters capture.LoopCounters

	mu        sync.Mutex
	state     State
	gen       uint64 // bumped by Stop and Start; an in-flight Start compares it before storing its handle
	active    *camSession
	torch     bool
	closed    bool
	listeners []Listener
	lastDone  <-chan struct{} // done channel of the most recent decode loop
}

// camSession holds the handles of one running session. Only the Manager
// touches them.
type camSession struct {
	id        string
	stream    capture.Stream
	sink      Sink
	opts      Options
	cancel    context.CancelFunc
	done      chan struct{}
	after     <-chan struct{} // previous loop; this loop reads no frame before it exits
	callbacks atomic.Int32    // >0 while the loop goroutine is inside a caller callback
}

// NewManager constructs an idle manager.
func NewManager(provider capture.Provider, decoder decode.Decoder, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if decoder == nil {
		decoder = decode.Default()
	}
	return &Manager{provider: provider, decoder: decoder, logger: logger, cfg: cfg.withDefaults()}
}

func (m *Manager) AddListener(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Torch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.torch
}

// SessionID returns the id of the running session, or "" when idle.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.id
}

func (m *Manager) Stats() capture.LoopStats { return m.counters.Snapshot() }

// Start opens a capture stream and begins decoding into sink. A running
// session is fully torn down first. The first successful decode stops the
// session and then calls opts.OnDecode exactly once.
func (m *Manager) Start(ctx context.Context, sink Sink, opts Options) error {
	if sink == nil || !sink.Mounted() {
		return ErrSinkUnavailable
	}
	if opts.OnDecode == nil {
		return errors.New("session: OnDecode callback required")
	}
	if opts.RegionCalculator == nil {
		opts.RegionCalculator = region.NewCalculator(false)
	}
	if m.provider == nil {
		return fmt.Errorf("%w: no capture provider", ErrCameraUnavailable)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	prev, from := m.detachLocked()
	m.gen++
	gen := m.gen
	m.mu.Unlock()
	m.notify(from, StateIdle)
	if prev != nil {
		m.teardown(prev, "restart")
	}

	m.mu.Lock()
	if m.gen != gen || m.closed {
		m.mu.Unlock()
		return ErrStartCanceled
	}
	from = m.state
	m.state = StateStarting
	m.mu.Unlock()
	m.notify(from, StateStarting)

	// Device presence is checked before anything is allocated.
	ok, err := m.provider.HasCamera(ctx)
	if err != nil || !ok {
		m.failStart(gen)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err == nil {
			err = capture.ErrNoDevice
		}
		m.logger.Warn("session.start", "error", err)
		return fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}
	stream, err := m.provider.Open(ctx, capture.Constraints{
		Facing:      opts.PreferredFacing,
		DeviceIndex: m.cfg.DeviceIndex,
		Width:       m.cfg.Width,
		Height:      m.cfg.Height,
		FPS:         m.cfg.FPS,
	})
	if err != nil {
		m.failStart(gen)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		m.logger.Warn("session.start", "error", err)
		return fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}

	m.mu.Lock()
	if m.gen != gen || m.closed {
		// Stop or a newer Start ran while the stream was opening.
		m.mu.Unlock()
		if err := releaseStream(stream); err != nil {
			m.logger.Warn("session.release", "error", err)
		}
		m.failStart(gen)
		return ErrStartCanceled
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	sess := &camSession{
		id:     uuid.NewString(),
		stream: stream,
		sink:   sink,
		opts:   opts,
		cancel: cancel,
		done:   make(chan struct{}),
		after:  m.lastDone,
	}
	m.lastDone = sess.done
	m.active = sess
	m.torch = false
	from = m.state
	m.state = StateRunning
	m.mu.Unlock()
	m.notify(from, StateRunning)

	m.logger.Info("session.start", "session", sess.id, "facing", opts.PreferredFacing.String())
	go m.run(loopCtx, sess)
	return nil
}

// Stop tears down the running session, if any, and cancels an in-flight
// Start. It is a no-op when idle.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.gen++
	sess, from := m.detachLocked()
	m.mu.Unlock()
	m.notify(from, StateIdle)
	if sess != nil {
		m.teardown(sess, "stop")
	}
}

// Close stops the session and rejects further Start calls.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Stop()
}

// ToggleFlashlight flips the torch of the running session and returns the new
// torch state. Torch capability is queried from the stream on every call.
func (m *Manager) ToggleFlashlight(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.state != StateRunning {
		return false, ErrFlashUnavailable
	}
	stream := m.active.stream
	has, err := stream.HasTorch()
	if err != nil {
		return m.torch, fmt.Errorf("%w: %w", ErrFlashUnavailable, err)
	}
	if !has {
		return m.torch, ErrFlashUnavailable
	}
	next := !m.torch
	if err := stream.SetTorch(next); err != nil {
		// Hardware state is unknown now; force it and the flag to off.
		if rerr := stream.SetTorch(false); rerr != nil {
			m.logger.Warn("session.torch.rollback", "error", rerr)
		}
		m.torch = false
		m.logger.Warn("session.torch", "session", m.active.id, "error", err)
		return false, fmt.Errorf("%w: %w", ErrFlashUnavailable, err)
	}
	m.torch = next
	m.logger.Debug("session.torch", "session", m.active.id, "on", next)
	return next, nil
}

// ScanStillImage decodes a single still image. It takes no manager lock and
// never touches the running session.
func (m *Manager) ScanStillImage(ctx context.Context, r io.Reader) (string, error) {
	start := time.Now()
	text, err := decode.Still(ctx, m.decoder, r, m.cfg.StillImageMaxSide)
	if err != nil {
		m.logger.Debug("session.still", "error", err, "elapsed", time.Since(start))
		return "", err
	}
	m.logger.Info("session.still", "elapsed", time.Since(start))
	return text, nil
}

// detachLocked clears the active session and moves to Idle. It returns the
// detached session (nil when none) and the state left.
func (m *Manager) detachLocked() (*camSession, State) {
	sess := m.active
	from := m.state
	m.active = nil
	m.torch = false
	m.state = StateIdle
	return sess, from
}

func (m *Manager) failStart(gen uint64) {
	m.mu.Lock()
	if m.gen != gen || m.state != StateStarting {
		m.mu.Unlock()
		return
	}
	m.state = StateIdle
	m.mu.Unlock()
	m.notify(StateStarting, StateIdle)
}

// teardown releases everything sess owns. Every step runs even if an earlier
// one fails. It waits for the decode loop to exit unless called from inside
// OnDecode or OnDecodeError; then the loop exits right after the callback
// returns and the next session's loop waits for it.
func (m *Manager) teardown(sess *camSession, reason string) {
	sess.cancel()
	// Torch hardware goes off with the tracks; an explicit off is best effort.
	if has, err := sess.stream.HasTorch(); err == nil && has {
		if err := sess.stream.SetTorch(false); err != nil {
			m.logger.Debug("session.torch.off", "session", sess.id, "error", err)
		}
	}
	if err := releaseStream(sess.stream); err != nil {
		m.logger.Warn("session.release", "session", sess.id, "error", err)
	}
	if sess.callbacks.Load() == 0 {
		<-sess.done
	}
	m.logger.Info("session.stop", "session", sess.id, "reason", reason)
}

// releaseStream stops every track, collecting failures instead of stopping
// at the first one.
func releaseStream(s capture.Stream) error {
	var errs []error
	for _, tr := range s.Tracks() {
		if tr == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, fmt.Errorf("session: track %s stop panic: %v", tr.Kind(), r))
				}
			}()
			if err := tr.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("session: stop %s track: %w", tr.Kind(), err))
			}
		}()
	}
	return errors.Join(errs...)
}

func (m *Manager) notify(prev, next State) {
	if prev == next {
		return
	}
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	m.logger.Debug("session state transition", "from", prev.String(), "to", next.String())
	for _, l := range listeners {
		l(prev, next)
	}
}

// run is the decode loop. Frames are pulled one at a time, so a decode
// attempt always finishes before the next frame is looked at.
func (m *Manager) run(ctx context.Context, sess *camSession) {
	defer close(sess.done)
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("decode loop panic", "session", sess.id, "error", r, "stack", string(debug.Stack()))
			m.endSession(sess, fmt.Errorf("%w: decode loop panic: %v", ErrDecodeTransport, r))
		}
	}()
	if sess.after != nil {
		select {
		case <-sess.after:
		case <-ctx.Done():
			return
		}
	}

	minInterval := time.Second / time.Duration(m.cfg.MaxScansPerSecond)
	calc := sess.opts.RegionCalculator
	var (
		reg         region.Region
		lastSize    image.Point
		lastAttempt time.Time
	)
	for {
		frame, err := sess.stream.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, capture.ErrStreamClosed) {
				m.endSession(sess, fmt.Errorf("%w: %w", ErrCameraUnavailable, err))
				return
			}
			m.counters.ReadError()
			m.reportError(sess, fmt.Errorf("%w: read frame: %w", ErrDecodeTransport, err))
			if ctx.Err() != nil || !sleepCtx(ctx, m.cfg.ReadRetryDelay) {
				return
			}
			continue
		}
		if frame == nil {
			continue
		}
		now := time.Now()
		m.counters.Frame(now)

		var pooled *image.RGBA
		if _, ok := frame.(*image.RGBA); !ok {
			pooled = capture.ToRGBA(frame)
			frame = pooled
		}
		size := frame.Bounds().Size()
		if sess.opts.RegionPerFrame || size != lastSize {
			reg = calc(size.X, size.Y)
			lastSize = size
		}
		m.present(sess, frame, reg)
		if ctx.Err() != nil {
			capture.RecycleFrame(pooled)
			return
		}
		if now.Sub(lastAttempt) < minInterval {
			capture.RecycleFrame(pooled)
			continue
		}
		lastAttempt = now
		text, err := decode.InRegion(ctx, m.decoder, frame, reg, m.cfg.DownscaleSize)
		capture.RecycleFrame(pooled)
		elapsed := time.Since(now)
		switch {
		case err == nil:
			m.counters.Attempt(elapsed, true, false)
			m.complete(sess, text)
			return
		case ctx.Err() != nil:
			return
		case errors.Is(err, decode.ErrNoCodeFound):
			m.counters.Attempt(elapsed, false, true)
		default:
			m.counters.Attempt(elapsed, false, false)
			if !errors.Is(err, ErrDecodeTransport) {
				err = fmt.Errorf("%w: %w", ErrDecodeTransport, err)
			}
			m.reportError(sess, err)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// present hands a frame to the sink. It runs without the callback marker, so
// a Stop from another goroutine waits for Present to return.
func (m *Manager) present(sess *camSession, frame image.Image, reg region.Region) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("session sink panic", "session", sess.id, "error", r)
		}
	}()
	sess.sink.Present(frame, reg)
}

// complete detaches sess after a successful decode, releases its stream and
// hands the payload to OnDecode. A session stopped concurrently drops the
// payload, so OnDecode never fires after Stop.
func (m *Manager) complete(sess *camSession, text string) {
	m.mu.Lock()
	if m.active != sess {
		m.mu.Unlock()
		return
	}
	m.gen++
	_, from := m.detachLocked()
	m.mu.Unlock()
	m.notify(from, StateIdle)

	sess.cancel()
	if err := releaseStream(sess.stream); err != nil {
		m.logger.Warn("session.release", "session", sess.id, "error", err)
	}
	m.logger.Info("session.decoded", "session", sess.id, "length", len(text))
	m.callback(sess, func() { sess.opts.OnDecode(text) })
}

// endSession handles a session that died on its own (device gone, loop panic).
func (m *Manager) endSession(sess *camSession, cause error) {
	m.mu.Lock()
	if m.active != sess {
		m.mu.Unlock()
		return
	}
	m.gen++
	_, from := m.detachLocked()
	m.mu.Unlock()
	m.notify(from, StateIdle)

	sess.cancel()
	if err := releaseStream(sess.stream); err != nil {
		m.logger.Warn("session.release", "session", sess.id, "error", err)
	}
	m.logger.Warn("session.ended", "session", sess.id, "error", cause)
	if sess.opts.OnDecodeError != nil {
		m.callback(sess, func() { sess.opts.OnDecodeError(cause) })
	}
}

func (m *Manager) reportError(sess *camSession, err error) {
	m.logger.Warn("decode.error", "session", sess.id, "error", err)
	if sess.opts.OnDecodeError == nil {
		return
	}
	m.callback(sess, func() { sess.opts.OnDecodeError(err) })
}

// callback runs fn on the loop goroutine with the callback marker set, so a
// Stop or Start issued from inside fn does not wait on this goroutine.
func (m *Manager) callback(sess *camSession, fn func()) {
	sess.callbacks.Add(1)
	defer sess.callbacks.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("session callback panic", "session", sess.id, "error", r)
		}
	}()
	fn()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ Controller = (*Manager)(nil)
