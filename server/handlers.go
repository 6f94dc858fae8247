package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soocke/qr-scan-go/domain/capture"
	"github.com/soocke/qr-scan-go/domain/decode"
	"github.com/soocke/qr-scan-go/domain/session"
	"github.com/soocke/qr-scan-go/ui/model"
)

type errorBody struct {
	Error string `json:"error"`
}

type resultBody struct {
	Text    string `json:"text"`
	Present bool   `json:"present"`
}

type sessionBody struct {
	State     string            `json:"state"`
	SessionID string            `json:"session_id,omitempty"`
	Torch     bool              `json:"torch"`
	Sink      FrameInfo         `json:"sink"`
	Stats     capture.LoopStats `json:"stats"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, decode.ErrNoCodeFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, decode.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrCameraUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrFlashUnavailable),
		errors.Is(err, session.ErrStartCanceled):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.deps.MaxUpload)
	text, err := s.deps.Ctrl.ScanStillImage(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, statusFor(err), err)
		return
	}
	s.deps.Store.SetResult(text)
	writeJSON(w, http.StatusOK, resultBody{Text: text, Present: true})
}

func (s *Server) sessionState() sessionBody {
	c := s.deps.Ctrl
	return sessionBody{
		State:     c.State().String(),
		SessionID: c.SessionID(),
		Torch:     c.Torch(),
		Sink:      s.deps.Sink.Info(),
		Stats:     c.Stats(),
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionState())
}

// startSession clears the previous result and starts scanning. The session
// outlives the request, so it is not bound to the request context.
func (s *Server) startSession(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.deps.Store.ClearResult()
	s.deps.Store.SetFlashlightOn(false)
	opts := s.deps.Session
	opts.OnDecode = func(text string) {
		s.deps.Store.SetFlashlightOn(false)
		s.deps.Store.SetResult(text)
	}
	opts.OnDecodeError = func(err error) {
		s.logger.Debug("decode.error", "error", err)
	}
	return s.deps.Ctrl.Start(context.WithoutCancel(ctx), s.deps.Sink, opts)
}

// StartSession starts scanning outside of a request (headless startup).
func (s *Server) StartSession(ctx context.Context) error { return s.startSession(ctx) }

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.startSession(r.Context()); err != nil {
		s.logger.Warn("session.start", "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.deps.Ctrl.Stop()
	s.deps.Store.SetFlashlightOn(false)
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) handleFlashlight(w http.ResponseWriter, r *http.Request) {
	on, err := s.deps.Ctrl.ToggleFlashlight(r.Context())
	s.deps.Store.SetFlashlightOn(on)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"on": on})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Preferences{OpenCamera: s.deps.Store.OpenCamera()})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var p model.Preferences
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Store.SetOpenCamera(p.OpenCamera); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	text, ok := s.deps.Store.Result()
	writeJSON(w, http.StatusOK, resultBody{Text: text, Present: ok})
}

// handleDeleteResult dismisses the result. With the camera preference on,
// scanning restarts.
func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	s.deps.Store.ClearResult()
	if s.deps.Store.OpenCamera() {
		if err := s.startSession(r.Context()); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
