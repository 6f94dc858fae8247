package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soocke/qr-scan-go/domain/capture"
	"github.com/soocke/qr-scan-go/domain/session"
	"github.com/soocke/qr-scan-go/ui/model"
)

// DefaultMaxUpload bounds still-image request bodies.
const DefaultMaxUpload = 16 << 20

// Controller is the session surface the HTTP API drives. *session.Manager implements it.
type Controller interface {
	session.Controller
	SessionID() string
	Stats() capture.LoopStats
}

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Ctrl  Controller
	Store *model.ScanStore
	Sink  *FrameSink
	// Session carries the facing and region settings used by POST /session/start.
	// Its callbacks are replaced by the server.
	Session   session.Options
	MaxUpload int64
}

// Server exposes the scanner over HTTP: a thin wrapper over chi and http.Server.
type Server struct {
	deps   Deps
	logger *slog.Logger
	mux    *chi.Mux
	srv    *http.Server

	startMu sync.Mutex // serializes session start/restart
}

// New builds the router. addr may be empty when only Handler is used.
func New(deps Deps, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if deps.Sink == nil {
		deps.Sink = &FrameSink{}
	}
	if deps.Store == nil {
		deps.Store = model.NewScanStore(nil, logger)
	}
	if deps.MaxUpload <= 0 {
		deps.MaxUpload = DefaultMaxUpload
	}
	s := &Server{deps: deps, logger: logger, mux: chi.NewRouter()}
	s.routes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	m := s.mux
	m.Use(middleware.RequestID)
	m.Use(middleware.Recoverer)
	m.Use(s.logRequests)
	m.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	m.Post("/scan", s.handleScan)
	m.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Post("/flashlight", s.handleFlashlight)
	})
	m.Get("/preferences", s.handleGetPreferences)
	m.Put("/preferences", s.handlePutPreferences)
	m.Get("/result", s.handleGetResult)
	m.Delete("/result", s.handleDeleteResult)
}

// Handler returns the root handler (used by tests).
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.listen", "addr", s.srv.Addr)
		err := s.srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
