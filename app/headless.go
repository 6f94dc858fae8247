package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/soocke/qr-scan-go/debug"
	"github.com/soocke/qr-scan-go/server"
)

// Serve runs the scanner without a window, exposing it over HTTP until ctx
// is done. A persisted openCamera preference starts a session right away.
func Serve(ctx context.Context, core *Core) error {
	if core.Config.HTTPAddr == "" {
		return errors.New("serve: http_addr is empty")
	}
	defer core.Manager.Close()
	srv := server.New(server.Deps{
		Ctrl:    core.Manager,
		Store:   core.Store,
		Sink:    &server.FrameSink{},
		Session: core.SessionOptions(),
	}, core.Config.HTTPAddr, core.Logger)
	if core.Config.Debug {
		debug.StartRuntimeLogger(ctx, 2*time.Second, core.Logger, core.Manager.Stats)
	}
	if core.Store.OpenCamera() {
		if err := srv.StartSession(ctx); err != nil {
			core.Logger.Warn("serve.start_session", "error", err)
		}
	}
	return srv.Run(ctx)
}

// ScanFile decodes the still image at path once.
func ScanFile(ctx context.Context, core *Core, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return core.Manager.ScanStillImage(ctx, f)
}
