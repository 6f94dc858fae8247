package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/soocke/qr-scan-go/app"
	"github.com/soocke/qr-scan-go/config"
	"github.com/soocke/qr-scan-go/domain/session"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "path to the JSON config file")
	serve := flag.Bool("serve", false, "run headless and expose the scanner over HTTP")
	imagePath := flag.String("image", "", "decode a QR code from an image file and exit")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime stats")
	addr := flag.String("addr", "", "HTTP listen address (overrides http_addr)")
	flag.Parse()

	cfg, loadErr := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if loadErr != nil {
		logger.Warn("config.load", "path", *cfgPath, "error", loadErr)
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("config.invalid", "error", err)
		debugOn := cfg.Debug
		cfg = config.DefaultConfig()
		cfg.Debug = debugOn
	}

	os.Exit(run(cfg, *cfgPath, *serve, *imagePath, logger))
}

func run(cfg *config.Config, cfgPath string, serve bool, imagePath string, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case imagePath != "":
		core, err := app.BuildCore(cfg, cfgPath, logger)
		if err != nil {
			logger.Error("init", "error", err)
			return 1
		}
		text, err := app.ScanFile(ctx, core, imagePath)
		if errors.Is(err, session.ErrNoCodeFound) {
			fmt.Fprintln(os.Stderr, "no QR code found")
			return 2
		}
		if err != nil {
			logger.Error("scan.image", "path", imagePath, "error", err)
			return 1
		}
		fmt.Println(text)
		return 0
	case serve:
		core, err := app.BuildCore(cfg, cfgPath, logger)
		if err != nil {
			logger.Error("init", "error", err)
			return 1
		}
		if err := app.Serve(ctx, core); err != nil {
			logger.Error("serve", "error", err)
			return 1
		}
		return 0
	default:
		c, err := app.BuildContainer(cfg, cfgPath, logger)
		if err != nil {
			logger.Error("init", "error", err)
			return 1
		}
		app.NewApp("QR Scanner", c).Start()
		return 0
	}
}
