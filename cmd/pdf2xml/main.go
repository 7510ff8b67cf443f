package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/karan4533/pdf-to-xml-converter/internal/config"
	"github.com/karan4533/pdf-to-xml-converter/internal/extract"
	"github.com/karan4533/pdf-to-xml-converter/internal/extract/ocr"
	"github.com/karan4533/pdf-to-xml-converter/internal/extract/tables"
	"github.com/karan4533/pdf-to-xml-converter/internal/server"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := setupLogging(cfg)

	if cfg.IsDebug() {
		logger.Debug("starting", "config", cfg.String())
	}

	// Probe optional capabilities once; everything downstream receives the
	// result instead of re-checking.
	caps, engine := probeCapabilities(cfg, logger)
	logger.Info("capabilities",
		"ocr", caps.OCR,
		"primary_tables", caps.PrimaryTables)

	var primary tables.PrimaryDetector
	if caps.PrimaryTables {
		primary = tables.NewLayoutDetector()
	}
	selector := tables.NewSelector(primary, tables.NewRowTextDetector(), logger)
	coordinator := extract.NewCoordinator(selector, engine, logger)

	srv := server.New(cfg, server.NewConverter(coordinator), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runServer(ctx, cancel, srv, logger)
}

// setupLogging builds the process-wide structured logger.
func setupLogging(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// probeCapabilities checks the optional adapters at startup. A missing
// Tesseract installation is not fatal: images then carry the "not
// available" sentinel text.
func probeCapabilities(cfg *config.Config, logger *slog.Logger) (extract.Capabilities, ocr.Engine) {
	caps := extract.Capabilities{PrimaryTables: cfg.PrimaryTables}

	engine, err := ocr.NewTesseract(ocr.Config{
		Languages:      cfg.OCRLanguages,
		TessdataPrefix: cfg.TessdataPrefix,
	})
	if err != nil {
		logger.Warn("tesseract not available, image text extraction disabled", "error", err)
		return caps, nil
	}

	caps.OCR = true
	return caps, engine
}

// runServer runs the HTTP server until a shutdown signal arrives.
func runServer(ctx context.Context, cancel context.CancelFunc, srv *server.Server, logger *slog.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
		if err := <-serverErrCh; err != nil {
			logger.Error("server shutdown with error", "error", err)
			os.Exit(1)
		}
	case err := <-serverErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF to XML Converter\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
