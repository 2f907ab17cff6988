// cmd/tidemark/main.go
package main

import (
	"context"
	"fmt"
	stlog "log" // Use standard log for FATAL errors before logger is ready
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bethropolis/tidemark/internal/app"
	"github.com/bethropolis/tidemark/internal/config"
	"github.com/bethropolis/tidemark/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// --- Argument & Flag Parsing ---
	flags := &config.Flags{}
	if _, err := flags.ParseFlags(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if *flags.Version {
		fmt.Printf("%s %s\n", config.AppName, version)
		os.Exit(0)
	}

	cfg, warnings, err := config.LoadConfig(*flags.ConfigFilePath, flags)
	if err != nil {
		stlog.Printf("Warning: %v (using defaults)", err)
	}

	// --- Logger Initialization ---
	// The editor owns the terminal, so it never logs to stderr by default.
	interactive := !*flags.Serve && *flags.Export == ""
	if interactive && cfg.Logger.LogFilePath == "" {
		cfg.Logger.LogFilePath = config.DefaultLogPath()
		if err := os.MkdirAll(filepath.Dir(cfg.Logger.LogFilePath), 0o755); err != nil {
			stlog.Fatalf("Failed to create log directory: %v", err)
		}
	}
	logOutput, closeLog, err := logger.OpenOutput(cfg.Logger)
	if err != nil {
		stlog.Fatalf("Failed to open log output: %v", err)
	}
	defer closeLog()
	logger.Init(cfg.Logger, logOutput)

	logger.Infof("Starting %s %s", config.AppName, version)
	for _, w := range warnings {
		logger.Warnf("Config: %s", w)
	}
	logger.Debugf("Storage: %s, slot %s, format %s", cfg.Storage.Backend, cfg.Storage.Slot, cfg.Storage.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *flags.Export != "":
		if err := app.Export(ctx, cfg, *flags.Export, os.Stdout); err != nil {
			logger.Errorf("Export failed: %v", err)
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
	case *flags.Serve:
		logger.Infof("Serving slots on %s", cfg.Server.Addr)
		if err := app.Serve(ctx, cfg); err != nil {
			logger.Errorf("Server exited with error: %v", err)
			os.Exit(1)
		}
	default:
		// --- Create and Run App ---
		tidemarkApp, err := app.NewApp(ctx, cfg)
		if err != nil {
			logger.Errorf("Error initializing application: %v", err)
			fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
			os.Exit(1)
		}
		if err := tidemarkApp.Run(); err != nil {
			logger.Errorf("Application exited with error: %v", err)
			os.Exit(1)
		}
	}

	logger.Infof("%s finished.", config.AppName)
}
