// # cmd/retrofit/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"retrofit/internal/config"
	"retrofit/internal/shared/observability"
)

var (
	configPath   = flag.String("config", "./retrofit.toml", "Path to config file")
	once         = flag.Bool("once", false, "Run a single plan/apply and exit")
	dryRun       = flag.Bool("dry-run", false, "Plan only; do not modify the project")
	ui           = flag.Bool("ui", false, "Enable terminal UI mode (implies dry-run)")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Print version and exit")
	metricsAddr  = flag.String("metrics-addr", "", "Serve prometheus metrics on this address")
	otlpEndpoint = flag.String("otlp-endpoint", "", "OTLP gRPC endpoint for traces")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("retrofit v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	logOutput := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
			logOutput = f
		} else {
			fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, *otlpEndpoint)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./retrofit.toml" {
			cfg, err = config.Load("./retrofit.example.toml")
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		cfg.ProjectRoot = flag.Arg(0)
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *metricsAddr != "" {
		app.ServeObservability(*metricsAddr)
	}

	if *ui {
		if err := app.StartWatcher(ctx); err != nil {
			slog.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		if err := app.RunUI(ctx); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
		return
	}

	start := time.Now()
	if *dryRun {
		cs, dropped, err := app.Plan(ctx)
		if err != nil {
			slog.Error("planning failed", "error", err)
			os.Exit(1)
		}
		if len(dropped) > 0 {
			slog.Warn("planner dropped requirements", "count", len(dropped))
		}
		if err := app.GenerateOutputs(cs, nil); err != nil {
			slog.Error("failed to generate outputs", "error", err)
		}
		app.PrintSummary(cs, nil, time.Since(start))
	} else {
		report, cs, err := app.Apply(ctx)
		if err != nil {
			slog.Error("apply failed", "error", err)
			os.Exit(1)
		}
		if err := app.GenerateOutputs(cs, &report); err != nil {
			slog.Error("failed to generate outputs", "error", err)
		}
		app.PrintSummary(cs, &report, time.Since(start))

		if len(report.Unimplemented) > 0 {
			os.Exit(2)
		}
	}

	if *once || !*dryRun {
		return
	}

	// Watch mode: keep re-planning as sources change.
	if err := app.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	select {}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "retrofit", "retrofit.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "retrofit", "retrofit.log")
	}

	return "retrofit.log"
}
