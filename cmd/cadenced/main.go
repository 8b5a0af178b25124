package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zoobzio/capitan"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/cadence"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("cadenced v%s\n", version)
	fmt.Println("Press/release cadence classifier daemon")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  cadenced [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon exposing a press/release classifier over a WebSocket edge feed.")
	fmt.Println("  Clients send key edges as JSON; each connection controls its own")
	fmt.Println("  simulated bounded quantity through a paired increase/decrease channel")
	fmt.Println("  set. Settings persist to a YAML file and reload on external edits.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        YAML config file (flags override file values)")
	fmt.Println()
	fmt.Println("  -listen string")
	fmt.Println("        HTTP listen address (default \"127.0.0.1:8787\")")
	fmt.Println()
	fmt.Println("  -settings string")
	fmt.Println("        Settings file path (default \"~/.config/cadence/settings.yaml\")")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("PROTOCOL (ws://ADDR/ws, JSON text frames):")
	fmt.Println("  in:  {\"type\":\"keydown\"|\"keyup\",\"code\":N,\"mods\":[\"ctrl\",...],\"repeat\":bool}")
	fmt.Println("  in:  {\"type\":\"focuslost\"}")
	fmt.Println("  in:  {\"type\":\"action\",\"name\":\"increase\"|\"decrease\"}")
	fmt.Println("  out: {\"type\":\"trigger\",\"action\":...,\"value\":N,\"count\":N}")
	fmt.Println("  out: {\"type\":\"mode\",\"action\":...,\"mode\":\"idle\"|\"tap\"|\"hold\"}")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath   = flag.String("config", "", "YAML config file (flags override file values)")
		listenFlag   = flag.String("listen", DefaultConfig().Listen, "HTTP listen address")
		settingsFlag = flag.String("settings", DefaultConfig().Settings.Path, "Settings file path")
		logLevelFlag = flag.String("log-level", "info", "Log level: error, warn, info, debug")
	)
	flag.Usage = printUsage
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var overrides FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			overrides.Listen = listenFlag
		case "settings":
			overrides.SettingsPath = settingsFlag
		case "log-level":
			overrides.LogLevel = logLevelFlag
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := setupLogger(logLevel)
	hookSignals(logger)

	settingsPath := ExpandPath(cfg.Settings.Path)
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		logger.Error("failed to create settings directory", "path", settingsPath, "error", err)
		os.Exit(1)
	}

	storage := cadence.NewFileStorage(settingsPath)
	var storeOpts []cadence.StoreOption
	if cfg.Settings.Group != "" {
		storeOpts = append(storeOpts, cadence.WithGroup(cfg.Settings.Group))
	}
	store := cadence.NewStore(storage, storeOpts...)

	registry := cadence.NewRegistry(store)

	server, err := NewServer(logger, registry, cfg)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	server.Register(mux)
	srv := &http.Server{Addr: cfg.Listen, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// External settings edits reach live channels through Reload. The watch
	// channel is coalesced, so one Reload per notification is enough.
	g.Go(func() error {
		changes, err := storage.Watch(ctx)
		if err != nil {
			return fmt.Errorf("watch settings: %w", err)
		}
		for range changes {
			store.Reload()
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Listen, "settings", settingsPath,
			"increase", cfg.Bindings.Increase, "decrease", cfg.Bindings.Decrease)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		server.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("daemon error", "error", err)
		registry.Close()
		capitan.Shutdown()
		os.Exit(1)
	}

	registry.Close()
	capitan.Shutdown()
}
