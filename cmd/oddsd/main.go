package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Antoine-pa/paris-sportifs/internal/app"
	"github.com/Antoine-pa/paris-sportifs/internal/assembler"
	"github.com/Antoine-pa/paris-sportifs/internal/notify"
	"github.com/Antoine-pa/paris-sportifs/internal/parser/browser"
	pkgconfig "github.com/Antoine-pa/paris-sportifs/internal/pkg/config"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/health"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/health/handlers"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/logging"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/metrics"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/parserutil"

	// Register all built-in sources via init().
	_ "github.com/Antoine-pa/paris-sportifs/internal/parser/parsers/all"
)

const serviceName = "oddsd"

type config struct {
	configPath string
	runFor     time.Duration
	sources    string
	port       int
}

func main() {
	if err := run(); err != nil {
		slog.Error("oddsd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig, err := loadConfig(cfg.configPath)
	if err != nil {
		return err
	}
	if cfg.port > 0 {
		appConfig.Server.Port = cfg.port
	}

	_, logCloser, err := logging.SetupLogger(&appConfig.Logging, serviceName)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()
	slog.Info("Config loaded", "path", cfg.configPath, "ttl", appConfig.Cache.TTL, "refresh_interval", appConfig.RefreshInterval)

	addr, err := health.AddrFor(appConfig.Server.Port)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	m := metrics.New()

	fetcher := browser.New(ctx, appConfig.Browser)
	defer fetcher.Close()

	var notifier *notify.TelegramNotifier
	var onFresh func(assembler.Payload)
	if appConfig.Telegram.Enabled {
		notifier, err = notify.NewTelegramNotifier(appConfig.Telegram.BotToken, appConfig.Telegram.ChatID, appConfig.Telegram.MinConversionRate)
		if err != nil {
			slog.Warn("Telegram notifier disabled", "error", err)
		} else {
			defer notifier.Stop()
			onFresh = notifier.NotifyPayload
		}
	}

	pipeline, err := app.NewPipeline(appConfig, fetcher, m, onFresh, splitList(cfg.sources)...)
	if err != nil {
		return err
	}
	orch := pipeline.Orchestrator
	slog.Info("Using sources", "sources", strings.Join(orch.Sources(), ", "))

	if appConfig.Preload {
		go func() {
			slog.Info("Preloading all sources")
			results := orch.FetchAll(ctx)
			for id, r := range results {
				if r.Payload != nil {
					slog.Info("Preload finished", "source", id, "status", r.Payload.Status, "matches", r.Payload.Counts.Total)
				}
			}
		}()
	}

	if appConfig.RefreshInterval > 0 {
		go parserutil.RunPeriodic(ctx, "refresh", appConfig.RefreshInterval, appConfig.Server.RequestTimeout, func(ctx context.Context) {
			orch.RefreshAll(ctx)
		})
	}

	api := handlers.NewAPI(orch, appConfig.Server.RequestTimeout)
	router := health.NewRouter(api, health.RouterOptions{
		AllowedOrigins: appConfig.Server.AllowedOrigins,
		Metrics:        m.Handler(),
	})

	if err := health.Run(ctx, addr, serviceName, router, appConfig.Server.ReadHeaderTimeout); err != nil {
		return err
	}
	slog.Info("oddsd stopped gracefully")
	return nil
}

func parseFlags() config {
	var cfg config

	flag.StringVar(&cfg.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file (can be set via CONFIG_PATH env var). Empty = built-in defaults")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10s, 1m). 0 = run until SIGINT/SIGTERM")
	flag.StringVar(&cfg.sources, "sources", "", "Comma-separated source ids to serve (e.g. 'pmu,winamax'). Empty = all enabled")
	flag.IntVar(&cfg.port, "port", 0, "Override server.port")
	flag.Parse()
	return cfg
}

func loadConfig(path string) (*pkgconfig.Config, error) {
	if path == "" {
		return pkgconfig.Default(), nil
	}
	c, err := pkgconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
}
