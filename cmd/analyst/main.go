package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"MarketAnalyst/internal/analyst"
	"MarketAnalyst/internal/catalog"
	"MarketAnalyst/internal/collector"
	"MarketAnalyst/internal/config"
	"MarketAnalyst/internal/forecast"
	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/scheduler"
	"MarketAnalyst/internal/server"
	"MarketAnalyst/pkg/logger"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err, "load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("MarketAnalyst starting")

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderBarAPI:
		fetcher = collector.NewBarAPIFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		fetcher = &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")

	// Resolve symbols
	cat := catalog.Default()
	sel := cfg.Selection(cat)
	for _, name := range sel.Unknown {
		log.Warn().Str("name", name).Msg("not in catalog, skipped")
	}
	if len(sel.Symbols) == 0 {
		log.Fatal().Msg("no symbols selected")
	}

	col := collector.NewCollector(fetcher, cfg.DataSource.Concurrency, log)
	fc := forecast.New(cfg.ForecastConfig(), log)
	an := analyst.New(col, fc, cat, log)

	tmpl := analyst.Request{
		Symbols:      sel.Symbols,
		Period:       model.Period(cfg.Analysis.Period),
		Interval:     model.Interval(cfg.Analysis.Interval),
		Indicators:   cfg.Analysis.Indicators,
		Method:       model.ForecastMethod(cfg.Forecast.Method),
		Horizon:      cfg.Forecast.Horizon,
		Fundamentals: cfg.Analysis.Fundamentals,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, an, tmpl, cfg.Report.Path, log)

	// One-shot mode: write a single report and exit
	if os.Getenv("RUN_ONCE") == "true" {
		runOnce(sched, log)
		return
	}

	if err := sched.Register(cfg.Schedule.ReportCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	// Optional HTTP API
	if cfg.Server.Port > 0 {
		srv := server.New(server.Config{
			Port:       cfg.Server.Port,
			MaxSymbols: cfg.Analysis.MaxSymbols,
			Log:        log,
			Analyst:    an,
			Catalog:    cat,
		})
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("HTTP server failed")
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("HTTP server shutdown")
			}
		}()
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("run on start enabled, executing report now")
		go runOnce(sched, log)
	}

	log.Info().Strs("symbols", sel.Symbols).Msg("MarketAnalyst is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
}

func runOnce(sched *scheduler.Scheduler, log zerolog.Logger) {
	dest, err := sched.RunNow()
	if err != nil {
		log.Error().Err(err).Msg("report failed")
		return
	}
	log.Info().Str("dest", dest).Msg("report written")
}

func fatal(err error, msg string) {
	l := logger.New(logger.Config{})
	l.Fatal().Err(err).Msg(msg)
}
