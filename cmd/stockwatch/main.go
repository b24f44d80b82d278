package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"StockWatch/internal/collector"
	"StockWatch/internal/config"
	"StockWatch/internal/favorites"
	"StockWatch/internal/llm"
	"StockWatch/internal/logging"
	"StockWatch/internal/notifier"
	"StockWatch/internal/scheduler"
	"StockWatch/internal/server"
	"StockWatch/internal/strategy"
	"StockWatch/internal/trace"
)

var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logging.New("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("version", version).Msg("StockWatch starting")

	if err := trace.Init(cfg.Tracing.Enabled, version); err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.Market.Source == "mock" {
		fetcher = &collector.MockFetcher{Price: 10, StockName: "模拟股票"}
	} else {
		fetcher = collector.NewHTTPFetcher(cfg.Market.QuoteBaseURL, cfg.Market.KlineBaseURL, cfg.Proxy, cfg.MarketTimeout())
	}
	log.Info().Str("source", fetcher.Name()).Msg("market data source")
	col := collector.NewCollector(fetcher, log.With().Str("component", "collector").Logger())

	store, err := openFavorites(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init favorites store")
	}
	defer store.Close()

	// Init analyzer; without an API key only local rules run.
	var external strategy.AnalysisProvider
	if cfg.Analysis.APIKey != "" {
		client := llm.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.APIKey, cfg.Analysis.Model, cfg.Proxy, cfg.AnalysisTimeout())
		external = strategy.NewExternalProvider(client, cfg.Analysis.Source, cfg.AnalysisTimeout())
		log.Info().Str("model", client.Model).Msg("external analysis enabled")
	}
	analyzer := strategy.NewAnalyzer(external, log.With().Str("component", "analyzer").Logger())

	// Optional Telegram digest
	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy,
			log.With().Str("component", "telegram").Logger())
		sched := scheduler.NewScheduler(ctx, col, analyzer, store, tn, cfg.Market.HistoryDays,
			log.With().Str("component", "scheduler").Logger())
		if err := sched.RegisterDigest(cfg.Schedule.DigestCron); err != nil {
			log.Fatal().Err(err).Msg("register cron tasks")
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info().Msg("RUN_ON_START enabled, sending digest now")
			go sched.RunDigestNow()
		}
	}

	srv := server.New(col, analyzer, store, cfg.Server.StaticDir, log.With().Str("component", "http").Logger())
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("trace shutdown")
	}
	log.Info().Msg("StockWatch stopped")
}

// openFavorites picks the SQLite backend when a database path is configured.
func openFavorites(cfg *config.Config, log zerolog.Logger) (favorites.Store, error) {
	defaults := cfg.Favorites.Defaults
	if len(defaults) == 0 {
		defaults = favorites.DefaultEntries
	}
	if cfg.Favorites.SQLitePath != "" {
		log.Info().Str("path", cfg.Favorites.SQLitePath).Msg("favorites: sqlite")
		return favorites.NewSQLiteStore(cfg.Favorites.SQLitePath, defaults, log.With().Str("component", "favorites").Logger())
	}
	log.Info().Str("path", cfg.Favorites.File).Msg("favorites: json file")
	return favorites.NewFileStore(cfg.Favorites.File, defaults), nil
}
