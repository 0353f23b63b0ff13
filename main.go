package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/partsfinder/config"
	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/internal"
	"sjsage522/partsfinder/internal/crawler"
	"sjsage522/partsfinder/internal/dedup"
	"sjsage522/partsfinder/internal/marketplace"
	"sjsage522/partsfinder/internal/web"
	"sjsage522/partsfinder/logger"
	"sjsage522/partsfinder/services/cache"
	"sjsage522/partsfinder/services/notifier"
	"sjsage522/partsfinder/services/store"
	"sjsage522/partsfinder/services/worker"
)

func main() {
	mode := flag.String("mode", "search", "search (one cycle), daemon (scheduled cycles) or web (dashboard)")
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("mode", *mode).
		Dur("search_interval", cfg.SearchInterval).
		Msg("Starting application")

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer deps.Close()

	switch *mode {
	case "search":
		result, err := newWorker(cfg, deps).RunOnce(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Search failed")
			deps.Close()
			os.Exit(1)
		}
		log.Info().
			Str("run_id", result.RunID).
			Int("found", result.Found).
			Int("new", result.New).
			Int("saved", result.Saved).
			Msg("Search cycle complete")

	case "daemon":
		log.Info().Msg("Starting parts finder daemon")
		newWorker(cfg, deps).Start(ctx)

	case "web":
		server := web.NewServer(cfg.WebAddr, deps.Store)
		serverDone := make(chan error, 1)
		go func() {
			serverDone <- server.Start()
		}()

		select {
		case <-ctx.Done():
			log.Info().Msg("Received shutdown signal")
		case err := <-serverDone:
			if err != nil {
				log.Error().Err(err).Msg("Web server exited with error")
			}
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Web server shutdown failed")
		}

	default:
		log.Error().Str("mode", *mode).Msg("Unknown mode")
		flag.Usage()
		deps.Close()
		os.Exit(2)
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{}

	// Section cache: memcache when configured, otherwise in-process
	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcacheService.Ping(); err != nil {
			logger.Warn("Memcache at %s unreachable (%v), using in-process cache", cfg.MemcacheAddr, err)
			deps.Cache = cache.NewMemoryCache()
		} else {
			deps.Cache = memcacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	} else {
		deps.Cache = cache.NewMemoryCache()
	}

	// Listing store
	sqlStore, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.Init(ctx); err != nil {
		sqlStore.Close()
		return nil, err
	}
	deps.Store = sqlStore
	logger.Info("Opened %s store", cfg.DBDriver)

	// Notification sinks
	if cfg.StdoutEnabled {
		deps.Notifiers = append(deps.Notifiers, notifier.NewStdoutNotifier(os.Stdout))
	}
	if cfg.SMSEnabled {
		deps.Notifiers = append(deps.Notifiers, notifier.NewSMSNotifier(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone, cfg.AlertPhone,
			helpers.NewClient(cfg.HTTPTimeout),
		))
	}
	if cfg.RedisEnabled {
		redisNotifier := notifier.NewRedisNotifier(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		if err := redisNotifier.Ping(ctx); err != nil {
			logger.Warn("Redis at %s unreachable: %v", cfg.RedisAddr, err)
		}
		deps.Notifiers = append(deps.Notifiers, redisNotifier)
		logger.Info("Publishing to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return deps, nil
}

// newWorker assembles the sources and sinks into a worker
func newWorker(cfg *config.Config, deps *internal.Dependencies) *worker.Worker {
	searchers := []worker.Searcher{
		marketplace.NewEbayClient(cfg.EbayClientID, cfg.EbayClientSecret, cfg.EbayEnvironment,
			helpers.NewClient(cfg.HTTPTimeout), cfg.UserAgent),
		crawler.CreateForumSearcher(cfg),
		marketplace.NewFacebook(),
	}

	return worker.NewWorker(
		crawler.CreateSectionScraper(cfg, deps.Cache),
		searchers,
		dedup.NewSeenSet(),
		deps.Store,
		deps.Notifiers,
		worker.Options{
			Sections:    cfg.Sections,
			Pages:       cfg.ForumPages,
			Keywords:    cfg.Keywords,
			Interval:    cfg.SearchInterval,
			SourceDelay: cfg.SourceDelay,
		},
	)
}
