package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdigest/app/api"
	"newsdigest/app/cfg"
	"newsdigest/app/config"
	"newsdigest/app/database"
	"newsdigest/app/delivery"
	"newsdigest/app/enrich"
	"newsdigest/app/feed"
	"newsdigest/app/ingest"
	"newsdigest/app/retention"
	"newsdigest/app/scheduler"
	"newsdigest/app/summary"
	"newsdigest/app/transport"
)

const enrichmentQueueSize = 200

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting news digest server", "version", appCfg.Version)

	if err := run(appCfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server shutdown complete")
}

func run(appCfg *cfg.Cfg) error {
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db, appCfg.RetryFailedDeliveries)
	recipientRepo := database.NewRecipientRepository(db)
	subscriptionRepo := database.NewSubscriptionRepository(db)
	deliveryRepo := database.NewDeliveryRepository(db)
	maintenanceRepo := database.NewMaintenanceRepository(db)

	if err := seedFeeds(appCfg.FeedsDir, feedRepo); err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: time.Duration(appCfg.FeedTimeoutSeconds) * time.Second}
	feedClient := feed.NewClient(httpClient, appCfg.UserAgent, time.Duration(appCfg.FeedTimeoutSeconds)*time.Second)
	extractor := feed.NewContentExtractor(httpClient, appCfg.UserAgent, time.Duration(appCfg.ExtractTimeoutSeconds)*time.Second)
	summarizer := summary.NewSummarizer(appCfg.OpenAIKey)

	pool := enrich.NewPool(itemRepo, extractor, summarizer, appCfg.WorkerCount, enrichmentQueueSize)
	pool.Start()
	defer pool.Stop()

	var digestTransport delivery.Transport
	if appCfg.TelegramBotToken != "" {
		digestTransport, err = transport.NewTelegram(appCfg.TelegramBotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize transport: %w", err)
		}
	} else {
		slog.Warn("Telegram token not set, digests will be logged instead of sent")
		digestTransport = transport.NewLogOnly()
	}

	coordinator := ingest.NewCoordinator(feedRepo, itemRepo, feedClient, pool, appCfg.FetchConcurrency)
	engine := delivery.NewEngine(recipientRepo, itemRepo, deliveryRepo, digestTransport,
		time.Duration(appCfg.LookbackHours)*time.Hour, appCfg.DigestPageSize, appCfg.FetchConcurrency)
	sweeper := retention.NewSweeper(maintenanceRepo, database.DefaultRetentionPolicy())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := scheduler.NewOrchestrator(ctx)

	jobs := []struct {
		name string
		spec string
		task scheduler.Task
	}{
		{"ingestion", appCfg.IngestionSchedule, func(ctx context.Context) (any, error) { return coordinator.Run(ctx) }},
		{"delivery", appCfg.DeliverySchedule, func(ctx context.Context) (any, error) { return engine.Run(ctx) }},
		{"retention", appCfg.RetentionSchedule, func(ctx context.Context) (any, error) { return sweeper.Run(ctx) }},
	}
	for _, job := range jobs {
		if err := orchestrator.Schedule(job.name, job.spec, job.task); err != nil {
			return err
		}
	}

	orchestrator.Start()
	defer orchestrator.Stop()

	handler := api.NewHandler(feedRepo, itemRepo, recipientRepo, subscriptionRepo,
		deliveryRepo, maintenanceRepo, orchestrator)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return nil
}

// seedFeeds registers the feeds from the seed directory. Feeds already in
// the store keep their state; registration is first-write-wins on URL.
func seedFeeds(feedsDir string, feedRepo database.FeedRepository) error {
	loader := config.NewLoader(feedsDir)
	seeds, err := loader.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load feed seeds: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registered := 0
	for _, seed := range seeds {
		_, err := feedRepo.CreateFeed(ctx, seed.Name, seed.URL, seed.GetRefreshInterval())
		if err != nil {
			if errors.Is(err, database.ErrDuplicateFeed) {
				continue
			}
			slog.Warn("Failed to register feed", "name", seed.Name, "url", seed.URL, "error", err)
			continue
		}
		registered++
	}

	slog.Info("Feed seeding completed", "seeds", len(seeds), "registered", registered)

	return nil
}
