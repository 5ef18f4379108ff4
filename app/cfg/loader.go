package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/newsdigest.db" description:"Path to the SQLite database file"`

	// Application configuration
	FeedsDir         string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed seed files"`
	Port             string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	WorkerCount      int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for content enrichment"`
	FetchConcurrency int    `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" default:"4" description:"Maximum feeds fetched in parallel per ingestion pass"`

	// Job schedules
	IngestionSchedule string `long:"ingestion-schedule" env:"INGESTION_SCHEDULE" default:"0 * * * *" description:"Cron schedule for feed ingestion"`
	DeliverySchedule  string `long:"delivery-schedule" env:"DELIVERY_SCHEDULE" default:"*/30 * * * *" description:"Cron schedule for digest delivery"`
	RetentionSchedule string `long:"retention-schedule" env:"RETENTION_SCHEDULE" default:"0 2 * * *" description:"Cron schedule for the retention sweep"`

	// Delivery configuration
	LookbackHours         int  `long:"lookback-hours" env:"LOOKBACK_HOURS" default:"24" description:"How far back delivery looks for eligible items"`
	DigestPageSize        int  `long:"digest-page-size" env:"DIGEST_PAGE_SIZE" default:"5" description:"Maximum items per digest"`
	RetryFailedDeliveries bool `long:"retry-failed-deliveries" env:"RETRY_FAILED_DELIVERIES" description:"Retry items whose previous delivery attempt failed"`

	// External services
	TelegramBotToken string `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token (required for delivery)"`
	OpenAIKey        string `long:"openai-key" env:"OPENAI_KEY" description:"OpenAI API key (optional, falls back to extractive summaries)"`

	// Timeouts
	FeedTimeoutSeconds    int `long:"feed-timeout" env:"FEED_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	ExtractTimeoutSeconds int `long:"extract-timeout" env:"EXTRACT_TIMEOUT" default:"30" description:"Article page fetch timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsDigest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Tokyo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:                raw.DBPath,
		FeedsDir:              raw.FeedsDir,
		Port:                  raw.Port,
		APIAccessKey:          raw.APIAccessKey,
		WorkerCount:           raw.WorkerCount,
		FetchConcurrency:      raw.FetchConcurrency,
		IngestionSchedule:     raw.IngestionSchedule,
		DeliverySchedule:      raw.DeliverySchedule,
		RetentionSchedule:     raw.RetentionSchedule,
		LookbackHours:         raw.LookbackHours,
		DigestPageSize:        raw.DigestPageSize,
		RetryFailedDeliveries: raw.RetryFailedDeliveries,
		TelegramBotToken:      raw.TelegramBotToken,
		OpenAIKey:             raw.OpenAIKey,
		FeedTimeoutSeconds:    raw.FeedTimeoutSeconds,
		ExtractTimeoutSeconds: raw.ExtractTimeoutSeconds,
		UserAgent:             raw.UserAgent,
		Timezone:              raw.Timezone,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
