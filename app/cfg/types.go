package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	FeedsDir         string
	Port             string
	APIAccessKey     string
	WorkerCount      int
	FetchConcurrency int

	// Job schedules (cron expressions)
	IngestionSchedule string
	DeliverySchedule  string
	RetentionSchedule string

	// Delivery configuration
	LookbackHours         int
	DigestPageSize        int
	RetryFailedDeliveries bool

	// External services
	TelegramBotToken string
	OpenAIKey        string

	// Timeouts
	FeedTimeoutSeconds    int
	ExtractTimeoutSeconds int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
