package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Collection
	SourcesFile    string        `json:"sources_file"`
	FeedTimeout    time.Duration `json:"feed_timeout"`
	FeedMaxItems   int           `json:"feed_max_items"`
	CollectWorkers int           `json:"collect_workers"`
	TagsFile       string        `json:"tags_file"`

	// Translation
	TargetLanguage   string        `json:"target_language"`
	TranslateWorkers int           `json:"translate_workers"`
	DeepLAPIKey      string        `json:"deepl_api_key"`
	DeepLAPIURL      string        `json:"deepl_api_url"`
	DeepLTimeout     time.Duration `json:"deepl_timeout"`
	GlossaryFile     string        `json:"glossary_file"`

	// AI Configuration
	AIApiKey  string        `json:"ai_api_key"`
	AIModel   string        `json:"ai_model"`
	AITimeout time.Duration `json:"ai_timeout"`

	// Scoring
	WeightsFile string `json:"weights_file"`

	// Redis configuration
	RedisURL       string        `json:"redis_url"`
	RedisPrefix    string        `json:"redis_prefix"`
	CacheTTL       time.Duration `json:"cache_ttl"`
	HistoryEnabled bool          `json:"history_enabled"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`

	// Delivery
	WebhookURL       string `json:"webhook_url"`
	WebhookToken     string `json:"webhook_token"`
	DefaultRecipient string `json:"default_recipient"`

	// Storage
	ProcessedPath string `json:"processed_path"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv builds a Config from the current environment without validating it
func FromEnv() *Config {
	return &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Collection
		SourcesFile:    getEnv("SOURCES_FILE", ""),
		FeedTimeout:    getEnvAsDuration("FEED_TIMEOUT", 10*time.Second),
		FeedMaxItems:   getEnvAsInt("FEED_MAX_ITEMS", 20),
		CollectWorkers: getEnvAsInt("COLLECT_WORKERS", 5),
		TagsFile:       getEnv("TAGS_FILE", ""),

		// Translation
		TargetLanguage:   strings.ToLower(getEnv("TARGET_LANGUAGE", "zh")),
		TranslateWorkers: getEnvAsInt("TRANSLATE_WORKERS", 4),
		DeepLAPIKey:      getEnv("DEEPL_API_KEY", ""),
		DeepLAPIURL:      getEnv("DEEPL_API_URL", "https://api-free.deepl.com/v2/translate"),
		DeepLTimeout:     getEnvAsDuration("DEEPL_TIMEOUT", 15*time.Second),
		GlossaryFile:     getEnv("GLOSSARY_FILE", ""),

		// AI Configuration
		AIApiKey:  getEnv("AI_API_KEY", ""),
		AIModel:   getEnv("AI_MODEL", "gemini-1.5-flash"),
		AITimeout: getEnvAsDuration("AI_TIMEOUT", 30*time.Second),

		// Scoring
		WeightsFile: getEnv("WEIGHTS_FILE", ""),

		// Redis configuration
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:    getEnv("REDIS_PREFIX", "digest:"),
		CacheTTL:       getEnvAsDuration("CACHE_TTL", 72*time.Hour),
		HistoryEnabled: getEnvAsBool("HISTORY_ENABLED", false),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "digests"),

		// Delivery
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		WebhookToken:     getEnv("WEBHOOK_TOKEN", ""),
		DefaultRecipient: getEnv("DIGEST_RECIPIENT", ""),

		// Storage
		ProcessedPath: getEnv("PROCESSED_PATH", "./data/digests"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TargetLanguage == "" {
		return fmt.Errorf("TARGET_LANGUAGE must not be empty")
	}
	if c.CollectWorkers <= 0 {
		return fmt.Errorf("COLLECT_WORKERS must be positive, got %d", c.CollectWorkers)
	}
	if c.TranslateWorkers <= 0 {
		return fmt.Errorf("TRANSLATE_WORKERS must be positive, got %d", c.TranslateWorkers)
	}
	if c.FeedMaxItems <= 0 {
		return fmt.Errorf("FEED_MAX_ITEMS must be positive, got %d", c.FeedMaxItems)
	}
	for name, d := range map[string]time.Duration{
		"FEED_TIMEOUT":  c.FeedTimeout,
		"DEEPL_TIMEOUT": c.DeepLTimeout,
		"AI_TIMEOUT":    c.AITimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	return nil
}

// ArchiveEnabled reports whether R2 credentials are present
func (c *Config) ArchiveEnabled() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != ""
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
