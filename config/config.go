package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
	Debug   bool   `yaml:"debug"`

	// BehindProxy trusts X-Forwarded-For when rate limiting callbacks.
	BehindProxy bool `yaml:"behind_proxy"`

	Provider  ProviderConfig  `yaml:"provider"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Retry     RetryConfig     `yaml:"retry"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Cache     CacheConfig     `yaml:"cache"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Topics    TopicsConfig    `yaml:"topics"`
}

type ProviderConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	LanguageCode  string `yaml:"language_code"`
	SpeakerLabels bool   `yaml:"speaker_labels"`
}

type WebhookConfig struct {
	BaseURL    string `yaml:"base_url"`
	Path       string `yaml:"path"`
	AuthHeader string `yaml:"auth_header"`
	// Secret is sent to the provider and echoed back on each callback.
	Secret string `yaml:"secret"`
	// SecretHash is the bcrypt hash callbacks are checked against.
	SecretHash string `yaml:"secret_hash"`
	// RatePerSecond and Burst bound callbacks per client IP.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
}

type ReconcileConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StuckAfter time.Duration `yaml:"stuck_after"`
	// PollsPerSecond paces provider status queries within one sweep.
	PollsPerSecond float64 `yaml:"polls_per_second"`
}

type CleanupConfig struct {
	Interval time.Duration `yaml:"interval"`
	// MaxAge enables age based purging of finished jobs. Zero keeps
	// everything.
	MaxAge time.Duration `yaml:"max_age"`
}

type CacheConfig struct {
	ReadTTL    time.Duration `yaml:"read_ttl"`
	MarkerTTL  time.Duration `yaml:"marker_ttl"`
	PayloadTTL time.Duration `yaml:"payload_ttl"`
	Size       int           `yaml:"size"`
}

type DispatchConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

type TopicsConfig struct {
	Notifications string `yaml:"notifications"`
}

// WebhookURL is the absolute callback URL handed to the provider.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.Webhook.BaseURL, "/") + c.Webhook.Path
}

// Defaults returns a Config holding every default value.
func Defaults() *Config {
	return &Config{
		Port:    7890,
		DataDir: "/data",
		Provider: ProviderConfig{
			BaseURL:       "https://api.assemblyai.com",
			LanguageCode:  "en",
			SpeakerLabels: true,
		},
		Webhook: WebhookConfig{
			Path:          "/webhooks/transcription",
			AuthHeader:    "X-Scribe-Webhook-Token",
			RatePerSecond: 20,
			Burst:         40,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  2 * time.Second,
		},
		Reconcile: ReconcileConfig{
			Interval:       5 * time.Minute,
			StuckAfter:     30 * time.Minute,
			PollsPerSecond: 5,
		},
		Cleanup: CleanupConfig{
			Interval: 24 * time.Hour,
		},
		Cache: CacheConfig{
			ReadTTL:    30 * time.Minute,
			MarkerTTL:  6 * time.Hour,
			PayloadTTL: 24 * time.Hour,
			Size:       10000,
		},
		Dispatch: DispatchConfig{
			Workers:   4,
			QueueSize: 256,
		},
		Topics: TopicsConfig{
			Notifications: "transcription-notifications",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// SCRIBE_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("SCRIBE_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var err error

	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return err
	}
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	if cfg.Debug, err = envBool("SCRIBE_DEBUG", cfg.Debug); err != nil {
		return err
	}
	if cfg.BehindProxy, err = envBool("BEHIND_PROXY", cfg.BehindProxy); err != nil {
		return err
	}

	cfg.Provider.BaseURL = getEnv("SCRIBE_PROVIDER_BASE_URL", cfg.Provider.BaseURL)
	cfg.Provider.APIKey = getEnv("SCRIBE_PROVIDER_API_KEY", cfg.Provider.APIKey)
	cfg.Provider.LanguageCode = getEnv("SCRIBE_PROVIDER_LANGUAGE", cfg.Provider.LanguageCode)
	if cfg.Provider.SpeakerLabels, err = envBool("SCRIBE_PROVIDER_SPEAKER_LABELS", cfg.Provider.SpeakerLabels); err != nil {
		return err
	}

	cfg.Webhook.BaseURL = getEnv("SCRIBE_WEBHOOK_BASE_URL", cfg.Webhook.BaseURL)
	cfg.Webhook.Path = getEnv("SCRIBE_WEBHOOK_PATH", cfg.Webhook.Path)
	cfg.Webhook.AuthHeader = getEnv("SCRIBE_WEBHOOK_AUTH_HEADER", cfg.Webhook.AuthHeader)
	cfg.Webhook.Secret = getEnv("SCRIBE_WEBHOOK_SECRET", cfg.Webhook.Secret)
	cfg.Webhook.SecretHash = getEnv("SCRIBE_WEBHOOK_SECRET_HASH", cfg.Webhook.SecretHash)

	if cfg.Retry.MaxRetries, err = envInt("SCRIBE_RETRY_MAX", cfg.Retry.MaxRetries); err != nil {
		return err
	}
	if cfg.Retry.BaseDelay, err = envDuration("SCRIBE_RETRY_BASE_DELAY", cfg.Retry.BaseDelay); err != nil {
		return err
	}
	if cfg.Reconcile.Interval, err = envDuration("SCRIBE_RECONCILE_INTERVAL", cfg.Reconcile.Interval); err != nil {
		return err
	}
	if cfg.Reconcile.StuckAfter, err = envDuration("SCRIBE_RECONCILE_STUCK_AFTER", cfg.Reconcile.StuckAfter); err != nil {
		return err
	}
	if cfg.Cleanup.Interval, err = envDuration("SCRIBE_CLEANUP_INTERVAL", cfg.Cleanup.Interval); err != nil {
		return err
	}
	if cfg.Cleanup.MaxAge, err = envDuration("SCRIBE_CLEANUP_MAX_AGE", cfg.Cleanup.MaxAge); err != nil {
		return err
	}
	if cfg.Dispatch.Workers, err = envInt("SCRIBE_WORKERS", cfg.Dispatch.Workers); err != nil {
		return err
	}

	cfg.Topics.Notifications = getEnv("SCRIBE_NOTIFICATION_TOPIC", cfg.Topics.Notifications)
	return nil
}

// Validate reports the first required or malformed setting.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("SCRIBE_PROVIDER_API_KEY is required")
	}
	if c.Webhook.BaseURL == "" {
		return fmt.Errorf("SCRIBE_WEBHOOK_BASE_URL is required")
	}
	u, err := url.Parse(c.Webhook.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid SCRIBE_WEBHOOK_BASE_URL %q", c.Webhook.BaseURL)
	}
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		return fmt.Errorf("webhook path must start with /: %q", c.Webhook.Path)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry max_retries must not be negative")
	}
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry base_delay must be positive")
	}
	if c.Reconcile.Interval <= 0 || c.Reconcile.StuckAfter <= 0 {
		return fmt.Errorf("reconcile interval and stuck_after must be positive")
	}
	if c.Cleanup.Interval <= 0 {
		return fmt.Errorf("cleanup interval must be positive")
	}
	if c.Cleanup.MaxAge < 0 {
		return fmt.Errorf("cleanup max_age must not be negative")
	}
	if c.Dispatch.Workers <= 0 || c.Dispatch.QueueSize <= 0 {
		return fmt.Errorf("dispatch workers and queue_size must be positive")
	}
	if c.Cache.ReadTTL <= 0 || c.Cache.MarkerTTL <= 0 || c.Cache.PayloadTTL <= 0 {
		return fmt.Errorf("cache ttls must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
