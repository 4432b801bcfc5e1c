package conf

import (
	"os"
	"strconv"
	"time"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/biz/usecase"
	"github.com/ghostnote/confession-relay/internal/data"
	"github.com/ghostnote/confession-relay/internal/infra/openai"
)

// Defaults
const (
	DefaultRateLimitCooldown   = 30 * time.Second
	DefaultRateLimitMaxEntries = 100000
	DefaultReviewCacheSize     = 10000
	DefaultReviewCacheTTL      = 72 * time.Hour
	DefaultMetricsAddr         = "127.0.0.1:9877"
)

// Config represents application configuration
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// Rate limiter configuration
	RateLimit RateLimitConfig

	// Pending review cache configuration
	Review ReviewConfig

	// Classifier configuration (optional)
	Classifier ClassifierConfig

	// Health and metrics listener, empty disables it
	MetricsAddr string

	// Messages catalog (embedded defaults plus YAML overrides)
	MessagesPath string
	Messages     *Messages

	// Debug mode
	Debug bool
}

// TelegramConfig contains Telegram configuration
type TelegramConfig struct {
	BotToken            string
	ModerationChatID    int64
	TargetChannelID     int64
	PublicChannelHandle string
}

// RateLimitConfig contains per-sender cooldown configuration
type RateLimitConfig struct {
	Cooldown   time.Duration
	MaxEntries int
}

// ReviewConfig contains the pending review cache configuration
type ReviewConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// ClassifierConfig contains the optional spam classifier configuration
type ClassifierConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// LoadFromEnv loads configuration from environment variables.
// Malformed values are reported as *ConfigError; missing required ones are left
// for Validate.
func LoadFromEnv() (*Config, error) {
	moderationChatID, err := envInt64("MODERATION_CHAT_ID")
	if err != nil {
		return nil, err
	}
	targetChannelID, err := envInt64("TARGET_CHANNEL_ID")
	if err != nil {
		return nil, err
	}

	cooldown, err := envDuration("RATE_LIMIT_COOLDOWN", DefaultRateLimitCooldown)
	if err != nil {
		return nil, err
	}
	maxEntries, err := envInt("RATE_LIMIT_MAX_ENTRIES", DefaultRateLimitMaxEntries)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("REVIEW_CACHE_SIZE", DefaultReviewCacheSize)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envDuration("REVIEW_CACHE_TTL", DefaultReviewCacheTTL)
	if err != nil {
		return nil, err
	}

	// Explicitly empty disables the listener
	metricsAddr, ok := os.LookupEnv("METRICS_ADDR")
	if !ok {
		metricsAddr = DefaultMetricsAddr
	}

	channel := os.Getenv("PUBLIC_CHANNEL_HANDLE")
	if channel == "" {
		channel = DefaultChannelHandle
	}

	messagesPath := os.Getenv("MESSAGES_CONFIG_PATH")
	messages, err := LoadMessages(messagesPath, channel)
	if err != nil {
		return nil, err
	}
	messages.SetCooldown(cooldown)

	debug, _ := strconv.ParseBool(os.Getenv("DEBUG"))

	return &Config{
		Telegram: TelegramConfig{
			BotToken:            os.Getenv("BOT_TOKEN"),
			ModerationChatID:    moderationChatID,
			TargetChannelID:     targetChannelID,
			PublicChannelHandle: channel,
		},
		RateLimit: RateLimitConfig{
			Cooldown:   cooldown,
			MaxEntries: maxEntries,
		},
		Review: ReviewConfig{
			CacheSize: cacheSize,
			CacheTTL:  cacheTTL,
		},
		Classifier: ClassifierConfig{
			APIKey:  os.Getenv("CLASSIFIER_API_KEY"),
			Model:   os.Getenv("CLASSIFIER_MODEL"),
			BaseURL: os.Getenv("CLASSIFIER_BASE_URL"),
		},
		MetricsAddr:  metricsAddr,
		MessagesPath: messagesPath,
		Messages:     messages,
		Debug:        debug,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return &ConfigError{Field: "BOT_TOKEN", Message: "required"}
	}
	if c.Telegram.ModerationChatID == 0 {
		return &ConfigError{Field: "MODERATION_CHAT_ID", Message: "required"}
	}
	if c.Telegram.TargetChannelID == 0 {
		return &ConfigError{Field: "TARGET_CHANNEL_ID", Message: "required"}
	}
	if c.RateLimit.Cooldown <= 0 {
		return &ConfigError{Field: "RATE_LIMIT_COOLDOWN", Message: "must be positive"}
	}
	if c.RateLimit.MaxEntries <= 0 {
		return &ConfigError{Field: "RATE_LIMIT_MAX_ENTRIES", Message: "must be positive"}
	}
	if c.Review.CacheSize <= 0 {
		return &ConfigError{Field: "REVIEW_CACHE_SIZE", Message: "must be positive"}
	}
	if c.Review.CacheTTL <= 0 {
		return &ConfigError{Field: "REVIEW_CACHE_TTL", Message: "must be positive"}
	}
	return nil
}

// ClassifierEnabled reports whether the spam classifier is configured
func (c *Config) ClassifierEnabled() bool {
	return c.Classifier.APIKey != ""
}

// ToModerationConfig converts to moderation configuration
func (c *Config) ToModerationConfig() usecase.ModerationConfig {
	return usecase.ModerationConfig{TargetChannelID: c.Telegram.TargetChannelID}
}

// ToEncoderConfig converts to encoder configuration.
// Moderators always see the English header and labels.
func (c *Config) ToEncoderConfig() usecase.EncoderConfig {
	msgs := c.Messages
	if msgs == nil {
		msgs = DefaultMessages(c.Telegram.PublicChannelHandle)
	}
	return usecase.EncoderConfig{
		Header:       msgs.Message(domain.LanguageEN, MsgModNewConfession),
		ApproveLabel: msgs.Message(domain.LanguageEN, MsgModApprove),
		SpoilerLabel: msgs.Message(domain.LanguageEN, MsgModSpoiler),
		RejectLabel:  msgs.Message(domain.LanguageEN, MsgModReject),
	}
}

// ToDataOptions converts to in-memory store sizing
func (c *Config) ToDataOptions() data.Options {
	return data.Options{
		RateLimitCooldown:   c.RateLimit.Cooldown,
		RateLimitMaxEntries: c.RateLimit.MaxEntries,
		ReviewCacheSize:     c.Review.CacheSize,
		ReviewCacheTTL:      c.Review.CacheTTL,
	}
}

// ToClassifierConfig converts to classifier client configuration
func (c *ClassifierConfig) ToClassifierConfig() openai.Config {
	return openai.Config{
		APIKey:  c.APIKey,
		Model:   c.Model,
		BaseURL: c.BaseURL,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envInt64(key string) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return parsed, nil
}

func envInt(key string, def int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return parsed, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	// Bare numbers are seconds
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a duration"}
	}
	return parsed, nil
}
