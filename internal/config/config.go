package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort        string
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseDSN    string
	RabbitMQURL    string // empty disables activity publishing
	RabbitMQQueue  string

	LogLevel string
	LogJSON  bool

	RequestTimeout time.Duration
	AllowedOrigins string
	ExposeErrors   bool // include internal error text in 500 responses

	EventMinLead     time.Duration
	EventLatestStart time.Time

	FeedLimit        int
	MessagePageSize  int
	MessagePageLimit int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=meetmatch port=5432 sslmode=disable")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "activity_queue")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("EXPOSE_ERRORS", false)
	v.SetDefault("EVENT_MIN_LEAD", "1h")
	v.SetDefault("EVENT_LATEST_START", "2100-12-31T23:59:59Z")
	v.SetDefault("FEED_LIMIT", 50)
	v.SetDefault("MESSAGE_PAGE_SIZE", 50)
	v.SetDefault("MESSAGE_PAGE_LIMIT", 100)
}

// Load reads configuration from v (defaults, optional config file and
// environment) and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	latest, err := time.Parse(time.RFC3339, v.GetString("EVENT_LATEST_START"))
	if err != nil {
		return nil, fmt.Errorf("parse EVENT_LATEST_START: %w", err)
	}

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:    v.GetString("RABBITMQ_QUEUE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogJSON:          v.GetBool("LOG_JSON"),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		AllowedOrigins:   v.GetString("ALLOWED_ORIGINS"),
		ExposeErrors:     v.GetBool("EXPOSE_ERRORS"),
		EventMinLead:     v.GetDuration("EVENT_MIN_LEAD"),
		EventLatestStart: latest.UTC(),
		FeedLimit:        v.GetInt("FEED_LIMIT"),
		MessagePageSize:  v.GetInt("MESSAGE_PAGE_SIZE"),
		MessagePageLimit: v.GetInt("MESSAGE_PAGE_LIMIT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT cannot be empty")
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN cannot be empty")
	}
	if c.FeedLimit <= 0 {
		return fmt.Errorf("FEED_LIMIT must be positive")
	}
	if c.MessagePageSize <= 0 || c.MessagePageLimit < c.MessagePageSize {
		return fmt.Errorf("MESSAGE_PAGE_SIZE must be positive and not exceed MESSAGE_PAGE_LIMIT")
	}
	return nil
}
