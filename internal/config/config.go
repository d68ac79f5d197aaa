package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	// HTTP server configuration
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Logging configuration
	LogLevel  string // debug, info, warn or error
	LogFormat string // json or console

	SeedSampleBooks bool

	// Telegram notifications (optional)
	TelegramToken        string
	TelegramNotifyChatID int64
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Host: os.Getenv("HOST"),
	}

	var err error

	// HTTP port (default: 9000)
	config.Port, err = intEnv("PORT", 9000)
	if err != nil {
		return nil, err
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d out of range", config.Port)
	}

	if config.ReadTimeout, err = durationEnv("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.WriteTimeout, err = durationEnv("HTTP_WRITE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	// CORS origins (default: any)
	config.CORSOrigins = []string{"*"}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.CORSOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.CORSOrigins = append(config.CORSOrigins, origin)
			}
		}
	}

	config.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	switch config.LogLevel {
	case "":
		config.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL: %s", config.LogLevel)
	}

	config.LogFormat = strings.ToLower(os.Getenv("LOG_FORMAT"))
	switch config.LogFormat {
	case "":
		config.LogFormat = "json"
	case "json", "console":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT: %s", config.LogFormat)
	}

	config.SeedSampleBooks = os.Getenv("SEED_SAMPLE_BOOKS") == "true"

	// Telegram notifications are enabled by the token
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken != "" {
		chatIDStr := os.Getenv("TELEGRAM_NOTIFY_CHAT_ID")
		if chatIDStr == "" {
			return nil, fmt.Errorf("TELEGRAM_NOTIFY_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
		}
		chatID, err := strconv.ParseInt(strings.TrimSpace(chatIDStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_NOTIFY_CHAT_ID: %w", err)
		}
		config.TelegramNotifyChatID = chatID
	}

	return config, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
