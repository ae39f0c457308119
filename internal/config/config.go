package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config собирает настройки бота из переменных окружения.
type Config struct {
	TelegramToken  string
	SupabaseURL    string
	SupabaseKey    string
	ExchangeAPIKey string
	ExchangeAPIURL string
	MessagesPath   string
	LogLevel       string
	SessionTTL     time.Duration
}

const defaultExchangeAPIURL = "https://v6.exchangerate-api.com/v6"

// LoadConfig читает .env (если он есть) и окружение.
func LoadConfig() (*Config, error) {
	// .env опционален: в облаке значения приходят из окружения функции
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		ExchangeAPIKey: os.Getenv("EXCHANGE_API_KEY"),
		ExchangeAPIURL: os.Getenv("EXCHANGE_API_URL"),
		MessagesPath:   os.Getenv("MESSAGES_PATH"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.ExchangeAPIURL == "" {
		cfg.ExchangeAPIURL = defaultExchangeAPIURL
	}
	if cfg.MessagesPath == "" {
		cfg.MessagesPath = "messages.json"
	}

	ttl, err := parseSessionTTL(os.Getenv("SESSION_TTL_MINUTES"))
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = ttl

	return cfg, nil
}

// parseSessionTTL разбирает таймаут неактивного диалога. Ноль (или пустое
// значение) отключает автоочистку сессий.
func parseSessionTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("invalid SESSION_TTL_MINUTES value %q", raw)
	}
	return time.Duration(minutes) * time.Minute, nil
}
