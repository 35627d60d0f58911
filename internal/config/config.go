package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Telegram TelegramConfig
	Catalog  CatalogConfig
}

type AppConfig struct {
	Environment string `env:"APP_ENV" validate:"oneof=development production test"`
	Addr        string `env:"APP_ADDR" validate:"required"`
	LogFilePath string `env:"LOG_FILE_PATH"`
	Workers     int    `env:"WORKERS" validate:"gte=1,lte=256"`
	GenresFile  string `env:"GENRES_FILE"`
}

type TelegramConfig struct {
	Token       string        `env:"TELEGRAM_BOT_TOKEN" validate:"required"`
	APIURL      string        `env:"TELEGRAM_API_URL" validate:"required,url"`
	PollTimeout time.Duration `env:"TELEGRAM_POLL_TIMEOUT" validate:"gte=0,lte=50s"`
	SendRPS     float64       `env:"TELEGRAM_SEND_RPS" validate:"gt=0"`
}

type CatalogConfig struct {
	BaseURL    string        `env:"CATALOG_BASE_URL" validate:"required,url"`
	APIKey     string        `env:"CATALOG_API_KEY"`
	MaxResults int           `env:"CATALOG_MAX_RESULTS" validate:"gte=1,lte=40"`
	Timeout    time.Duration `env:"CATALOG_TIMEOUT" validate:"gt=0"`
	MaxRetries int           `env:"CATALOG_MAX_RETRIES" validate:"gte=0,lte=10"`
	LookupTTL  time.Duration `env:"CATALOG_LOOKUP_TTL" validate:"gt=0"`
}

func (c *Config) IsProduction() bool { return c.App.Environment == "production" }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads .env.local when present, then the process environment. The bot
// token is checked separately by RequireTelegram.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")

	var errs []error
	cfg := &Config{
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Addr:        getEnv("APP_ADDR", ":8080"),
			LogFilePath: getEnv("LOG_FILE_PATH", "bookbot.log"),
			Workers:     getEnvAsInt("WORKERS", 16, &errs),
			GenresFile:  getEnv("GENRES_FILE", ""),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			APIURL:      getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			PollTimeout: getEnvAsSeconds("TELEGRAM_POLL_TIMEOUT", 30*time.Second, &errs),
			SendRPS:     getEnvAsFloat("TELEGRAM_SEND_RPS", 25, &errs),
		},
		Catalog: CatalogConfig{
			BaseURL:    getEnv("CATALOG_BASE_URL", "https://www.googleapis.com/books/v1"),
			APIKey:     getEnv("CATALOG_API_KEY", ""),
			MaxResults: getEnvAsInt("CATALOG_MAX_RESULTS", 10, &errs),
			Timeout:    getEnvAsDuration("CATALOG_TIMEOUT", 15*time.Second, &errs),
			MaxRetries: getEnvAsInt("CATALOG_MAX_RETRIES", 2, &errs),
			LookupTTL:  getEnvAsDuration("CATALOG_LOOKUP_TTL", 10*time.Minute, &errs),
		},
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := validate.StructExcept(cfg, "Telegram.Token"); err != nil {
		return nil, validationError(err)
	}
	return cfg, nil
}

// RequireTelegram fails when the bot token is missing.
func (c *Config) RequireTelegram() error {
	if err := validate.StructPartial(c, "Telegram.Token"); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "gt", "gte", "lt", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func getEnvAsFloat(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func getEnvAsDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

// getEnvAsSeconds accepts a plain number of seconds or a duration string.
func getEnvAsSeconds(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return getEnvAsDuration(key, def, errs)
}
