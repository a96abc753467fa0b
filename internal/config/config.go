package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"port"`
	StaticDir   string `mapstructure:"static_dir"`
	LogLevel    string `mapstructure:"log_level"`
	FrontendURL string `mapstructure:"frontend_url"`

	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	RedisURL    string `mapstructure:"redis_url"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	OpenAIKey          string `mapstructure:"openai_api_key"`
	ChatModel          string `mapstructure:"chat_model"`
	TTSModel           string `mapstructure:"tts_model"`
	TTSVoice           string `mapstructure:"tts_voice"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	ContextWindow      int    `mapstructure:"context_window"`

	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	StripePriceID       string `mapstructure:"stripe_price_id"`
}

var defaults = map[string]any{
	"port":                  "8080",
	"static_dir":            "static",
	"log_level":             "info",
	"frontend_url":          "http://localhost:8080",
	"database_url":          "",
	"sqlite_path":           "sql_app.db",
	"redis_url":             "",
	"jwt_secret":            "",
	"token_ttl":             24 * time.Hour,
	"openai_api_key":        "",
	"chat_model":            "gpt-4o",
	"tts_model":             "tts-1",
	"tts_voice":             "onyx",
	"transcription_model":   "whisper-1",
	"context_window":        20,
	"stripe_secret_key":     "",
	"stripe_webhook_secret": "",
	"stripe_price_id":       "",
}

// LoadEnvFiles подгружает .env.local или .env, если они есть
func LoadEnvFiles() error {
	if err := godotenv.Load(".env.local"); err != nil {
		return godotenv.Load()
	}
	return nil
}

// Load собирает конфигурацию из переменных окружения и, если есть,
// config/config.yaml. Переменные окружения имеют приоритет.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.ContextWindow <= 0 {
		return errors.New("CONTEXT_WINDOW must be positive")
	}
	return nil
}
