package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
)

// AI provayderlar
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Saqlash drayverlari
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	TelegramToken     string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	AllowEmptySecrets bool          `mapstructure:"ALLOW_EMPTY_SECRETS"`
	AppEnv            string        `mapstructure:"APP_ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	AIProvider        string        `mapstructure:"AI_PROVIDER"`
	AIModel           string        `mapstructure:"AI_MODEL"`
	AITimeout         time.Duration `mapstructure:"AI_TIMEOUT"`
	OllamaURL         string        `mapstructure:"OLLAMA_URL"`
	OllamaAPIKey      string        `mapstructure:"OLLAMA_API_KEY"`
	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string        `mapstructure:"GEMINI_MODEL"`
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	SQLitePath        string        `mapstructure:"SQLITE_PATH"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	CatalogXLSX       string        `mapstructure:"CATALOG_XLSX"`
	MediaDir          string        `mapstructure:"MEDIA_DIR"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	HTTPAddr          string        `mapstructure:"HTTP_ADDR"`
	WorkerCount       int           `mapstructure:"WORKER_COUNT"`
	RatePerSecond     float64       `mapstructure:"RATE_LIMIT_PER_SECOND"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("ALLOW_EMPTY_SECRETS", false)
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AI_PROVIDER", ProviderOllama)
	v.SetDefault("AI_MODEL", "llama3")
	v.SetDefault("AI_TIMEOUT", constants.DefaultAITimeout)
	v.SetDefault("OLLAMA_URL", "http://localhost:11434/v1")
	v.SetDefault("OLLAMA_API_KEY", "ollama")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", constants.GeminiModelName)
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "data/bot.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CATALOG_XLSX", "")
	v.SetDefault("MEDIA_DIR", "data/reactions")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HTTP_ADDR", "")
	v.SetDefault("WORKER_COUNT", 16)
	v.SetDefault("RATE_LIMIT_PER_SECOND", 3.0)
}

// Load konfiguratsiyani yuklash (.env -> environment -> default)
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver == "sqlite3" {
		c.DBDriver = DriverSQLite
	}
	if c.DBDriver == "postgresql" {
		c.DBDriver = DriverPostgres
	}
	if c.AITimeout <= 0 {
		c.AITimeout = constants.DefaultAITimeout
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 16
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 3
	}
}

func (c *Config) validate() error {
	switch c.AIProvider {
	case ProviderOllama, ProviderGemini:
	default:
		return fmt.Errorf("AI_PROVIDER noto'g'ri: %q (ollama yoki gemini)", c.AIProvider)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER noto'g'ri: %q (sqlite, postgres yoki memory)", c.DBDriver)
	}
	if c.DBDriver == DriverPostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL environment variable bo'sh (DB_DRIVER=postgres)")
	}

	if c.AllowEmptySecrets {
		return nil
	}
	if strings.TrimSpace(c.TelegramToken) == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable bo'sh")
	}
	if c.AIProvider == ProviderGemini && strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable bo'sh")
	}
	return nil
}

// MissingSecrets ALLOW_EMPTY_SECRETS rejimida yetishmayotgan kalitlar ro'yxati
func (c *Config) MissingSecrets() []string {
	var missing []string
	if isEmptyOrDisabled(c.TelegramToken) {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.AIProvider == ProviderGemini && isEmptyOrDisabled(c.GeminiAPIKey) {
		missing = append(missing, "GEMINI_API_KEY")
	}
	return missing
}

func isEmptyOrDisabled(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	return strings.EqualFold(value, "disabled")
}
