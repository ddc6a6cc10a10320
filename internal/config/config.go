package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file omits a value.
const (
	// DefaultListenAddr is the fallback HTTP listen address.
	DefaultListenAddr = ":8080"
	// DefaultDatabaseDSN is the fallback SQLite DSN.
	DefaultDatabaseDSN = "file:data/dailyriddle.db"
	// DefaultOpenAIModel is the fallback generation model.
	DefaultOpenAIModel = "gpt-4o"
	// DefaultMaxPerDay is the fallback per-client daily generation ceiling.
	DefaultMaxPerDay = 10
	// DefaultScheduleHour is the local hour the daily riddle is generated at.
	DefaultScheduleHour = 0
	// DefaultPaymentAmountCents is the fallback paid-generation price.
	DefaultPaymentAmountCents = 100
	// DefaultPaymentCurrency is the fallback paid-generation currency.
	DefaultPaymentCurrency = "usd"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen-addr"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// OpenAIConfig holds riddle generation settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api-key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base-url"`
}

// QuotaConfig holds generation quota settings.
type QuotaConfig struct {
	MaxPerDay int `yaml:"max-per-day"`
}

// SchedulerConfig holds the daily generation trigger settings.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`
	Hour    int  `yaml:"hour"`
}

// PaymentConfig holds paid-generation settings.
type PaymentConfig struct {
	SecretKey   string `yaml:"secret-key"`
	AmountCents int64  `yaml:"amount-cents"`
	Currency    string `yaml:"currency"`
}

// JWTConfig holds admin token settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// AdminConfig holds the bootstrap admin credentials.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Quota     QuotaConfig     `yaml:"quota"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Payment   PaymentConfig   `yaml:"payment"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ResolveConfigPath normalizes a config path, falling back to the
// DAILYRIDDLE_CONFIG environment variable and then to config.yaml in the
// working directory.
func ResolveConfigPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv("DAILYRIDDLE_CONFIG"))
	}
	if trimmed == "" {
		trimmed = "config.yaml"
	}
	return filepath.Clean(trimmed)
}

// Load reads the YAML config file, applies defaults, and overlays
// environment-provided secrets. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{
		Scheduler: SchedulerConfig{Enabled: true},
	}

	data, errRead := os.ReadFile(path)
	if errRead != nil && !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}
	if errRead == nil {
		if errDecode := yaml.Unmarshal(data, &cfg); errDecode != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errDecode)
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if errValidate := cfg.validate(); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

// applyEnvOverrides overlays secrets and common overrides from the environment.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")); v != "" {
		cfg.Payment.SecretKey = v
	}
	if v := strings.TrimSpace(os.Getenv("DAILYRIDDLE_JWT_SECRET")); v != "" {
		cfg.JWT.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv("DAILYRIDDLE_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("DAILYRIDDLE_LISTEN_ADDR")); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("DAILYRIDDLE_MAX_PER_DAY")); v != "" {
		if parsed, errParse := strconv.Atoi(v); errParse == nil && parsed > 0 {
			cfg.Quota.MaxPerDay = parsed
		}
	}
}

// applyDefaults fills unset values.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Server.ListenAddr) == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		cfg.Database.DSN = DefaultDatabaseDSN
	}
	if strings.TrimSpace(cfg.OpenAI.Model) == "" {
		cfg.OpenAI.Model = DefaultOpenAIModel
	}
	if cfg.Quota.MaxPerDay <= 0 {
		cfg.Quota.MaxPerDay = DefaultMaxPerDay
	}
	if cfg.Scheduler.Hour < 0 || cfg.Scheduler.Hour > 23 {
		cfg.Scheduler.Hour = DefaultScheduleHour
	}
	if cfg.Payment.AmountCents <= 0 {
		cfg.Payment.AmountCents = DefaultPaymentAmountCents
	}
	if strings.TrimSpace(cfg.Payment.Currency) == "" {
		cfg.Payment.Currency = DefaultPaymentCurrency
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = 50
	}
	if cfg.Logging.MaxBackups <= 0 {
		cfg.Logging.MaxBackups = 5
	}
}

// validate rejects configurations the server cannot run with.
func (c Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database dsn is required")
	}
	return nil
}
