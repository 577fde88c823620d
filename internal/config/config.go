// Package config loads service and CLI settings from an optional config
// file, a .env file and SALES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dvloznov/pharmacy-sales/internal/aggregate"
	"github.com/dvloznov/pharmacy-sales/internal/domain"
	"github.com/dvloznov/pharmacy-sales/internal/logger"
	"github.com/dvloznov/pharmacy-sales/internal/normalize"
)

// EnvPrefix is prepended to every environment variable, e.g. SALES_PORT.
const EnvPrefix = "SALES"

// Config holds every tunable setting.
type Config struct {
	Port            string        `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log-level"`
	LogFormat       string        `mapstructure:"log-format"`
	MaxUploadBytes  int64         `mapstructure:"max-upload-bytes"`
	PipelineTimeout time.Duration `mapstructure:"pipeline-timeout"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`

	CacheSize int           `mapstructure:"cache-size"`
	CacheTTL  time.Duration `mapstructure:"cache-ttl"`

	GCSEndpoint        string `mapstructure:"gcs-endpoint"`
	GCSCredentialsFile string `mapstructure:"gcs-credentials-file"`

	LocalCurrency   string `mapstructure:"local-currency"`
	ForeignCurrency string `mapstructure:"foreign-currency"`
	CashMarker      string `mapstructure:"cash-marker"`
	TimestampPolicy string `mapstructure:"timestamp-policy"`
}

var defaults = map[string]any{
	"port":                 "8080",
	"log-level":            "info",
	"log-format":           logger.FormatConsole,
	"max-upload-bytes":     int64(32 << 20),
	"pipeline-timeout":     30 * time.Second,
	"read-timeout":         15 * time.Second,
	"write-timeout":        60 * time.Second,
	"cache-size":           64,
	"cache-ttl":            15 * time.Minute,
	"gcs-endpoint":         "",
	"gcs-credentials-file": "",
	"local-currency":       domain.DefaultLocalCurrency,
	"foreign-currency":     domain.DefaultForeignCurrency,
	"cash-marker":          domain.CashSaleMarker,
	"timestamp-policy":     string(normalize.PolicyFail),
}

// Load reads path (when not empty) and the environment. Environment
// variables take precedence over the file. A .env file in the working
// directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("port cannot be empty"))
	}
	if _, err := logger.NewFromOptions(logger.Options{Level: c.LogLevel, Format: c.LogFormat}); err != nil {
		errs = append(errs, err)
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("invalid max-upload-bytes %d: must be positive", c.MaxUploadBytes))
	}
	if c.PipelineTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid pipeline-timeout %s: must be positive", c.PipelineTimeout))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("invalid cache-size %d: must not be negative", c.CacheSize))
	}
	if c.LocalCurrency == "" || c.ForeignCurrency == "" {
		errs = append(errs, errors.New("local-currency and foreign-currency are required"))
	} else if c.LocalCurrency == c.ForeignCurrency {
		errs = append(errs, fmt.Errorf("local-currency and foreign-currency are both %q", c.LocalCurrency))
	}
	if c.CashMarker == "" {
		errs = append(errs, errors.New("cash-marker cannot be empty"))
	}
	if _, err := normalize.ParsePolicy(c.TimestampPolicy); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Currencies returns the configured currency slots.
func (c *Config) Currencies() domain.Currencies {
	return domain.Currencies{Local: c.LocalCurrency, Foreign: c.ForeignCurrency}
}

// Aggregator returns an aggregator for the configured currencies.
func (c *Config) Aggregator() aggregate.Aggregator {
	return aggregate.Aggregator{Currencies: c.Currencies()}
}

// Normalizer returns a normalizer for the configured marker and policy.
// Call it on a validated Config.
func (c *Config) Normalizer() normalize.Normalizer {
	policy, _ := normalize.ParsePolicy(c.TimestampPolicy)
	return normalize.Normalizer{CashMarker: c.CashMarker, Policy: policy}
}

// LoggerOptions returns the logging settings.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.LogLevel, Format: c.LogFormat}
}
