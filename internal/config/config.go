// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Harvest HarvestConfig `yaml:"harvest" mapstructure:"harvest"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Assets  AssetsConfig  `yaml:"assets" mapstructure:"assets"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// HarvestConfig configures the record loop.
type HarvestConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	OutputDir         string  `yaml:"output_dir" mapstructure:"output_dir"`
	DelaySecs         int     `yaml:"delay_secs" mapstructure:"delay_secs"`
	MaxLots           int     `yaml:"max_lots" mapstructure:"max_lots"`
	FillRateThreshold float64 `yaml:"fill_rate_threshold" mapstructure:"fill_rate_threshold"`
	DefaultDate       string  `yaml:"default_date" mapstructure:"default_date"`
}

// FetchConfig configures the HTTP fetch client.
type FetchConfig struct {
	UserAgent       string  `yaml:"user_agent" mapstructure:"user_agent"`
	PageTimeoutSecs int     `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
	MaxAttempts     int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RatePerSec      float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// AssetsConfig configures image retrieval.
type AssetsConfig struct {
	Workers     int    `yaml:"workers" mapstructure:"workers"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
}

// StoreConfig configures the run ledger database.
type StoreConfig struct {
	LedgerPath string `yaml:"ledger_path" mapstructure:"ledger_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("harvest.base_url", "https://auctions.tennants.co.uk")
	v.SetDefault("harvest.output_dir", ".")
	v.SetDefault("harvest.delay_secs", 2)
	v.SetDefault("harvest.max_lots", 0)
	v.SetDefault("harvest.fill_rate_threshold", 95.0)
	v.SetDefault("harvest.default_date", "2025")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("fetch.page_timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.rate_per_sec", 5)
	v.SetDefault("assets.workers", 6)
	v.SetDefault("assets.timeout_secs", 10)
	v.SetDefault("assets.base_url", "https://tennants.blob.core.windows.net")
	v.SetDefault("store.ledger_path", "harvest.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
