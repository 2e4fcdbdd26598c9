// Package config handles configuration loading for finharvest.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Dart    DartConfig    `mapstructure:"dart"    yaml:"dart"`
	Naver   NaverConfig   `mapstructure:"naver"   yaml:"naver"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// DartConfig holds the statement-collection settings.
type DartConfig struct {
	APIKey            string `mapstructure:"api_key"             yaml:"api_key"`
	StartYear         int    `mapstructure:"start_year"          yaml:"start_year"` // 0 means end_year - 10
	EndYear           int    `mapstructure:"end_year"            yaml:"end_year"`   // 0 means current year
	BatchSize         int    `mapstructure:"batch_size"          yaml:"batch_size"`
	StartIndex        int    `mapstructure:"start_index"         yaml:"start_index"`
	EndIndex          int    `mapstructure:"end_index"           yaml:"end_index"`
	RequestDelayMs    int    `mapstructure:"request_delay_ms"    yaml:"request_delay_ms"`
	DelistCutoffYears int    `mapstructure:"delist_cutoff_years" yaml:"delist_cutoff_years"`
}

// NaverConfig holds the search API credentials.
type NaverConfig struct {
	ClientID     string `mapstructure:"client_id"     yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
}

// NewsConfig holds the news-scanning settings.
type NewsConfig struct {
	StartDate       string `mapstructure:"start_date"        yaml:"start_date"`
	EndDate         string `mapstructure:"end_date"          yaml:"end_date"`
	MaxArticles     int    `mapstructure:"max_articles"      yaml:"max_articles"`
	MaxVariations   int    `mapstructure:"max_variations"    yaml:"max_variations"`
	Concurrency     int    `mapstructure:"concurrency"       yaml:"concurrency"`
	FetchDelayMs    int    `mapstructure:"fetch_delay_ms"    yaml:"fetch_delay_ms"`
	FetchTimeoutSec int    `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
	ContentMaxLen   int    `mapstructure:"content_max_len"   yaml:"content_max_len"`
}

// StorageConfig holds output and cache locations.
type StorageConfig struct {
	OutputDir    string `mapstructure:"output_dir"    yaml:"output_dir"`
	ReportDir    string `mapstructure:"report_dir"    yaml:"report_dir"`
	CachePath    string `mapstructure:"cache_path"    yaml:"cache_path"`
	ProcessedLog string `mapstructure:"processed_log" yaml:"processed_log"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finharvest/config.yaml (home directory)
//  3. /etc/finharvest/config.yaml (system)
//
// Environment variables override config file values.
// Format: FINHARVEST_<SECTION>_<KEY>, e.g., FINHARVEST_DART_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finharvest"))
	v.AddConfigPath("/etc/finharvest")

	v.SetEnvPrefix("FINHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FINHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Statement collection defaults
	v.SetDefault("dart.batch_size", 400)
	v.SetDefault("dart.request_delay_ms", 200)
	v.SetDefault("dart.delist_cutoff_years", 2)

	// News scan defaults
	v.SetDefault("news.start_date", "2015-01-01")
	v.SetDefault("news.end_date", "2024-12-31")
	v.SetDefault("news.max_articles", 500)
	v.SetDefault("news.max_variations", 3)
	v.SetDefault("news.concurrency", 20)
	v.SetDefault("news.fetch_delay_ms", 100)
	v.SetDefault("news.fetch_timeout_sec", 15)
	v.SetDefault("news.content_max_len", 5000)

	// Storage defaults
	v.SetDefault("storage.output_dir", "./data/financials")
	v.SetDefault("storage.report_dir", "./data/reports")
	v.SetDefault("storage.cache_path", "./data/news_analysis.db")
	v.SetDefault("storage.processed_log", "./data/processed_companies.log")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables, including the bare names the provider credentials document.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FINHARVEST_DART_API_KEY"); key != "" {
		cfg.Dart.APIKey = key
	}
	if key := os.Getenv("OPENDART_API_KEY"); key != "" {
		cfg.Dart.APIKey = key
	}
	if key := os.Getenv("NAVER_CLIENT_ID"); key != "" {
		cfg.Naver.ClientID = key
	}
	if key := os.Getenv("NAVER_CLIENT_SECRET"); key != "" {
		cfg.Naver.ClientSecret = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
