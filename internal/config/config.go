// Package config handles configuration loading for marketbrief.
// It supports YAML config files with environment variable overrides.
// Credentials are resolved here once and injected into collectors at
// construction, never read from the environment at call time.
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
	HTTP     HTTPConfig     `mapstructure:"http"     yaml:"http"`
	Economic EconomicConfig `mapstructure:"economic" yaml:"economic"`
	Twitter  TwitterConfig  `mapstructure:"twitter"  yaml:"twitter"`
	Reddit   RedditConfig   `mapstructure:"reddit"   yaml:"reddit"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// HTTPConfig holds shared transport settings. One pooled client is shared
// by all collectors.
type HTTPConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// EconomicConfig holds Trading Economics API credentials. The public guest
// credential pair is the documented default; real credentials raise the
// rate limit.
type EconomicConfig struct {
	Client string `mapstructure:"client" yaml:"client"`
	Secret string `mapstructure:"secret" yaml:"secret"`
}

// TwitterConfig holds the Twitter API v2 bearer token. There is no
// anonymous tier; an empty token marks the source unavailable at run time.
type TwitterConfig struct {
	BearerToken string `mapstructure:"bearer_token" yaml:"bearer_token"`
	MaxResults  int    `mapstructure:"max_results"  yaml:"max_results"`
}

// RedditConfig holds Reddit listing settings. No credentials are needed.
type RedditConfig struct {
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// LoggingConfig holds diagnostic stream settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketbrief/config.yaml (home directory)
//  3. /etc/marketbrief/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETBRIEF_<SECTION>_<KEY>, e.g. MARKETBRIEF_TWITTER_BEARER_TOKEN.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketbrief"))
	v.AddConfigPath("/etc/marketbrief")

	v.SetEnvPrefix("MARKETBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars.
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MARKETBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout_sec", 30)

	// Trading Economics documents guest:guest for anonymous access.
	v.SetDefault("economic.client", "guest")
	v.SetDefault("economic.secret", "guest")

	v.SetDefault("twitter.max_results", 10)
	v.SetDefault("reddit.limit", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables, so they win even when viper never saw the key in a file.
func overrideFromEnv(cfg *Config) {
	if token := os.Getenv("MARKETBRIEF_TWITTER_BEARER_TOKEN"); token != "" {
		cfg.Twitter.BearerToken = token
	}
	if client := os.Getenv("MARKETBRIEF_ECONOMIC_CLIENT"); client != "" {
		cfg.Economic.Client = client
	}
	if secret := os.Getenv("MARKETBRIEF_ECONOMIC_SECRET"); secret != "" {
		cfg.Economic.Secret = secret
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
