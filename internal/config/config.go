// Package config loads the single configuration value passed to every
// component. Values come from defaults, an optional config file, an optional
// dotenv file and the environment, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/dshills/browser-search/internal/browser"
	"github.com/dshills/browser-search/internal/extract"
	"github.com/dshills/browser-search/pkg/types"
)

// EnvPrefix is the prefix of the upper-case environment aliases
const EnvPrefix = "BROWSER_SEARCH"

// Config holds all configuration for a run
type Config struct {
	IgnoredDomains string        `mapstructure:"ignored_domains"` // comma separated
	DateFormat     string        `mapstructure:"date_format"`
	MaxResults     int           `mapstructure:"max_results"`
	ShowFavicon    bool          `mapstructure:"show_favicon"`
	Workers        int           `mapstructure:"workers"`
	ReuseDir       string        `mapstructure:"reuse_dir"`
	CacheDir       string        `mapstructure:"cache_dir"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	FreshnessUnit  time.Duration `mapstructure:"freshness_unit"`
	LogLevel       string        `mapstructure:"log_level"`
	Home           string        `mapstructure:"home"`

	sources map[browser.Source]bool
}

// LoadOptions selects the optional files Load reads
type LoadOptions struct {
	ConfigFile string // json, yaml or toml
	EnvFile    string // dotenv file; existing variables are not overwritten
}

var scalarKeys = []string{
	"ignored_domains", "date_format", "max_results", "show_favicon", "workers",
	"reuse_dir", "cache_dir", "cache_ttl", "freshness_unit", "log_level", "home",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ignored_domains", "")
	v.SetDefault("date_format", extract.DefaultDateFormat)
	v.SetDefault("max_results", 30)
	v.SetDefault("show_favicon", false)
	v.SetDefault("workers", 0)
	v.SetDefault("reuse_dir", "")
	v.SetDefault("cache_dir", "")
	v.SetDefault("cache_ttl", 24*time.Hour)
	v.SetDefault("freshness_unit", time.Hour)
	v.SetDefault("log_level", "warn")
	v.SetDefault("home", "")
	for _, src := range browser.All {
		v.SetDefault(src.Key(), false)
	}
}

// bindEnv binds key to its launcher name and the prefixed upper-case alias
func bindEnv(v *viper.Viper, key string) error {
	return v.BindEnv(key, key, EnvPrefix+"_"+strings.ToUpper(key))
}

// Load builds the configuration. Every failure wraps types.ErrConfigParse.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("%w: env file %s: %w", types.ErrConfigParse, opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	for _, key := range scalarKeys {
		if err := bindEnv(v, key); err != nil {
			return nil, fmt.Errorf("%w: bind %s: %w", types.ErrConfigParse, key, err)
		}
	}
	for _, src := range browser.All {
		if err := bindEnv(v, src.Key()); err != nil {
			return nil, fmt.Errorf("%w: bind %s: %w", types.ErrConfigParse, src.Key(), err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", types.ErrConfigParse, opts.ConfigFile, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConfigParse, err)
	}

	config.sources = make(map[browser.Source]bool, len(browser.All))
	for _, src := range browser.All {
		enabled, err := cast.ToBoolE(v.Get(src.Key()))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrConfigParse, src.Key(), err)
		}
		config.sources[src] = enabled
	}

	if config.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: home directory: %w", types.ErrConfigParse, err)
		}
		config.Home = home
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.MaxResults < 1 {
		return fmt.Errorf("%w: max_results must be at least 1, got %d", types.ErrConfigParse, c.MaxResults)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", types.ErrConfigParse, c.Workers)
	}
	if c.FreshnessUnit <= 0 {
		return fmt.Errorf("%w: freshness_unit must be positive", types.ErrConfigParse)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: cache_ttl must be positive", types.ErrConfigParse)
	}
	if strings.TrimSpace(c.DateFormat) == "" {
		return fmt.Errorf("%w: date_format must not be empty", types.ErrConfigParse)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", types.ErrConfigParse, err)
	}
	return nil
}

// Enabled reports whether src is switched on
func (c *Config) Enabled(src browser.Source) bool {
	return c.sources[src]
}

// SetEnabled switches src on or off
func (c *Config) SetEnabled(src browser.Source, on bool) {
	if c.sources == nil {
		c.sources = make(map[browser.Source]bool)
	}
	c.sources[src] = on
}

// EnabledSources lists the enabled sources in registry order
func (c *Config) EnabledSources() []browser.Source {
	var out []browser.Source
	for _, src := range browser.All {
		if c.sources[src] {
			out = append(out, src)
		}
	}
	return out
}

// IgnoredDomainList splits ignored_domains, dropping empty entries
func (c *Config) IgnoredDomainList() []string {
	var out []string
	for _, d := range strings.Split(c.IgnoredDomains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// HistoryOptions returns the extraction options for history stores
func (c *Config) HistoryOptions() extract.HistoryOptions {
	return extract.HistoryOptions{
		IgnoredDomains: c.IgnoredDomainList(),
		DateFormat:     c.DateFormat,
	}
}
