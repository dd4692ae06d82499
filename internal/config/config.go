// Package config loads run settings and batch search definitions via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JakeFAU/yellowpages-leads/internal/fetcher"
)

// EnvPrefix namespaces environment overrides, e.g. YPLEADS_MAX_RETRIES.
const EnvPrefix = "YPLEADS"

// Default setting values.
const (
	DefaultBaseURL   = "https://www.yellowpages.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/130.0 Safari/537.36"
	DefaultDelayMin         = 1.0
	DefaultDelayMax         = 3.0
	DefaultMaxRetries       = 3
	DefaultTimeoutSeconds   = 20.0
	DefaultOutputDirectory  = "data"
	DefaultBatchConcurrency = 1
)

// Settings captures every run-level knob.
type Settings struct {
	BaseURL          string            `mapstructure:"base_url"`
	UserAgent        string            `mapstructure:"user_agent"`
	DelayMin         float64           `mapstructure:"delay_seconds_min"`
	DelayMax         float64           `mapstructure:"delay_seconds_max"`
	MaxRetries       int               `mapstructure:"max_retries"`
	Proxies          map[string]string `mapstructure:"proxies"`
	TimeoutSeconds   float64           `mapstructure:"timeout_seconds"`
	OutputDirectory  string            `mapstructure:"output_directory"`
	BatchConcurrency int               `mapstructure:"batch_concurrency"`
	// ArchiveDirectory enables the raw page archive when non-empty.
	ArchiveDirectory string `mapstructure:"archive_directory"`
	// MetricsTextfile, when set, receives a Prometheus text dump after the run.
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		BaseURL:          DefaultBaseURL,
		UserAgent:        DefaultUserAgent,
		DelayMin:         DefaultDelayMin,
		DelayMax:         DefaultDelayMax,
		MaxRetries:       DefaultMaxRetries,
		TimeoutSeconds:   DefaultTimeoutSeconds,
		OutputDirectory:  DefaultOutputDirectory,
		BatchConcurrency: DefaultBatchConcurrency,
	}
}

// Load reads settings from the JSON file at path, layered over the defaults
// and under YPLEADS_* environment overrides. It never fails: a missing or
// unreadable file is logged and the defaults are used instead, and
// out-of-range values are replaced with a warning.
func Load(path string, logger *zap.Logger) Settings {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := newViper()
	if path == "" {
		logger.Info("No settings file provided, using defaults")
	} else {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("Settings file unusable, using defaults", zap.String("path", path), zap.Error(err))
			v = newViper()
		} else {
			logger.Info("Loaded settings", zap.String("path", path))
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		logger.Warn("Settings have invalid values, using defaults", zap.String("path", path), zap.Error(err))
		s = Settings{}
		if err := newViper().Unmarshal(&s); err != nil {
			logger.Warn("Environment overrides have invalid values, ignoring them", zap.Error(err))
			s = Defaults()
		}
	}
	return s.sanitize(logger)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("delay_seconds_min", d.DelayMin)
	v.SetDefault("delay_seconds_max", d.DelayMax)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("timeout_seconds", d.TimeoutSeconds)
	v.SetDefault("output_directory", d.OutputDirectory)
	v.SetDefault("batch_concurrency", d.BatchConcurrency)
	v.SetDefault("archive_directory", "")
	v.SetDefault("metrics_textfile", "")
}

func (s Settings) sanitize(logger *zap.Logger) Settings {
	fix := func(key string, got, want any) {
		logger.Warn("Invalid setting replaced", zap.String("key", key), zap.Any("value", got), zap.Any("using", want))
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		fix("base_url", s.BaseURL, DefaultBaseURL)
		s.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(s.UserAgent) == "" {
		fix("user_agent", s.UserAgent, DefaultUserAgent)
		s.UserAgent = DefaultUserAgent
	}
	if s.DelayMin < 0 {
		fix("delay_seconds_min", s.DelayMin, 0.0)
		s.DelayMin = 0
	}
	if s.DelayMax < 0 {
		fix("delay_seconds_max", s.DelayMax, 0.0)
		s.DelayMax = 0
	}
	if s.MaxRetries < 1 {
		fix("max_retries", s.MaxRetries, 1)
		s.MaxRetries = 1
	}
	if s.TimeoutSeconds <= 0 {
		fix("timeout_seconds", s.TimeoutSeconds, DefaultTimeoutSeconds)
		s.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if strings.TrimSpace(s.OutputDirectory) == "" {
		fix("output_directory", s.OutputDirectory, DefaultOutputDirectory)
		s.OutputDirectory = DefaultOutputDirectory
	}
	if s.BatchConcurrency < 1 {
		fix("batch_concurrency", s.BatchConcurrency, DefaultBatchConcurrency)
		s.BatchConcurrency = DefaultBatchConcurrency
	}
	return s
}

// Timeout returns the per-request timeout.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// FetchConfig converts the settings into a fetcher configuration.
func (s Settings) FetchConfig() fetcher.Config {
	var proxies map[string]string
	if len(s.Proxies) > 0 {
		proxies = make(map[string]string, len(s.Proxies))
		for scheme, proxy := range s.Proxies {
			proxies[scheme] = proxy
		}
	}
	return fetcher.Config{
		UserAgent:  s.UserAgent,
		DelayMin:   s.DelayMin,
		DelayMax:   s.DelayMax,
		MaxRetries: s.MaxRetries,
		Proxies:    proxies,
		Timeout:    s.Timeout(),
	}
}

// String summarizes the settings for logs.
func (s Settings) String() string {
	return fmt.Sprintf("base_url=%s retries=%d delay=[%.2f,%.2f]s timeout=%s output=%s",
		s.BaseURL, s.MaxRetries, s.DelayMin, s.DelayMax, s.Timeout(), s.OutputDirectory)
}
