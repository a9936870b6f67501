// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// ReadAPIKeyEnv is the environment variable consulted first for the Read API key.
const ReadAPIKeyEnv = "HONEYBADGER_READ_API_KEY"

// ReadAPIKeyProperty is the configuration property consulted when the
// environment variable is empty.
const ReadAPIKeyProperty = "honeybadger.read_api_key"

// Interface is the read-only view of the configuration the loader consumes.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Network() NetworkConfig
	Honeybadger() HoneybadgerConfig
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	NetworkCfg     NetworkConfig     `mapstructure:"network" yaml:"network"`
	HoneybadgerCfg HoneybadgerConfig `mapstructure:"honeybadger" yaml:"honeybadger"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Network() NetworkConfig         { return c.NetworkCfg }
func (c *Config) Honeybadger() HoneybadgerConfig { return c.HoneybadgerCfg }

// --- Setters ---

// Network Setters
func (c *Config) SetNetworkTimeout(d time.Duration) { c.NetworkCfg.Timeout = d }

// Honeybadger Setters
func (c *Config) SetHoneybadgerURL(u string)       { c.HoneybadgerCfg.URL = u }
func (c *Config) SetHoneybadgerLookupURL(u string) { c.HoneybadgerCfg.LookupURL = u }
func (c *Config) SetHoneybadgerConcurrency(n int)  { c.HoneybadgerCfg.Concurrency = n }
func (c *Config) SetHoneybadgerRateLimit(r float64) {
	c.HoneybadgerCfg.RateLimit = r
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ProxyConfig holds an explicit upstream proxy for all outbound requests.
// The http.proxyHost/http.proxyPort properties take precedence when set.
type ProxyConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

// NetworkConfig tunes the network behavior of the application.
type NetworkConfig struct {
	Timeout               time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ConnectTimeout        time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	TLSHandshakeTimeout   time.Duration `mapstructure:"tls_handshake_timeout" yaml:"tls_handshake_timeout"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout" yaml:"response_header_timeout"`
	ForceHTTP2            bool          `mapstructure:"force_http2" yaml:"force_http2"`
	IgnoreTLSErrors       bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Proxy                 ProxyConfig   `mapstructure:"proxy" yaml:"proxy"`
}

// HoneybadgerConfig points the loader at the Honeybadger service.
type HoneybadgerConfig struct {
	// URL is the notices API base; detail requests go to {URL}/{id}/.
	URL string `mapstructure:"url" yaml:"url"`
	// LookupURL is the public notice lookup prefix probed for a redirect.
	LookupURL   string  `mapstructure:"lookup_url" yaml:"lookup_url"`
	ReadAPIKey  string  `mapstructure:"read_api_key" yaml:"read_api_key"`
	Environment string  `mapstructure:"environment" yaml:"environment"`
	Concurrency int     `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimit   float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst       int     `mapstructure:"burst" yaml:"burst"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "honeybadger-loader")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.connect_timeout", "5s")
	v.SetDefault("network.tls_handshake_timeout", "5s")
	v.SetDefault("network.response_header_timeout", "10s")
	v.SetDefault("network.force_http2", true)
	v.SetDefault("network.ignore_tls_errors", false)
	v.SetDefault("network.proxy.enabled", false)

	// -- Honeybadger --
	v.SetDefault("honeybadger.url", "https://api.honeybadger.io/v1/notices")
	v.SetDefault("honeybadger.lookup_url", "https://app.honeybadger.io/notice/")
	v.SetDefault("honeybadger.environment", "development")
	v.SetDefault("honeybadger.concurrency", 4)
	v.SetDefault("honeybadger.rate_limit", 2.0)
	v.SetDefault("honeybadger.burst", 1)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	if err := v.BindEnv(ReadAPIKeyProperty, ReadAPIKeyEnv); err != nil {
		return nil, fmt.Errorf("error binding %s: %w", ReadAPIKeyEnv, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.HoneybadgerCfg.Validate(); err != nil {
		return fmt.Errorf("honeybadger configuration invalid: %w", err)
	}
	if c.NetworkCfg.Timeout < 0 || c.NetworkCfg.ConnectTimeout < 0 {
		return fmt.Errorf("network timeouts must not be negative")
	}
	if c.NetworkCfg.Proxy.Enabled {
		if _, err := url.Parse(c.NetworkCfg.Proxy.Address); err != nil || c.NetworkCfg.Proxy.Address == "" {
			return fmt.Errorf("network.proxy.address must be a valid URL when the proxy is enabled")
		}
	}
	return nil
}

// Validate checks the Honeybadger endpoint settings.
func (h *HoneybadgerConfig) Validate() error {
	for name, raw := range map[string]string{"url": h.URL, "lookup_url": h.LookupURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if h.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	if h.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
