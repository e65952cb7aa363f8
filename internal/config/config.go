// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package config

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/viper"
)

// PortEnv is the platform-provided port variable. When set it replaces the
// port of networking.listen.
const PortEnv = "PORT"

// Config is the top-level handbook service configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking" yaml:"networking"`
	Knowledge  KnowledgeConfig  `mapstructure:"knowledge" yaml:"knowledge"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Generative GenerativeConfig `mapstructure:"generative" yaml:"generative"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// NetworkingConfig controls the HTTP listener.
type NetworkingConfig struct {
	Listen       string        `mapstructure:"listen" yaml:"listen"`
	CORSOrigins  []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	// RateLimitRPS is the per-client request rate. 0 disables limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	// TrustedProxies lists the CIDRs whose X-Forwarded-For header is believed.
	// Empty means client addresses always come from the TCP peer.
	TrustedProxies []string `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
}

// KnowledgeConfig selects the handbook document.
type KnowledgeConfig struct {
	// Path to a handbook YAML file. Empty uses the embedded handbook.
	Path string `mapstructure:"path" yaml:"path"`
}

// CacheConfig controls the answer cache.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL             time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
	// MaxEntries caps the number of cached answers. 0 uses the built-in cap.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`
}

// GenerativeConfig configures the optional generative provider. It is only
// probed for health reporting and never answers questions.
type GenerativeConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`
	// APIKey may be a literal or a keyring:// URI.
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// Enabled reports whether a generative provider is configured.
func (g GenerativeConfig) Enabled() bool {
	return g.Provider != ""
}

// HasLiteralKey reports whether APIKey holds a key itself rather than a
// keyring reference.
func (g GenerativeConfig) HasLiteralKey() bool {
	return g.APIKey != "" && !strings.HasPrefix(g.APIKey, "keyring://")
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SupportedProviders lists the generative providers that can be configured.
var SupportedProviders = []string{"anthropic", "openai", "google"}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "0.0.0.0:8000")
	v.SetDefault("networking.cors_origins", []string{"*"})
	v.SetDefault("networking.read_timeout", 15*time.Second)
	v.SetDefault("networking.write_timeout", 30*time.Second)
	v.SetDefault("networking.rate_limit_rps", 0.0)
	v.SetDefault("networking.rate_limit_burst", 0)
	v.SetDefault("networking.trusted_proxies", []string{})
	v.SetDefault("knowledge.path", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", 15*time.Minute)
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("generative.provider", "")
	v.SetDefault("generative.model", "")
	v.SetDefault("generative.api_key", "")
	v.SetDefault("generative.base_url", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SetupEnv binds HANDBOOK_* environment variables, e.g.
// HANDBOOK_NETWORKING_LISTEN for networking.listen.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("HANDBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix HANDBOOK_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, hberr.Errorf(hberr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, hberr.Errorf(hberr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if port := os.Getenv(PortEnv); port != "" {
		listen, err := withPort(cfg.Networking.Listen, port)
		if err != nil {
			return nil, err
		}
		cfg.Networking.Listen = listen
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, hberr.Errorf(hberr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

func withPort(listen, port string) (string, error) {
	host := ""
	if h, _, err := net.SplitHostPort(listen); err == nil {
		host = h
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", hberr.Errorf(hberr.CodeConfigValidateInvalidValue, "config: %s must be a number, got %q", PortEnv, port)
	}
	return net.JoinHostPort(host, port), nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateGenerative()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue, "config: networking.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Networking.Listen)
		if err != nil {
			errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
				"config: networking.listen must be a valid host:port address, got %q: %w",
				c.Networking.Listen, err,
			))
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
					"config: networking.listen port must be a number, got %q",
					portStr,
				))
			} else if port < 1 || port > 65535 {
				errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
					"config: networking.listen port must be between 1 and 65535, got %d",
					port,
				))
			}
		}
	}

	if c.Networking.ReadTimeout < 0 || c.Networking.WriteTimeout < 0 {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: networking read/write timeouts must not be negative"))
	}

	if c.Networking.RateLimitRPS < 0 {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: networking.rate_limit_rps must not be negative, got %g",
			c.Networking.RateLimitRPS,
		))
	} else if c.Networking.RateLimitRPS > 0 && c.Networking.RateLimitBurst <= 0 {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: networking.rate_limit_burst must be positive when rate_limit_rps is set, got %d",
			c.Networking.RateLimitBurst,
		))
	}

	for _, cidr := range c.Networking.TrustedProxies {
		if _, _, err := net.ParseCIDR(strings.TrimSpace(cidr)); err != nil {
			errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
				"config: networking.trusted_proxies entry %q is not a CIDR range", cidr))
		}
	}

	return errs
}

func (c *Config) validateCache() []error {
	if !c.Cache.Enabled {
		return nil
	}

	var errs []error
	if c.Cache.TTL <= 0 {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: cache.ttl must be greater than 0 when the cache is enabled, got %s", c.Cache.TTL))
	}
	if c.Cache.CleanupInterval <= 0 {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: cache.cleanup_interval must be greater than 0 when the cache is enabled, got %s", c.Cache.CleanupInterval))
	}
	if c.Cache.MaxEntries < 0 {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: cache.max_entries must not be negative, got %d", c.Cache.MaxEntries))
	}
	return errs
}

func (c *Config) validateGenerative() []error {
	if !c.Generative.Enabled() {
		return nil
	}

	var errs []error
	supported := false
	for _, p := range SupportedProviders {
		if p == c.Generative.Provider {
			supported = true
			break
		}
	}
	if !supported {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: generative.provider must be one of [%s], got %q",
			strings.Join(SupportedProviders, ", "), c.Generative.Provider,
		))
	}
	if c.Generative.APIKey == "" {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: generative.api_key must be set when generative.provider is %q", c.Generative.Provider))
	}
	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, hberr.Errorf(hberr.CodeConfigValidateInvalidValue,
			"config: logging.format must be one of [text, json], got %q", c.Logging.Format))
	}

	return errs
}
