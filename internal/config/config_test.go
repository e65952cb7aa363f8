// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prmsu-dev/handbook/internal/config"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8000", cfg.Networking.Listen)
	assert.Equal(t, []string{"*"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, 15*time.Second, cfg.Networking.ReadTimeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Empty(t, cfg.Knowledge.Path)
	assert.False(t, cfg.Generative.Enabled())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "handbook.yaml")
	content := `
networking:
  listen: "127.0.0.1:9999"
  write_timeout: 5s
knowledge:
  path: /srv/handbook.yaml
generative:
  provider: openai
  api_key: keyring://openai
logging:
  format: json
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Networking.Listen)
	assert.Equal(t, 5*time.Second, cfg.Networking.WriteTimeout)
	assert.Equal(t, "/srv/handbook.yaml", cfg.Knowledge.Path)
	assert.Equal(t, "openai", cfg.Generative.Provider)
	assert.False(t, cfg.Generative.HasLiteralKey())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HANDBOOK_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("HANDBOOK_LOGGING_LEVEL", "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_PortEnvReplacesListenPort(t *testing.T) {
	t.Setenv("PORT", "3000")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.Networking.Listen)
}

func TestLoad_PortEnvInvalid(t *testing.T) {
	t.Setenv("PORT", "http")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, hberr.HasCode(err, hberr.CodeConfigLoadReadFailure))
}

func TestLoad_InvalidConfigFailsFast(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "handbook.yaml")
	content := `
networking:
  listen: "not-valid"
logging:
  level: loud
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating config")
	assert.Contains(t, err.Error(), "networking.listen")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestDefaultConfigYAML_MatchesDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "handbook.yaml")
	require.NoError(t, os.WriteFile(cfgPath, config.DefaultConfigYAML, 0o600))

	fromFile, err := config.Load(cfgPath)
	require.NoError(t, err)
	fromDefaults, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, fromDefaults, fromFile)
}

func TestConfig_YAMLKeysMatchViperKeys(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(string(out))))
	reloaded, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func validConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{
			Listen:      "127.0.0.1:8000",
			CORSOrigins: []string{"*"},
		},
		Cache: config.CacheConfig{
			Enabled:         true,
			TTL:             time.Minute,
			CleanupInterval: time.Minute,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_NetworkingListen(t *testing.T) {
	tests := []struct {
		name    string
		listen  string
		wantErr bool
	}{
		{"valid address", "127.0.0.1:8080", false},
		{"valid all interfaces", "0.0.0.0:9999", false},
		{"valid ipv6", "[::1]:8080", false},
		{"valid empty host", ":8000", false},
		{"empty listen", "", true},
		{"missing port", "127.0.0.1", true},
		{"invalid port zero", "127.0.0.1:0", true},
		{"port too high", "127.0.0.1:70000", true},
		{"not a number", "127.0.0.1:abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Networking.Listen = tt.listen
			errs := cfg.Validate()
			if tt.wantErr {
				require.NotEmpty(t, errs)
				assert.Contains(t, errs[0].Error(), "networking.listen")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidate_RateLimitConfig(t *testing.T) {
	tests := []struct {
		name    string
		rps     float64
		burst   int
		wantErr string
	}{
		{"disabled - zero rps and burst", 0, 0, ""},
		{"valid rate limit", 10.0, 20, ""},
		{"valid fractional rps", 0.5, 5, ""},
		{"negative rps", -5.0, 10, "rate_limit_rps must not be negative"},
		{"rps set but burst zero", 10.0, 0, "rate_limit_burst must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Networking.RateLimitRPS = tt.rps
			cfg.Networking.RateLimitBurst = tt.burst
			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.wantErr)
		})
	}
}

func TestValidate_TrustedProxies(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		wantErr bool
	}{
		{"none", nil, false},
		{"ipv4 range", []string{"10.0.0.0/8"}, false},
		{"ipv6 range", []string{"fd00::/8", " 192.168.1.0/24 "}, false},
		{"bare address", []string{"10.0.0.1"}, true},
		{"garbage", []string{"proxy.internal"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Networking.TrustedProxies = tt.proxies
			errs := cfg.Validate()
			if !tt.wantErr {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), "networking.trusted_proxies")
		})
	}
}

func TestDefaults_ProxiesAndCacheCap(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Networking.TrustedProxies)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
}

func TestValidate_Cache(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.TTL = 0
	cfg.Cache.CleanupInterval = -time.Second
	assert.Len(t, cfg.Validate(), 2)

	cfg = validConfig()
	cfg.Cache.MaxEntries = -1
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "cache.max_entries")

	cfg = validConfig()
	cfg.Cache.TTL = 0
	cfg.Cache.CleanupInterval = -time.Second

	cfg.Cache.Enabled = false
	assert.Empty(t, cfg.Validate(), "disabled cache ignores its durations")
}

func TestValidate_Generative(t *testing.T) {
	tests := []struct {
		name     string
		gen      config.GenerativeConfig
		wantErrs int
	}{
		{"disabled", config.GenerativeConfig{}, 0},
		{"anthropic with key", config.GenerativeConfig{Provider: "anthropic", APIKey: "sk"}, 0},
		{"google keyring key", config.GenerativeConfig{Provider: "google", APIKey: "keyring://google"}, 0},
		{"unknown provider", config.GenerativeConfig{Provider: "cohere", APIKey: "k"}, 1},
		{"missing key", config.GenerativeConfig{Provider: "openai"}, 1},
		{"unknown provider and missing key", config.GenerativeConfig{Provider: "cohere"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Generative = tt.gen
			errs := cfg.Validate()
			assert.Len(t, errs, tt.wantErrs)
			for _, err := range errs {
				assert.Contains(t, err.Error(), "generative.")
			}
		})
	}
}

func TestValidate_Logging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging = config.LoggingConfig{Level: "verbose", Format: "xml"}
	errs := cfg.Validate()
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "logging.level")
	assert.Contains(t, errs[1].Error(), "logging.format")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &config.Config{
		Networking: config.NetworkingConfig{RateLimitRPS: -1},
		Cache:      config.CacheConfig{Enabled: true},
		Generative: config.GenerativeConfig{Provider: "nope"},
		Logging:    config.LoggingConfig{Level: "x", Format: "y"},
	}

	errs := cfg.Validate()
	assert.GreaterOrEqual(t, len(errs), 7, "expected every problem to be reported, got %d: %v", len(errs), errs)
	for _, err := range errs {
		assert.True(t, hberr.IsInvalidInput(err))
	}
}

func TestHasLiteralKey(t *testing.T) {
	assert.False(t, config.GenerativeConfig{}.HasLiteralKey())
	assert.False(t, config.GenerativeConfig{APIKey: "keyring://anthropic"}.HasLiteralKey())
	assert.True(t, config.GenerativeConfig{APIKey: "sk-ant"}.HasLiteralKey())
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "handbook.yaml")

	require.NoError(t, config.WriteDefault(path, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigYAML, data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = config.WriteDefault(path, false)
	require.Error(t, err)
	assert.True(t, hberr.IsConflict(err))

	require.NoError(t, config.WriteDefault(path, true))
}

func TestBootstrapConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := config.BootstrapConfig()
	assert.Equal(t, filepath.Join(home, ".config", "handbook", "handbook.yaml"), path)
	assert.Empty(t, config.BootstrapConfig(), "second call leaves the existing file alone")
}
