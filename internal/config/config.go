// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

// Package config loads service configuration from an optional YAML
// file, command-line flags, and environment variables. Flags override
// file values; secrets (database URL, token signing secret) are taken
// from the environment so they never land in config files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variables consulted for secrets.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTokenSecret = "TOKEN_SECRET"
)

// Defaults.
const (
	DefaultListen      = ":8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultTokenMethod = "HS256"
	DefaultTokenTTLMin = 30
)

// Token holds access-token settings.
type Token struct {
	Secret     string `koanf:"secret"`
	Method     string `koanf:"method"`
	TTLMinutes int    `koanf:"ttl_minutes"`
	Type       string `koanf:"type"`
}

// TTL returns the token lifetime as a duration.
func (t Token) TTL() time.Duration {
	return time.Duration(t.TTLMinutes) * time.Minute
}

// Config holds the full service configuration.
type Config struct {
	Listen      string   `koanf:"listen"`
	MetricsAddr string   `koanf:"metrics_addr"`
	LogFormat   string   `koanf:"log_format"`
	DatabaseURL string   `koanf:"database_url"`
	CORSOrigins []string `koanf:"cors_origins"`
	Token       Token    `koanf:"token"`
}

// Load builds a Config from the optional YAML file at path, the given
// flag set, and the environment. An empty path skips the file layer.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		Listen:      DefaultListen,
		MetricsAddr: DefaultMetricsAddr,
		LogFormat:   DefaultLogFormat,
		Token: Token{
			Method:     DefaultTokenMethod,
			TTLMinutes: DefaultTokenTTLMin,
			Type:       "Bearer",
		},
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	// Secrets come from the environment, overriding any file value.
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(EnvTokenSecret); v != "" {
		cfg.Token.Secret = v
	}

	return cfg, nil
}

// Validate checks that the configuration is complete enough to serve.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen address is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text'")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("%s environment variable is required", EnvDatabaseURL)
	}
	if c.Token.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("%s environment variable is required", EnvTokenSecret)
	}
	if c.Token.TTLMinutes <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("ttl_minutes", c.Token.TTLMinutes).
			Errorf("token ttl must be positive")
	}
	return nil
}
