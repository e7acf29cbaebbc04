// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkloom/linkloom/internal/config"
	"github.com/linkloom/linkloom/pkg/errutil"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linkloom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultListen, cfg.Listen)
	assert.Equal(t, config.DefaultMetricsAddr, cfg.MetricsAddr)
	assert.Equal(t, config.DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, config.DefaultTokenMethod, cfg.Token.Method)
	assert.Equal(t, 30*time.Minute, cfg.Token.TTL())
	assert.Equal(t, "Bearer", cfg.Token.Type)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
listen: ":9999"
log_format: text
cors_origins:
  - https://app.example.com
  - https://admin.example.com
token:
  method: HS512
  ttl_minutes: 5
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "HS512", cfg.Token.Method)
	assert.Equal(t, 5*time.Minute, cfg.Token.TTL())
	// Untouched keys keep their defaults.
	assert.Equal(t, config.DefaultMetricsAddr, cfg.MetricsAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/linkloom.yaml", nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_FAILED")
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `listen: ":9999"`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen", "", "")
	flags.String("log-format", "", "")
	require.NoError(t, flags.Parse([]string{"--listen", ":7777", "--log-format", "text"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Listen)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_SecretsFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvDatabaseURL, "postgres://localhost/linkloom")
	t.Setenv(config.EnvTokenSecret, "super-secret")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/linkloom", cfg.DatabaseURL)
	assert.Equal(t, "super-secret", cfg.Token.Secret)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Listen:      ":8080",
			MetricsAddr: "127.0.0.1:9100",
			LogFormat:   "json",
			DatabaseURL: "postgres://localhost/linkloom",
			Token: config.Token{
				Secret:     "super-secret",
				Method:     "HS256",
				TTLMinutes: 30,
				Type:       "Bearer",
			},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing listen address", func(t *testing.T) {
		cfg := valid()
		cfg.Listen = ""
		err := cfg.Validate()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("bad log format", func(t *testing.T) {
		cfg := valid()
		cfg.LogFormat = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("missing database url", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.EnvDatabaseURL)
	})

	t.Run("missing token secret", func(t *testing.T) {
		cfg := valid()
		cfg.Token.Secret = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.EnvTokenSecret)
	})

	t.Run("non-positive token ttl", func(t *testing.T) {
		cfg := valid()
		cfg.Token.TTLMinutes = 0
		err := cfg.Validate()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})
}
