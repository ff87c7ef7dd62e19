package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
		Server: ServerConfig{Port: "8080"},
		Auth:   AuthConfig{AccessTokenDuration: time.Hour, LoginRatePerSecond: 1, LoginBurst: 1},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }},
		{"zero login burst", func(c *Config) { c.Auth.LoginBurst = 0 }},
		{"admin email without password", func(c *Config) { c.Admin.Email = "root@example.com" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, filepath.Join(dir, "bookstore.db"), cfg.Data.DatabasePath())
	assert.False(t, cfg.Admin.Enabled())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`
# comment
SERVER_PORT=7000
LOG_LEVEL="debug"
CORS_ORIGINS=https://a.example, https://b.example
`), 0o600))

	t.Setenv("SERVER_PORT", "9000")
	// Registered so the values loaded from .env are restored afterwards.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load([]string{"-data-path", dir, "-env-file", envFile, "-access-token-duration", "2h"})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port, "env beats .env")
	assert.Equal(t, "debug", cfg.Logger.Level, ".env beats default")
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenDuration, "flag beats default")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	_, err := Load([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "x"), "-read-timeout", "soon"})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)
}
