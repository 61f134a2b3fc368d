package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-relay/internal/core"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8080", cfg.Server.Port)
				assert.Equal(t, 5, cfg.Server.MaxWorkers)
				assert.Equal(t, 100, cfg.Server.QueueSize)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, 3, cfg.GitHub.PostMaxRetries)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.False(t, cfg.GitHub.HasCredentials())
				assert.Equal(t, ".review-relay.yml", cfg.Parser.ConfigPath)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"SERVER_PORT":  "9090",
				"LOG_LEVEL":    "WARNING",
				"GITHUB_TOKEN": "ghp_test",
				"MAX_WORKERS":  "2",
				"DB_PORT":      "6543",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9090", cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "ghp_test", cfg.GitHub.Token)
				assert.True(t, cfg.GitHub.HasCredentials())
				assert.Equal(t, 2, cfg.Server.MaxWorkers)
				assert.Equal(t, 6543, cfg.Database.Port)
			},
		},
		{
			name:    "zero workers",
			env:     map[string]string{"MAX_WORKERS": "0"},
			wantErr: true,
		},
		{
			name:    "negative retries",
			env:     map[string]string{"POST_MAX_RETRIES": "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", MaxWorkers: 1, QueueSize: 1},
			Database: DBConfig{Port: 5432},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "app id without key path", mutate: func(c *Config) { c.GitHub.AppID = 42 }, wantErr: true},
		{name: "token wins over app id", mutate: func(c *Config) {
			c.GitHub.AppID = 42
			c.GitHub.Token = "t"
		}},
		{name: "zero queue", mutate: func(c *Config) { c.Server.QueueSize = 0 }, wantErr: true},
		{name: "bad db port", mutate: func(c *Config) { c.Database.Port = 70000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadParserConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadParserConfig(filepath.Join(dir, "nope.yml"))
		assert.True(t, errors.Is(err, ErrConfigNotFound))
		require.NotNil(t, cfg)
		assert.Equal(t, core.GeneralFileComments, cfg.GeneralBucket)
	})

	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadParserConfig("")
		require.NoError(t, err)
		assert.Equal(t, core.DefaultParserConfig(), cfg)
	})

	t.Run("valid file", func(t *testing.T) {
		path := write("valid.yml", `
approval_keywords:
  - keyword: lgtm
    status: Approved
  - keyword: needs work
    status: ChangesRequested
general_bucket: General
`)
		cfg, err := LoadParserConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []core.ApprovalKeyword{
			{Keyword: "lgtm", Status: core.ApprovalApproved},
			{Keyword: "needs work", Status: core.ApprovalChangesRequested},
		}, cfg.ApprovalKeywords)
		assert.Equal(t, "General", cfg.GeneralBucket)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadParserConfig(write("bad.yml", "approval_keywords: [oops"))
		assert.True(t, errors.Is(err, ErrConfigParsing))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := LoadParserConfig(write("status.yml", "approval_keywords:\n  - keyword: ship\n    status: Shipped\n"))
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})
}
