package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/review-relay/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig
	Logging  logger.Config
	GitHub   GitHubConfig
	Database DBConfig
	Parser   ParserSettings
}

// ServerConfig configures the HTTP API and the relay worker pool.
type ServerConfig struct {
	Port       string
	MaxWorkers int
	QueueSize  int
}

// GitHubConfig holds credentials for posting reviews. A personal access
// token takes precedence over GitHub App credentials.
type GitHubConfig struct {
	Token          string
	AppID          int64
	PrivateKeyPath string
	PostMaxRetries int
}

// HasCredentials reports whether any way of authenticating is configured.
func (g GitHubConfig) HasCredentials() bool {
	return g.Token != "" || g.AppID != 0
}

// DBConfig holds the postgres connection settings of the review archive.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// ParserSettings points at an optional parser configuration file.
type ParserSettings struct {
	ConfigPath string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/review-relay.private-key.pem")
	viper.SetDefault("POST_MAX_RETRIES", 3)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "relay")
	viper.SetDefault("DB_NAME", "review_relay")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("QUEUE_SIZE", 100)
	viper.SetDefault("PARSER_CONFIG_PATH", ".review-relay.yml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to read config file", "error", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:       viper.GetString("SERVER_PORT"),
			MaxWorkers: viper.GetInt("MAX_WORKERS"),
			QueueSize:  viper.GetInt("QUEUE_SIZE"),
		},
		Logging: logger.Config{
			Level:  normalizeLogLevel(viper.GetString("LOG_LEVEL")),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		GitHub: GitHubConfig{
			Token:          viper.GetString("GITHUB_TOKEN"),
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
			PostMaxRetries: viper.GetInt("POST_MAX_RETRIES"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Parser: ParserSettings{
			ConfigPath: viper.GetString("PARSER_CONFIG_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values LoadConfig cannot default away.
func (c *Config) Validate() error {
	if c.Server.MaxWorkers < 1 {
		return fmt.Errorf("MAX_WORKERS must be at least 1, got %d", c.Server.MaxWorkers)
	}
	if c.Server.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.Server.QueueSize)
	}
	if c.GitHub.PostMaxRetries < 0 {
		return fmt.Errorf("POST_MAX_RETRIES cannot be negative, got %d", c.GitHub.PostMaxRetries)
	}
	if c.GitHub.Token == "" && c.GitHub.AppID != 0 && c.GitHub.PrivateKeyPath == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY_PATH must be set when GITHUB_APP_ID is used")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be a valid port, got %d", c.Database.Port)
	}
	return nil
}

// normalizeLogLevel maps the LOG_LEVEL string onto a level slog understands.
func normalizeLogLevel(level string) string {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "debug", "info", "warn", "error":
		return l
	case "warning":
		return "warn"
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", level)
		return "info"
	}
}
