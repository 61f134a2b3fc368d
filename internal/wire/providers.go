// Package wire assembles the relay service from its providers.
package wire

import (
	"errors"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/review-relay/internal/app"
	"github.com/sevigo/review-relay/internal/config"
	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/db"
	"github.com/sevigo/review-relay/internal/github"
	"github.com/sevigo/review-relay/internal/jobs"
	"github.com/sevigo/review-relay/internal/logger"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/server"
	"github.com/sevigo/review-relay/internal/storage"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	db.NewDatabase,
	github.NewClientProvider,
	jobs.NewRelayJob,
	provideLogger,
	provideDBConfig,
	provideParser,
	provideStore,
	providePoster,
	provideDispatcher,
)

func provideLogger(cfg *config.Config) *slog.Logger {
	return logger.NewLogger(cfg.Logging, nil)
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideStore(conn *db.DB) storage.Store {
	return storage.NewStore(conn.DB)
}

// provideParser applies the parser configuration file when one exists.
func provideParser(cfg *config.Config, logger *slog.Logger) (*parser.Parser, error) {
	parserCfg, err := config.LoadParserConfig(cfg.Parser.ConfigPath)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		logger.Info("no parser config found, using defaults", "path", cfg.Parser.ConfigPath)
	case err != nil:
		return nil, err
	}
	return parser.New(parser.FromConfig(parserCfg), parser.WithLogger(logger)), nil
}

// providePoster renders the general bucket under the name the parser uses.
func providePoster(cfg *config.Config, clients github.ClientProvider, p *parser.Parser, logger *slog.Logger) *github.Poster {
	return github.NewPoster(clients, logger, cfg.GitHub.PostMaxRetries, github.WithGeneralBucket(p.GeneralBucket()))
}

func provideDispatcher(cfg *config.Config, job *jobs.RelayJob, logger *slog.Logger) core.JobDispatcher {
	return jobs.NewDispatcher(job, cfg.Server.MaxWorkers, cfg.Server.QueueSize, logger)
}
