package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/review-relay/internal/config"
	"github.com/sevigo/review-relay/internal/logger"
	"github.com/sevigo/review-relay/internal/parser"
)

var (
	githubToken  string
	logLevel     string
	parserConfig string
)

var rootCmd = &cobra.Command{
	Use:   "relay-cli",
	Short: "relay-cli parses LLM review markdown and relays it to GitHub.",
	Long: `A CLI for Review Relay: parse the markdown review written by an LLM into a
structured record, post it as a pull request review, and browse the archive.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub Token")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&parserConfig, "parser-config", "", "Path to a .review-relay.yml parser config")

	bindings := map[string]string{
		"GITHUB_TOKEN":       "github-token",
		"LOG_LEVEL":          "log-level",
		"PARSER_CONFIG_PATH": "parser-config",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			slog.Error("Error binding flag", "error", err)
			os.Exit(1)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// cliEnv is what every subcommand needs: configuration, a logger that keeps
// stdout clean, and a configured parser.
type cliEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	parser *parser.Parser
}

func loadEnv() (*cliEnv, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(cfg.Logging, os.Stderr)

	parserCfg, err := config.LoadParserConfig(cfg.Parser.ConfigPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}
	return &cliEnv{
		cfg:    cfg,
		logger: log,
		parser: parser.New(parser.FromConfig(parserCfg), parser.WithLogger(log)),
	}, nil
}
