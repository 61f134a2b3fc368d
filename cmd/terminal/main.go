package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/review-relay/internal/config"
	"github.com/sevigo/review-relay/internal/logger"
	"github.com/sevigo/review-relay/internal/parser"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse command-line flags
	themeFlag := flag.String("theme", "", "UI theme (cyan, matrix, amber, cyberpunk, ice, dracula, fire)")
	listThemes := flag.Bool("list-themes", false, "List all available themes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <review.md|->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// If user wants to list themes
	if *listThemes {
		fmt.Println("Available themes:")
		for _, theme := range ListThemes() {
			fmt.Printf("  - %s\n", theme)
		}
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	source := flag.Arg(0)

	selectedTheme := *themeFlag
	if selectedTheme == "" {
		selectedTheme = os.Getenv("REVIEW_RELAY_THEME")
	}
	if selectedTheme == "" {
		selectedTheme = string(ThemeCyan)
	}

	theme := ThemeName(selectedTheme)
	validTheme := false
	for _, t := range ListThemes() {
		if t == theme {
			validTheme = true
			break
		}
	}
	if !validTheme {
		fmt.Printf("Invalid theme '%s'. Use --list-themes to see available options.\n", theme)
		os.Exit(1)
	}

	// The alt screen owns stdout, so logs go to the log file.
	logCfg := cfg.Logging
	logCfg.Output = "file"
	log := logger.NewLogger(logCfg, nil)
	slog.SetDefault(log)

	parserCfg, err := config.LoadParserConfig(cfg.Parser.ConfigPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		fmt.Printf("Failed to load parser configuration: %v\n", err)
		os.Exit(1)
	}
	p := parser.New(parser.FromConfig(parserCfg), parser.WithLogger(log))

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if source == "-" {
		// Keys come from the terminal while the review is read from the pipe.
		opts = append(opts, tea.WithInputTTY())
	}

	log.Info("Review Relay terminal starting up", "source", source, "theme", theme)
	prog := tea.NewProgram(initialModel(theme, p, source), opts...)
	if _, err := prog.Run(); err != nil {
		log.Error("error running program", "error", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Info("Review Relay terminal shut down successfully")
}
