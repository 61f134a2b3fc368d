package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/render"
)

var (
	parseJSON   bool
	parseRender bool
	parsePretty bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]...",
	Short: "Parse LLM review markdown into a structured record",
	Long: `Parse one or more markdown reviews and print the result.

Without arguments, or with "-", the review is read from standard input.
Structural anomalies are reported but never make the command fail.

Examples:
  relay-cli parse review.md
  relay-cli parse --json review.md other.md
  cat review.md | relay-cli parse --render --pretty`,
	RunE: runParse,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print the record and diagnostics as JSON")
	parseCmd.Flags().BoolVar(&parseRender, "render", false, "Print the rendered pull request comments")
	parseCmd.Flags().BoolVar(&parsePretty, "pretty", false, "Render markdown output for the terminal")
	rootCmd.AddCommand(parseCmd)
}

type parsedSource struct {
	Source      string              `json:"source"`
	Record      *core.ReviewRecord  `json:"record"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
	Body        string              `json:"body,omitempty"`
	Comments    []string            `json:"file_comments,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	results, err := parseSources(cmd.Context(), env.parser, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		if len(results) == 1 {
			return writeJSON(out, results[0])
		}
		return writeJSON(out, results)
	}

	for _, res := range results {
		if !parseRender {
			printSummary(out, res.Source, res.Record, res.Diagnostics)
			continue
		}
		doc := renderMarkdown(res.Record, env.parser.GeneralBucket())
		if parsePretty {
			if doc, err = prettyMarkdown(doc); err != nil {
				return err
			}
		}
		fmt.Fprint(out, doc)
	}
	return nil
}

// parseSources reads and parses every source concurrently and returns the
// results in argument order.
func parseSources(ctx context.Context, p *parser.Parser, names []string) ([]parsedSource, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]parsedSource, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			markdown, err := readSource(name, os.Stdin)
			if err != nil {
				return err
			}
			record, diags := p.Parse(markdown)
			if diags == nil {
				diags = []parser.Diagnostic{}
			}
			res := parsedSource{Source: sourceLabel(name), Record: record, Diagnostics: diags}
			if parseRender {
				res.Body = render.ReviewBody(record)
				res.Comments = render.FileComments(record, p.GeneralBucket())
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
