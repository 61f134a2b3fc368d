package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/db"
	"github.com/sevigo/review-relay/internal/github"
	"github.com/sevigo/review-relay/internal/gitutil"
	"github.com/sevigo/review-relay/internal/jobs"
	"github.com/sevigo/review-relay/internal/storage"
)

var (
	postDryRun  bool
	postArchive bool
	postHeadSHA string
	postJSON    bool
)

var postCmd = &cobra.Command{
	Use:   "post [pr-url] [file|-]",
	Short: "Parse a markdown review and post it to a GitHub Pull Request",
	Long: `Parse a markdown review and post it as a pull request review.

The review event follows the recommended action: Approve, Request Changes or
Comment. Each file becomes one inline comment on the diff.

Examples:
  relay-cli post https://github.com/owner/repo/pull/123 review.md
  relay-cli post --dry-run owner/repo#123 < review.md
  relay-cli post --archive owner/repo#123 review.md`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPost,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Parse and report without posting")
	postCmd.Flags().BoolVar(&postArchive, "archive", false, "Store the review in the postgres archive")
	postCmd.Flags().StringVar(&postHeadSHA, "head-sha", "", "Commit to review, defaults to the PR head")
	postCmd.Flags().BoolVar(&postJSON, "json", false, "Print the outcome as JSON")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := loadEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	target, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}
	target.HeadSHA = postHeadSHA

	source := "-"
	if len(args) == 2 {
		source = args[1]
	}
	markdown, err := readSource(source, os.Stdin)
	if err != nil {
		return err
	}

	if !env.cfg.GitHub.HasCredentials() && !postDryRun {
		return fmt.Errorf("no GitHub credentials configured\n\nTip: pass --github-token or set GITHUB_TOKEN, or use --dry-run")
	}
	clients, err := github.NewClientProvider(ctx, env.cfg, env.logger)
	if err != nil {
		return fmt.Errorf("failed to set up GitHub client: %w", err)
	}

	var store storage.Store
	if postArchive {
		conn, cleanup, err := db.NewDatabase(&env.cfg.Database, env.logger)
		if err != nil {
			return fmt.Errorf("failed to open review archive: %w", err)
		}
		defer cleanup()
		store = storage.NewStore(conn.DB)
	}

	poster := github.NewPoster(clients, env.logger, env.cfg.GitHub.PostMaxRetries,
		github.WithGeneralBucket(env.parser.GeneralBucket()))
	job := jobs.NewRelayJob(env.parser, store, poster, env.logger)

	outcome, err := job.Relay(ctx, &core.RelayRequest{Target: target, Markdown: markdown, DryRun: postDryRun})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if postJSON {
		return writeJSON(out, outcome)
	}

	printSummary(out, fmt.Sprintf("%s#%d", target.FullName(), target.PRNumber), outcome.Record, outcome.Diagnostics)
	switch {
	case outcome.Post == nil:
		warnColor.Fprintln(out, "Dry run: nothing was posted.")
	case outcome.Post.Fallback:
		warnColor.Fprintln(out, "GitHub rejected the review, posted it as a single comment instead.")
	default:
		successColor.Fprintf(out, "✅ Posted %s review with %d inline comment(s)", outcome.Post.Event, outcome.Post.InlineComments)
		if outcome.Post.BodyFiles > 0 {
			successColor.Fprintf(out, ", %d file(s) in the review body", outcome.Post.BodyFiles)
		}
		fmt.Fprintln(out)
	}
	if outcome.ReviewID != 0 {
		dimColor.Fprintf(out, "Archived as review %d\n", outcome.ReviewID)
	}
	return nil
}
