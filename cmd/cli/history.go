package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-relay/internal/db"
	"github.com/sevigo/review-relay/internal/storage"
)

var (
	historyJSON  bool
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows the most recent reviews in the archive",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := loadEnv()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		conn, cleanup, err := db.NewDatabase(&env.cfg.Database, env.logger)
		if err != nil {
			return fmt.Errorf("failed to open review archive: %w", err)
		}
		defer cleanup()

		reviews, err := storage.NewStore(conn.DB).ListReviews(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to retrieve reviews: %w", err)
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			return writeJSON(out, reviews)
		}

		if len(reviews) == 0 {
			infoColor.Fprintln(out, "No reviews have been archived yet.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tPULL REQUEST\tHEAD SHA\tACTION\tCOMMENTS\tCREATED")
		for _, r := range reviews {
			comments := 0
			if r.Record != nil {
				comments = r.Record.CommentCount()
			}
			fmt.Fprintf(w, "%d\t%s#%d\t%s\t%s\t%d\t%s\n",
				r.ID,
				r.RepoFullName, r.PRNumber,
				shortSHA(r.HeadSHA),
				r.ApprovalStatus,
				comments,
				r.CreatedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output reviews as JSON")
	historyCmd.Flags().IntVar(&historyLimit, "limit", storage.DefaultListLimit, "Maximum number of reviews to show")
	rootCmd.AddCommand(historyCmd)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	if sha == "" {
		return "-"
	}
	return sha
}
