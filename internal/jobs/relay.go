package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/github"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/storage"
)

// Outcome is what one relay produced.
type Outcome struct {
	Record      *core.ReviewRecord  `json:"record"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
	ReviewID    int64               `json:"review_id,omitempty"` // archive row, 0 when not archived
	Post        *github.PostResult  `json:"post,omitempty"`      // nil for dry runs
}

// RelayJob parses a markdown review, archives it and posts it to its pull request.
type RelayJob struct {
	parser *parser.Parser
	store  storage.Store
	poster *github.Poster
	logger *slog.Logger
}

// NewRelayJob creates a RelayJob. store may be nil, in which case reviews are
// not archived.
func NewRelayJob(p *parser.Parser, store storage.Store, poster *github.Poster, logger *slog.Logger) *RelayJob {
	if p == nil {
		panic("parser cannot be nil")
	}
	if poster == nil {
		panic("poster cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &RelayJob{parser: p, store: store, poster: poster, logger: logger}
}

// Run executes the relay for one request. It satisfies core.Job.
func (j *RelayJob) Run(ctx context.Context, req *core.RelayRequest) error {
	_, err := j.Relay(ctx, req)
	return err
}

// Relay parses, archives and posts req. A failed archive write is logged and
// does not stop the review from being posted.
func (j *RelayJob) Relay(ctx context.Context, req *core.RelayRequest) (*Outcome, error) {
	if err := ValidateRequest(ctx, req); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	target := req.Target
	j.logger.Info("starting relay job", "job_id", req.ID, "repo", target.FullName(), "pr", target.PRNumber, "dry_run", req.DryRun)

	record, diags := j.parser.Parse(req.Markdown)
	outcome := &Outcome{Record: record, Diagnostics: diags}
	if len(diags) > 0 {
		j.logger.Warn("review parsed with anomalies", "job_id", req.ID, "diagnostics", len(diags))
	}

	if j.store != nil {
		review := &core.Review{
			RepoFullName:   target.FullName(),
			PRNumber:       target.PRNumber,
			HeadSHA:        target.HeadSHA,
			RawMarkdown:    req.Markdown,
			Record:         record,
			ApprovalStatus: record.ApprovalStatus,
		}
		if err := j.store.SaveReview(ctx, review); err != nil {
			j.logger.Error("failed to archive review", "job_id", req.ID, "repo", target.FullName(), "pr", target.PRNumber, "error", err)
		} else {
			outcome.ReviewID = review.ID
		}
	}

	if req.DryRun {
		j.logger.Info("dry run, review not posted", "job_id", req.ID, "approval_status", string(record.ApprovalStatus))
		return outcome, nil
	}

	result, err := j.poster.PostRecord(ctx, target, record)
	if err != nil {
		return outcome, fmt.Errorf("failed to post review: %w", err)
	}
	outcome.Post = result

	j.logger.Info("relay job completed successfully", "job_id", req.ID, "repo", target.FullName(), "pr", target.PRNumber)
	return outcome, nil
}
