package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/render"
)

// Review events accepted by the GitHub API.
const (
	EventApprove        = "APPROVE"
	EventRequestChanges = "REQUEST_CHANGES"
	EventComment        = "COMMENT"
)

// ReviewEvent maps an approval status to the review event that expresses it.
func ReviewEvent(status core.ApprovalStatus) string {
	switch status {
	case core.ApprovalApproved:
		return EventApprove
	case core.ApprovalChangesRequested:
		return EventRequestChanges
	default:
		return EventComment
	}
}

// PostResult describes what PostRecord submitted.
type PostResult struct {
	Event          string `json:"event"`
	InlineComments int    `json:"inline_comments"`
	BodyFiles      int    `json:"body_files"` // files rendered into the body because they are not on the diff
	Fallback       bool   `json:"fallback"`   // the review was rejected and posted as a plain comment
}

// Poster relays parsed review records to pull requests.
type Poster struct {
	clients    ClientProvider
	logger     *slog.Logger
	maxRetries int
	newBackOff func() backoff.BackOff
	general    string
}

// PosterOption configures a Poster.
type PosterOption func(*Poster)

// WithBackOff replaces the exponential backoff used between attempts.
func WithBackOff(newBackOff func() backoff.BackOff) PosterOption {
	return func(p *Poster) {
		p.newBackOff = newBackOff
	}
}

// WithGeneralBucket sets the name of the bucket the parser puts comments
// without a function in. It defaults to core.GeneralFileComments.
func WithGeneralBucket(name string) PosterOption {
	return func(p *Poster) {
		p.general = name
	}
}

// NewPoster creates a Poster that retries review creation up to maxRetries
// times after the first attempt.
func NewPoster(clients ClientProvider, logger *slog.Logger, maxRetries int, opts ...PosterOption) *Poster {
	if maxRetries < 0 {
		maxRetries = 0
	}
	p := &Poster{
		clients:    clients,
		logger:     logger,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		general:    core.GeneralFileComments,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PostRecord submits record as one pull request review. Each file becomes one
// inline comment anchored on the diff; files that cannot be anchored are
// appended to the review body. When GitHub rejects the review as
// unprocessable, everything is posted as a single issue comment instead.
func (p *Poster) PostRecord(ctx context.Context, target core.PullRequestTarget, record *core.ReviewRecord) (*PostResult, error) {
	if record == nil {
		return nil, fmt.Errorf("review record cannot be nil")
	}
	client, err := p.clients.ClientFor(ctx, target.RepoOwner, target.RepoName)
	if err != nil {
		return nil, err
	}

	commitID := target.HeadSHA
	if commitID == "" {
		pr, err := client.GetPullRequest(ctx, target.RepoOwner, target.RepoName, target.PRNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to get pull request %s#%d: %w", target.FullName(), target.PRNumber, err)
		}
		commitID = pr.GetHead().GetSHA()
	}

	changed, err := client.GetChangedFiles(ctx, target.RepoOwner, target.RepoName, target.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files of %s#%d: %w", target.FullName(), target.PRNumber, err)
	}
	diff := make(map[string]DiffLines, len(changed))
	for _, f := range changed {
		diff[f.Filename] = ParseValidLinesFromPatch(f.Patch, p.logger)
	}

	review := ReviewRequest{CommitID: commitID, Event: ReviewEvent(record.ApprovalStatus)}
	var offDiff []core.FileComments
	for _, file := range record.FileComments {
		if file.CommentCount() == 0 {
			continue
		}
		line := anchorLine(file, diff[file.Path])
		if line == 0 {
			offDiff = append(offDiff, file)
			continue
		}
		review.Comments = append(review.Comments, DraftReviewComment{
			Path: file.Path,
			Line: line,
			Body: render.FileComment(file, p.general),
		})
	}
	review.Body = p.composeBody(record, offDiff)

	result := &PostResult{Event: review.Event, InlineComments: len(review.Comments), BodyFiles: len(offDiff)}
	err = p.retry(ctx, func() error {
		return client.CreateReview(ctx, target.RepoOwner, target.RepoName, target.PRNumber, review)
	})
	if err == nil {
		p.logger.Info("review posted", "repo", target.FullName(), "pr", target.PRNumber,
			"event", review.Event, "inline_comments", result.InlineComments, "body_files", result.BodyFiles)
		return result, nil
	}
	if statusCode(err) != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("failed to create review on %s#%d: %w", target.FullName(), target.PRNumber, err)
	}

	p.logger.Warn("review rejected, posting as a single comment", "repo", target.FullName(), "pr", target.PRNumber, "error", err)
	body := p.composeBody(record, record.FileComments)
	err = p.retry(ctx, func() error {
		return client.CreateComment(ctx, target.RepoOwner, target.RepoName, target.PRNumber, body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post fallback comment on %s#%d: %w", target.FullName(), target.PRNumber, err)
	}
	return &PostResult{Event: EventComment, BodyFiles: len(record.FileComments), Fallback: true}, nil
}

// anchorLine picks the diff line for a file's comment: the end line of the
// file's first comment when it is on the diff, else the first line of the
// diff. Zero means the file cannot be commented inline.
func anchorLine(file core.FileComments, lines DiffLines) int {
	if len(lines) == 0 {
		return 0
	}
	for _, fn := range file.Functions {
		if len(fn.Comments) == 0 {
			continue
		}
		if end := fn.Comments[0].EndLine; lines.Contains(end) {
			return end
		}
		break
	}
	return lines.First()
}

func (p *Poster) composeBody(record *core.ReviewRecord, files []core.FileComments) string {
	body := render.ReviewBody(record)
	if len(files) == 0 {
		return body
	}
	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("\n---\n\n")
	for _, f := range files {
		if f.CommentCount() == 0 {
			continue
		}
		sb.WriteString(render.FileComment(f, p.general))
	}
	return sb.String()
}

// retry runs op with exponential backoff. Client errors other than rate
// limiting are not retried.
func (p *Poster) retry(ctx context.Context, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), uint64(p.maxRetries)), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

func isRetryable(err error) bool {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	code := statusCode(err)
	if code == 0 {
		return true
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// statusCode extracts the HTTP status of a go-github error, or 0.
func statusCode(err error) int {
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode
	}
	return 0
}
