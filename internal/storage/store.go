// Package storage archives parsed reviews in postgres.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/review-relay/internal/core"
)

// ErrReviewNotFound is returned when no archived review matches a lookup.
var ErrReviewNotFound = errors.New("review not found")

const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Store defines the interface for all database operations.
//
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks . Store
type Store interface {
	SaveReview(ctx context.Context, review *core.Review) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error)
	ListReviews(ctx context.Context, limit int) ([]core.Review, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// reviewRow is a reviews row with the record still in its JSONB form.
type reviewRow struct {
	core.Review
	RecordJSON []byte `db:"record"`
}

func (r *reviewRow) toReview() (*core.Review, error) {
	review := r.Review
	if len(r.RecordJSON) > 0 {
		var record core.ReviewRecord
		if err := json.Unmarshal(r.RecordJSON, &record); err != nil {
			return nil, fmt.Errorf("failed to decode record of review %d: %w", r.ID, err)
		}
		review.Record = &record
	}
	return &review, nil
}

const selectColumns = `id, repo_full_name, pr_number, head_sha, raw_markdown, record, approval_status, created_at`

// SaveReview inserts a new review and fills in its ID and CreatedAt.
func (s *postgresStore) SaveReview(ctx context.Context, review *core.Review) error {
	if review == nil || review.Record == nil {
		return fmt.Errorf("review and its record are required")
	}
	recordJSON, err := json.Marshal(review.Record)
	if err != nil {
		return fmt.Errorf("failed to encode review record: %w", err)
	}
	status := review.ApprovalStatus
	if status == "" {
		status = review.Record.ApprovalStatus
	}

	query := `
		INSERT INTO reviews (repo_full_name, pr_number, head_sha, raw_markdown, record, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	row := s.db.QueryRowxContext(ctx, query,
		review.RepoFullName, review.PRNumber, review.HeadSHA, review.RawMarkdown, recordJSON, string(status))
	if err := row.Scan(&review.ID, &review.CreatedAt); err != nil {
		return fmt.Errorf("failed to save review for %s#%d: %w", review.RepoFullName, review.PRNumber, err)
	}
	review.ApprovalStatus = status
	return nil
}

// GetLatestReviewForPR retrieves the most recent review for a given pull request.
func (s *postgresStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var row reviewRow
	if err := s.db.GetContext(ctx, &row, query, repoFullName, prNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no review archived for PR %s#%d", ErrReviewNotFound, repoFullName, prNumber)
		}
		return nil, err
	}
	return row.toReview()
}

// ListReviews returns the most recent reviews, newest first.
func (s *postgresStore) ListReviews(ctx context.Context, limit int) ([]core.Review, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT ` + selectColumns + `
		FROM reviews
		ORDER BY created_at DESC
		LIMIT $1`

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviews := make([]core.Review, 0, len(rows))
	for i := range rows {
		review, err := rows[i].toReview()
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, nil
}
