package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-relay/internal/core"
)

var reviewColumns = []string{
	"id", "repo_full_name", "pr_number", "head_sha", "raw_markdown", "record", "approval_status", "created_at",
}

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func TestSaveReview(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	review := &core.Review{
		RepoFullName: "octo/relay",
		PRNumber:     7,
		HeadSHA:      "abc123",
		RawMarkdown:  "Recommended Action: Approve",
		Record:       &core.ReviewRecord{ApprovalStatus: core.ApprovalApproved},
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WithArgs("octo/relay", 7, "abc123", "Recommended Action: Approve", sqlmock.AnyArg(), "Approved").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, created))

	require.NoError(t, store.SaveReview(context.Background(), review))
	assert.Equal(t, int64(42), review.ID)
	assert.Equal(t, created, review.CreatedAt)
	assert.Equal(t, core.ApprovalApproved, review.ApprovalStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReview_Errors(t *testing.T) {
	t.Run("missing record", func(t *testing.T) {
		store, _ := newMockStore(t)
		assert.Error(t, store.SaveReview(context.Background(), &core.Review{RepoFullName: "octo/relay"}))
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).WillReturnError(errors.New("connection reset"))

		err := store.SaveReview(context.Background(), &core.Review{
			RepoFullName: "octo/relay",
			PRNumber:     1,
			Record:       &core.ReviewRecord{},
		})
		assert.ErrorContains(t, err, "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetLatestReviewForPR(t *testing.T) {
	created := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
			WithArgs("octo/relay", 7).
			WillReturnRows(sqlmock.NewRows(reviewColumns).AddRow(
				3, "octo/relay", 7, "abc123", "raw",
				[]byte(`{"overall_impression":"Solid.","file_comments":[],"general_sections":[],"summary":"","approval_status":"Commented"}`),
				"Commented", created,
			))

		review, err := store.GetLatestReviewForPR(context.Background(), "octo/relay", 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), review.ID)
		assert.Equal(t, core.ApprovalCommented, review.ApprovalStatus)
		require.NotNil(t, review.Record)
		assert.Equal(t, "Solid.", review.Record.OverallImpression)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
			WithArgs("octo/relay", 8).
			WillReturnRows(sqlmock.NewRows(reviewColumns))

		_, err := store.GetLatestReviewForPR(context.Background(), "octo/relay", 8)
		assert.True(t, errors.Is(err, ErrReviewNotFound))
	})

	t.Run("corrupt record", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
			WillReturnRows(sqlmock.NewRows(reviewColumns).AddRow(
				4, "octo/relay", 9, "", "raw", []byte(`{not json`), "Unknown", created,
			))

		_, err := store.GetLatestReviewForPR(context.Background(), "octo/relay", 9)
		assert.ErrorContains(t, err, "failed to decode record")
	})
}

func TestListReviews(t *testing.T) {
	created := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "default limit", limit: 0, wantLimit: DefaultListLimit},
		{name: "explicit limit", limit: 5, wantLimit: 5},
		{name: "capped limit", limit: 10000, wantLimit: MaxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
				WithArgs(tt.wantLimit).
				WillReturnRows(sqlmock.NewRows(reviewColumns).
					AddRow(2, "octo/relay", 2, "b", "raw", []byte(`{"approval_status":"Approved"}`), "Approved", created).
					AddRow(1, "octo/relay", 1, "a", "raw", []byte(`{"approval_status":"Unknown"}`), "Unknown", created))

			reviews, err := store.ListReviews(context.Background(), tt.limit)
			require.NoError(t, err)
			require.Len(t, reviews, 2)
			assert.Equal(t, int64(2), reviews[0].ID)
			assert.Equal(t, core.ApprovalApproved, reviews[0].Record.ApprovalStatus)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
