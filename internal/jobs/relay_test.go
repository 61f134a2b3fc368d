package jobs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/github"
	"github.com/sevigo/review-relay/internal/jobs"
	"github.com/sevigo/review-relay/internal/logger"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/mocks"
)

const reviewMarkdown = `**Overall Impression:**
Small and focused.

**Specific Observations:**
**main.go:**
* **Line 11:** Check the error.

**Summary:**
One nit.

**Recommended Action:** Request Changes`

func relayRequest(dryRun bool) *core.RelayRequest {
	return &core.RelayRequest{
		ID:       "job-1",
		Target:   core.PullRequestTarget{RepoOwner: "octo", RepoName: "relay", PRNumber: 7, HeadSHA: "abc123"},
		Markdown: reviewMarkdown,
		DryRun:   dryRun,
	}
}

func newRelayJob(client github.Client, store *mocks.MockStore) *jobs.RelayJob {
	poster := github.NewPoster(github.NewStaticProvider(client), logger.Discard(), 1,
		github.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }))
	if store == nil {
		return jobs.NewRelayJob(parser.New(), nil, poster, logger.Discard())
	}
	return jobs.NewRelayJob(parser.New(), store, poster, logger.Discard())
}

func TestRelayJob_Relay(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := mocks.NewMockStore(ctrl)

	store.EXPECT().SaveReview(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, review *core.Review) error {
		assert.Equal(t, "octo/relay", review.RepoFullName)
		assert.Equal(t, 7, review.PRNumber)
		assert.Equal(t, "abc123", review.HeadSHA)
		assert.Equal(t, reviewMarkdown, review.RawMarkdown)
		assert.Equal(t, core.ApprovalChangesRequested, review.ApprovalStatus)
		require.NotNil(t, review.Record)
		review.ID = 42
		return nil
	})
	client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).
		Return([]github.ChangedFile{{Filename: "main.go", Patch: "@@ -9,3 +9,4 @@\n a\n b\n+c\n d"}}, nil)
	client.EXPECT().CreateReview(gomock.Any(), "octo", "relay", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, review github.ReviewRequest) error {
			assert.Equal(t, github.EventRequestChanges, review.Event)
			require.Len(t, review.Comments, 1)
			assert.Equal(t, 11, review.Comments[0].Line)
			return nil
		})

	outcome, err := newRelayJob(client, store).Relay(context.Background(), relayRequest(false))
	require.NoError(t, err)

	assert.Equal(t, int64(42), outcome.ReviewID)
	assert.Empty(t, outcome.Diagnostics)
	assert.Equal(t, "Small and focused.", outcome.Record.OverallImpression)
	require.NotNil(t, outcome.Post)
	assert.Equal(t, 1, outcome.Post.InlineComments)
}

func TestRelayJob_Relay_DryRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().SaveReview(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := newRelayJob(client, store).Relay(context.Background(), relayRequest(true))
	require.NoError(t, err)
	assert.Nil(t, outcome.Post)
	assert.Equal(t, core.ApprovalChangesRequested, outcome.Record.ApprovalStatus)
}

func TestRelayJob_Relay_WithoutStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	outcome, err := newRelayJob(client, nil).Relay(context.Background(), relayRequest(true))
	require.NoError(t, err)
	assert.Zero(t, outcome.ReviewID)
}

func TestRelayJob_Relay_ArchiveFailureStillPosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := mocks.NewMockStore(ctrl)

	store.EXPECT().SaveReview(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	client.EXPECT().GetChangedFiles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	client.EXPECT().CreateReview(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := newRelayJob(client, store).Relay(context.Background(), relayRequest(false))
	require.NoError(t, err)
	assert.Zero(t, outcome.ReviewID)
	assert.NotNil(t, outcome.Post)
}

func TestRelayJob_Run_Errors(t *testing.T) {
	t.Run("invalid request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		req := relayRequest(false)
		req.Markdown = ""

		err := newRelayJob(mocks.NewMockClient(ctrl), nil).Run(context.Background(), req)
		assert.ErrorContains(t, err, "input validation failed")
	})

	t.Run("post failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().GetChangedFiles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		err := newRelayJob(client, nil).Run(context.Background(), relayRequest(false))
		assert.ErrorContains(t, err, "failed to post review")
	})
}
