package github_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-relay/internal/config"
	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/github"
	"github.com/sevigo/review-relay/internal/logger"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/mocks"
)

// Covers new-side lines 10 to 13.
const samplePatch = "@@ -1,3 +10,4 @@\n context\n+added\n context\n-removed\n context"

var target = core.PullRequestTarget{RepoOwner: "octo", RepoName: "relay", PRNumber: 7, HeadSHA: "abc123"}

func apiError(code int) error {
	return &gh.ErrorResponse{
		Response: &http.Response{
			StatusCode: code,
			Request:    &http.Request{Method: http.MethodPost, URL: &url.URL{Scheme: "https", Host: "api.github.com", Path: "/repos/octo/relay"}},
		},
		Message: http.StatusText(code),
	}
}

func sampleRecord(status core.ApprovalStatus) *core.ReviewRecord {
	return &core.ReviewRecord{
		OverallImpression: "Solid change.",
		ApprovalStatus:    status,
		FileComments: []core.FileComments{
			{Path: "main.go", Functions: []core.FunctionComments{{
				Name:     core.GeneralFileComments,
				Comments: []core.Comment{{Message: "Check the error.", StartLine: 11, EndLine: 11}},
			}}},
			{Path: "docs/README.md", Functions: []core.FunctionComments{{
				Name:     core.GeneralFileComments,
				Comments: []core.Comment{{Message: "Typo in heading."}},
			}}},
		},
	}
}

func newPoster(client github.Client, maxRetries int) *github.Poster {
	return github.NewPoster(github.NewStaticProvider(client), logger.Discard(), maxRetries,
		github.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }))
}

func TestReviewEvent(t *testing.T) {
	tests := []struct {
		status core.ApprovalStatus
		want   string
	}{
		{core.ApprovalApproved, github.EventApprove},
		{core.ApprovalChangesRequested, github.EventRequestChanges},
		{core.ApprovalCommented, github.EventComment},
		{core.ApprovalUnknown, github.EventComment},
		{"", github.EventComment},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, github.ReviewEvent(tt.status))
		})
	}
}

func TestPoster_PostRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).
		Return([]github.ChangedFile{{Filename: "main.go", Patch: samplePatch}}, nil)

	var posted github.ReviewRequest
	client.EXPECT().CreateReview(gomock.Any(), "octo", "relay", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, review github.ReviewRequest) error {
			posted = review
			return nil
		})

	result, err := newPoster(client, 3).PostRecord(context.Background(), target, sampleRecord(core.ApprovalChangesRequested))
	require.NoError(t, err)

	assert.Equal(t, &github.PostResult{Event: github.EventRequestChanges, InlineComments: 1, BodyFiles: 1}, result)
	assert.Equal(t, "abc123", posted.CommitID)
	assert.Equal(t, github.EventRequestChanges, posted.Event)
	require.Len(t, posted.Comments, 1)
	assert.Equal(t, "main.go", posted.Comments[0].Path)
	assert.Equal(t, 11, posted.Comments[0].Line)
	assert.Contains(t, posted.Comments[0].Body, "Check the error.")

	assert.Contains(t, posted.Body, "Solid change.")
	assert.Contains(t, posted.Body, "### Review for `docs/README.md`")
	assert.NotContains(t, posted.Body, "Check the error.")
}

func TestPoster_PostRecord_RenamedGeneralBucket(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	p := parser.New(parser.WithGeneralBucket("General"))
	record, _ := p.Parse(strings.Join([]string{
		"**Specific Observations:**",
		"**main.go:**",
		"* **Line 11:** note",
		"**docs/README.md:**",
		"* **Line 1:** typo",
	}, "\n"))

	client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).
		Return([]github.ChangedFile{{Filename: "main.go", Patch: samplePatch}}, nil)

	var posted github.ReviewRequest
	client.EXPECT().CreateReview(gomock.Any(), "octo", "relay", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, review github.ReviewRequest) error {
			posted = review
			return nil
		})

	poster := github.NewPoster(github.NewStaticProvider(client), logger.Discard(), 0,
		github.WithGeneralBucket(p.GeneralBucket()))
	_, err := poster.PostRecord(context.Background(), target, record)
	require.NoError(t, err)

	require.Len(t, posted.Comments, 1)
	assert.Contains(t, posted.Comments[0].Body, "#### 📄 General File Comments")
	assert.NotContains(t, posted.Comments[0].Body, "Function: `General`")
	assert.Contains(t, posted.Body, "#### 📄 General File Comments")
	assert.NotContains(t, posted.Body, "Function: `General`")
}

func TestPoster_PostRecord_AnchorsOnFirstDiffLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	record := sampleRecord(core.ApprovalApproved)
	record.FileComments[0].Functions[0].Comments[0].EndLine = 200

	client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).
		Return([]github.ChangedFile{{Filename: "main.go", Patch: samplePatch}}, nil)
	client.EXPECT().CreateReview(gomock.Any(), "octo", "relay", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, review github.ReviewRequest) error {
			require.Len(t, review.Comments, 1)
			assert.Equal(t, 10, review.Comments[0].Line)
			assert.Equal(t, github.EventApprove, review.Event)
			return nil
		})

	_, err := newPoster(client, 0).PostRecord(context.Background(), target, record)
	require.NoError(t, err)
}

func TestPoster_PostRecord_ResolvesHeadSHA(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	noSHA := target
	noSHA.HeadSHA = ""

	client.EXPECT().GetPullRequest(gomock.Any(), "octo", "relay", 7).
		Return(&gh.PullRequest{Head: &gh.PullRequestBranch{SHA: gh.Ptr("feedbeef")}}, nil)
	client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).Return(nil, nil)
	client.EXPECT().CreateReview(gomock.Any(), "octo", "relay", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, review github.ReviewRequest) error {
			assert.Equal(t, "feedbeef", review.CommitID)
			assert.Empty(t, review.Comments)
			return nil
		})

	result, err := newPoster(client, 0).PostRecord(context.Background(), noSHA, sampleRecord(core.ApprovalCommented))
	require.NoError(t, err)
	assert.Equal(t, 2, result.BodyFiles)
}

func TestPoster_PostRecord_Retries(t *testing.T) {
	testCases := []struct {
		name       string
		maxRetries int
		mockSetup  func(c *mocks.MockClient)
		wantErr    bool
		wantCode   int
	}{
		{
			name:       "server error is retried",
			maxRetries: 3,
			mockSetup: func(c *mocks.MockClient) {
				c.EXPECT().CreateReview(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(apiError(http.StatusBadGateway))
				c.EXPECT().CreateReview(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:       "retries are bounded",
			maxRetries: 2,
			mockSetup: func(c *mocks.MockClient) {
				c.EXPECT().CreateReview(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(apiError(http.StatusInternalServerError)).Times(3)
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
		{
			name:       "client error is not retried",
			maxRetries: 3,
			mockSetup: func(c *mocks.MockClient) {
				c.EXPECT().CreateReview(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(apiError(http.StatusNotFound)).Times(1)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockClient(ctrl)
			client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).Return(nil, nil)
			tc.mockSetup(client)

			_, err := newPoster(client, tc.maxRetries).PostRecord(context.Background(), target, sampleRecord(core.ApprovalCommented))
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var respErr *gh.ErrorResponse
			require.True(t, errors.As(err, &respErr))
			assert.Equal(t, tc.wantCode, respErr.Response.StatusCode)
		})
	}
}

func TestPoster_PostRecord_FallsBackToComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).
		Return([]github.ChangedFile{{Filename: "main.go", Patch: samplePatch}}, nil)
	client.EXPECT().CreateReview(gomock.Any(), "octo", "relay", 7, gomock.Any()).
		Return(apiError(http.StatusUnprocessableEntity)).Times(1)
	client.EXPECT().CreateComment(gomock.Any(), "octo", "relay", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string) error {
			assert.Contains(t, body, "### Review for `main.go`")
			assert.Contains(t, body, "### Review for `docs/README.md`")
			assert.Contains(t, body, "**Recommended Action:**")
			return nil
		})

	result, err := newPoster(client, 3).PostRecord(context.Background(), target, sampleRecord(core.ApprovalChangesRequested))
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, github.EventComment, result.Event)
	assert.Equal(t, 2, result.BodyFiles)
}

func TestPoster_PostRecord_Failures(t *testing.T) {
	t.Run("nil record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, err := newPoster(mocks.NewMockClient(ctrl), 0).PostRecord(context.Background(), target, nil)
		require.Error(t, err)
	})

	t.Run("changed files lookup fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)
		client.EXPECT().GetChangedFiles(gomock.Any(), "octo", "relay", 7).Return(nil, errors.New("boom"))

		_, err := newPoster(client, 0).PostRecord(context.Background(), target, sampleRecord(core.ApprovalApproved))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "octo/relay#7")
	})

	t.Run("no credentials", func(t *testing.T) {
		provider, err := github.NewClientProvider(context.Background(), &config.Config{}, logger.Discard())
		require.NoError(t, err)

		poster := github.NewPoster(provider, logger.Discard(), 0)
		_, err = poster.PostRecord(context.Background(), target, sampleRecord(core.ApprovalApproved))
		assert.ErrorIs(t, err, github.ErrNoCredentials)
	})
}
