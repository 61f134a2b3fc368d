package jobs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/review-relay/internal/core"
)

func TestValidateRequest(t *testing.T) {
	valid := func() *core.RelayRequest {
		return &core.RelayRequest{
			Target:   core.PullRequestTarget{RepoOwner: "octo", RepoName: "relay", PRNumber: 1},
			Markdown: "**Summary:**\nFine.",
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *core.RelayRequest) *core.RelayRequest
		wantErr string
	}{
		{name: "valid", mutate: func(r *core.RelayRequest) *core.RelayRequest { return r }},
		{name: "nil request", mutate: func(*core.RelayRequest) *core.RelayRequest { return nil }, wantErr: "cannot be nil"},
		{name: "missing owner", mutate: func(r *core.RelayRequest) *core.RelayRequest { r.Target.RepoOwner = " "; return r }, wantErr: "owner"},
		{name: "missing repo", mutate: func(r *core.RelayRequest) *core.RelayRequest { r.Target.RepoName = ""; return r }, wantErr: "name"},
		{name: "zero PR", mutate: func(r *core.RelayRequest) *core.RelayRequest { r.Target.PRNumber = 0; return r }, wantErr: "positive"},
		{name: "blank markdown", mutate: func(r *core.RelayRequest) *core.RelayRequest { r.Markdown = "\n\t"; return r }, wantErr: "markdown"},
		{
			name: "oversized markdown",
			mutate: func(r *core.RelayRequest) *core.RelayRequest {
				r.Markdown = strings.Repeat("a", MaxMarkdownBytes+1)
				return r
			},
			wantErr: "limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(context.Background(), tt.mutate(valid()))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
