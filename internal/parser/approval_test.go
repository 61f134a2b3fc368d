package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/review-relay/internal/core"
)

func TestMatchApproval(t *testing.T) {
	tests := []struct {
		text string
		want core.ApprovalStatus
	}{
		{"Approve", core.ApprovalApproved},
		{"APPROVED", core.ApprovalApproved},
		{"Request Changes", core.ApprovalChangesRequested},
		{"REQUEST_CHANGES", core.ApprovalChangesRequested},
		{"request-changes please", core.ApprovalChangesRequested},
		{"Request   changes", core.ApprovalChangesRequested},
		{"Comment", core.ApprovalCommented},
		{"Comment only, no blocking issues", core.ApprovalCommented},
		{"Merge", core.ApprovalUnknown},
		{"", core.ApprovalUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, matchApproval(tt.text, DefaultApprovalKeywords))
		})
	}
}

func TestMatchApproval_FirstMatchWins(t *testing.T) {
	rules := []core.ApprovalKeyword{
		{Keyword: "ship", Status: core.ApprovalApproved},
		{Keyword: "ship with changes", Status: core.ApprovalChangesRequested},
	}
	assert.Equal(t, core.ApprovalApproved, matchApproval("Ship with changes", rules))

	rules = append(DefaultApprovalKeywords[:0:0], DefaultApprovalKeywords...)
	rules = append(rules, core.ApprovalKeyword{Keyword: "needs_work", Status: core.ApprovalChangesRequested})
	assert.Equal(t, core.ApprovalChangesRequested, matchApproval("Needs work", rules))
}
