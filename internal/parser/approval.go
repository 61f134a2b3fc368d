package parser

import (
	"strings"

	"github.com/sevigo/review-relay/internal/core"
)

// DefaultApprovalKeywords is the built-in verdict table. Order matters: the
// first keyword contained in the recommended action text wins.
var DefaultApprovalKeywords = []core.ApprovalKeyword{
	{Keyword: "approve", Status: core.ApprovalApproved},
	{Keyword: "request changes", Status: core.ApprovalChangesRequested},
	{Keyword: "comment", Status: core.ApprovalCommented},
}

// matchApproval maps the text after a "Recommended Action:" marker to a
// verdict. "REQUEST_CHANGES" and "request-changes" match "request changes".
func matchApproval(text string, rules []core.ApprovalKeyword) core.ApprovalStatus {
	normalized := normalizeVerdict(text)
	if normalized == "" {
		return core.ApprovalUnknown
	}
	for _, rule := range rules {
		keyword := normalizeVerdict(rule.Keyword)
		if keyword != "" && strings.Contains(normalized, keyword) {
			return rule.Status
		}
	}
	return core.ApprovalUnknown
}

var verdictReplacer = strings.NewReplacer("_", " ", "-", " ")

func normalizeVerdict(s string) string {
	return strings.Join(strings.Fields(verdictReplacer.Replace(strings.ToLower(s))), " ")
}
