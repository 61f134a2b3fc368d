// Package render turns a parsed ReviewRecord back into GitHub-flavoured
// markdown: one main review body and one comment per reviewed file.
package render

import (
	"fmt"
	"strings"

	"github.com/sevigo/review-relay/internal/core"
)

// Title heads every review body.
const Title = "### 🤖 Automated Code Review by Review Relay"

// ReviewBody renders the main pull request comment: the overall impression,
// every general section, the summary and the recommended action.
func ReviewBody(record *core.ReviewRecord) string {
	var sb strings.Builder
	sb.WriteString(Title + "\n\n")
	if record == nil {
		fmt.Fprintf(&sb, "**Recommended Action:** %s %s\n", ApprovalIcon(core.ApprovalUnknown), core.ApprovalUnknown)
		return sb.String()
	}

	if record.OverallImpression != "" {
		fmt.Fprintf(&sb, "**Overall Impression:**\n%s\n\n---\n\n", record.OverallImpression)
	}

	for _, section := range record.GeneralSections {
		fmt.Fprintf(&sb, "### %s\n", section.Title)
		if section.Content != "" {
			sb.WriteString(section.Content + "\n")
		}
		sb.WriteString("\n---\n\n")
	}

	if record.Summary != "" {
		fmt.Fprintf(&sb, "### Summary\n%s\n\n", record.Summary)
	}

	status := record.ApprovalStatus
	if !status.Valid() {
		status = core.ApprovalUnknown
	}
	fmt.Fprintf(&sb, "**Recommended Action:** %s %s\n", ApprovalIcon(status), status)
	return sb.String()
}

// FileComment renders the comment posted for a single file. Comments are
// grouped by function bucket, each followed by its suggestion block.
// generalBucket names the bucket of comments without a function, as the
// parser was configured; empty means core.GeneralFileComments.
func FileComment(file core.FileComments, generalBucket string) string {
	if generalBucket == "" {
		generalBucket = core.GeneralFileComments
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Review for `%s`\n\n", file.Path)

	for _, fn := range file.Functions {
		if fn.Name == generalBucket {
			sb.WriteString("#### 📄 General File Comments\n\n")
		} else {
			fmt.Fprintf(&sb, "#### ⚙️ Function: `%s`\n\n", fn.Name)
		}

		for _, c := range fn.Comments {
			if c.Message != "" {
				sb.WriteString(c.Message + "\n")
			}
			if c.HasSuggestion() {
				fmt.Fprintf(&sb, "```suggestion\n%s\n```\n", c.Suggestion)
			}
			sb.WriteString("\n---\n\n")
		}
	}
	return sb.String()
}

// FileComments renders every file of the record in document order.
func FileComments(record *core.ReviewRecord, generalBucket string) []string {
	if record == nil {
		return []string{}
	}
	out := make([]string, 0, len(record.FileComments))
	for _, f := range record.FileComments {
		out = append(out, FileComment(f, generalBucket))
	}
	return out
}

// ApprovalIcon returns an icon for the given approval status.
func ApprovalIcon(status core.ApprovalStatus) string {
	switch status {
	case core.ApprovalApproved:
		return "✅"
	case core.ApprovalChangesRequested:
		return "🚫"
	case core.ApprovalCommented:
		return "💬"
	default:
		return "📝"
	}
}
