package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/render"
)

// block is one tab of the browser: a title and the markdown shown for it.
type block struct {
	title    string
	markdown string
}

func loadReviewCmd(p *parser.Parser, source string) tea.Cmd {
	return func() tea.Msg {
		var (
			data []byte
			err  error
		)
		if source == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(source)
		}
		if err != nil {
			return reviewLoadedMsg{source: source, err: fmt.Errorf("failed to read %s: %w", source, err)}
		}

		record, diags := p.Parse(string(data))
		return reviewLoadedMsg{source: source, record: record, diagnostics: diags}
	}
}

// buildBlocks lays a record out as tabs: Overall, every file, every general
// section, Summary and, when there are any, the parser diagnostics.
func buildBlocks(record *core.ReviewRecord, diags []parser.Diagnostic, generalBucket string) []block {
	var blocks []block
	if record.OverallImpression != "" {
		blocks = append(blocks, block{title: "Overall", markdown: "## Overall Impression\n\n" + record.OverallImpression})
	}
	for _, f := range record.FileComments {
		blocks = append(blocks, block{title: f.Path, markdown: render.FileComment(f, generalBucket)})
	}
	for _, s := range record.GeneralSections {
		blocks = append(blocks, block{title: s.Title, markdown: "## " + s.Title + "\n\n" + s.Content})
	}

	summary := "## Summary\n\n"
	if record.Summary != "" {
		summary += record.Summary + "\n\n"
	}
	summary += fmt.Sprintf("**Recommended Action:** %s %s", render.ApprovalIcon(record.ApprovalStatus), record.ApprovalStatus)
	blocks = append(blocks, block{title: "Summary", markdown: summary})

	if len(diags) > 0 {
		var sb strings.Builder
		sb.WriteString("## Diagnostics\n\n")
		for _, d := range diags {
			fmt.Fprintf(&sb, "- line %d `%s`: %s\n", d.Line, d.Kind, d.Message)
		}
		blocks = append(blocks, block{title: "Diagnostics", markdown: sb.String()})
	}
	return blocks
}
