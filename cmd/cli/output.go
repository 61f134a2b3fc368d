package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/render"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

// readSource returns the named file, or standard input for "" and "-".
func readSource(name string, stdin io.Reader) (string, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func sourceLabel(name string) string {
	if name == "" || name == "-" {
		return "<stdin>"
	}
	return name
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func statusColor(status core.ApprovalStatus) *color.Color {
	switch status {
	case core.ApprovalApproved:
		return successColor
	case core.ApprovalChangesRequested:
		return errorColor
	case core.ApprovalCommented:
		return warnColor
	default:
		return dimColor
	}
}

// printSummary writes a short human-readable digest of a parsed record.
func printSummary(w io.Writer, label string, record *core.ReviewRecord, diags []parser.Diagnostic) {
	titleColor.Fprintf(w, "📋 %s\n", label)
	fmt.Fprint(w, "   Recommended Action: ")
	statusColor(record.ApprovalStatus).Fprintf(w, "%s %s\n", render.ApprovalIcon(record.ApprovalStatus), record.ApprovalStatus)
	dimColor.Fprintf(w, "   %d file(s), %d comment(s), %d section(s)\n",
		len(record.FileComments), record.CommentCount(), len(record.GeneralSections))

	for _, f := range record.FileComments {
		boldColor.Fprintf(w, "   %s", f.Path)
		dimColor.Fprintf(w, " (%d)\n", f.CommentCount())
	}
	for _, d := range diags {
		warnColor.Fprintf(w, "   ⚠ %s\n", d)
	}
	fmt.Fprintln(w)
}

// renderMarkdown returns the PR body and every file comment as one document.
func renderMarkdown(record *core.ReviewRecord, generalBucket string) string {
	doc := render.ReviewBody(record)
	for _, c := range render.FileComments(record, generalBucket) {
		doc += "\n" + c
	}
	return doc
}

func prettyMarkdown(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(markdown)
}
