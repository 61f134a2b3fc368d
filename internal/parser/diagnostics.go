package parser

import "fmt"

// DiagnosticKind names a recoverable structural anomaly found while parsing.
type DiagnosticKind string

const (
	// A suggestion fence ran to the end of the document without a closing fence.
	KindUnterminatedFence DiagnosticKind = "unterminated_fence"
	// A suggestion fence had no comment to attach to and became an ownerless comment.
	KindOrphanSuggestion DiagnosticKind = "orphan_suggestion"
	// A file header named a file that was already seen earlier in the document.
	KindDuplicateFileHeader DiagnosticKind = "duplicate_file_header"
	// Content inside the files region appeared before any file header.
	KindContentOutsideFile DiagnosticKind = "content_outside_file"
)

// Diagnostic describes one recoverable anomaly. Diagnostics never prevent a
// record from being built.
type Diagnostic struct {
	Line    int            `json:"line"`
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}
