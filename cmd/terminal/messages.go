package main

import (
	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/parser"
)

// Indicates that the review file has been read and parsed.
type reviewLoadedMsg struct {
	source      string
	record      *core.ReviewRecord
	diagnostics []parser.Diagnostic
	err         error
}
