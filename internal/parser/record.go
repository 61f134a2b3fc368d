package parser

import (
	"strings"

	"github.com/sevigo/review-relay/internal/core"
)

// recordBuilder accumulates the pieces of a record in document order.
type recordBuilder struct {
	overall  []string
	preamble string
	summary  []string
	status   core.ApprovalStatus

	files     []core.FileComments
	fileIndex map[string]int
	funcIndex []map[string]int
	sections  []core.Section
}

func newRecordBuilder() *recordBuilder {
	return &recordBuilder{
		status:    core.ApprovalUnknown,
		fileIndex: make(map[string]int),
	}
}

// ensureFile returns the index of path, creating an empty entry on first sight.
func (b *recordBuilder) ensureFile(path string) int {
	if i, ok := b.fileIndex[path]; ok {
		return i
	}
	b.files = append(b.files, core.FileComments{Path: path, Functions: []core.FunctionComments{}})
	b.funcIndex = append(b.funcIndex, make(map[string]int))
	b.fileIndex[path] = len(b.files) - 1
	return len(b.files) - 1
}

func (b *recordBuilder) hasFile(path string) bool {
	_, ok := b.fileIndex[path]
	return ok
}

// addComment files c under path and function, keeping first-seen order.
func (b *recordBuilder) addComment(path, function string, c core.Comment) {
	fi := b.ensureFile(path)
	file := &b.files[fi]
	idx, ok := b.funcIndex[fi][function]
	if !ok {
		file.Functions = append(file.Functions, core.FunctionComments{Name: function})
		idx = len(file.Functions) - 1
		b.funcIndex[fi][function] = idx
	}
	file.Functions[idx].Comments = append(file.Functions[idx].Comments, c)
}

func (b *recordBuilder) addSection(title, content string) {
	b.sections = append(b.sections, core.Section{Title: title, Content: content})
}

func appendNonEmpty(parts []string, s string) []string {
	if s == "" {
		return parts
	}
	return append(parts, s)
}

// build returns the finished record. Slices are never nil so the JSON
// form always carries arrays.
func (b *recordBuilder) build() *core.ReviewRecord {
	overall := strings.Join(b.overall, "\n\n")
	if overall == "" {
		overall = b.preamble
	}
	files := b.files
	if files == nil {
		files = []core.FileComments{}
	}
	sections := b.sections
	if sections == nil {
		sections = []core.Section{}
	}
	return &core.ReviewRecord{
		OverallImpression: overall,
		FileComments:      files,
		GeneralSections:   sections,
		Summary:           strings.Join(b.summary, "\n\n"),
		ApprovalStatus:    b.status,
	}
}
