package parser

import (
	"strings"

	"github.com/sevigo/review-relay/internal/core"
)

// pendingComment is the comment currently accumulating lines.
type pendingComment struct {
	function   string
	message    strings.Builder
	suggestion string
	attached   bool // a suggestion fence has been attached
	blockEnded bool // the last thing appended was a fence, continue on a new line
	startLine  int
	endLine    int
	indent     int
}

// assembler groups the lines of the files region into per-file,
// per-function comments.
type assembler struct {
	s     *segmenter
	label string

	file     string
	hasFile  bool
	function string

	open       *pendingComment
	afterBlank bool

	stray         []string
	strayReported bool
}

func newAssembler(s *segmenter, label string) *assembler {
	return &assembler{s: s, label: label}
}

func (a *assembler) add(l line) {
	if !a.hasFile && l.kind != lineFileHeader {
		a.addStray(l.raw, l.num)
		return
	}

	switch l.kind {
	case lineBlank, lineRule:
		a.afterBlank = true
		return
	case lineFileHeader:
		a.close()
		if l.text != a.file && a.s.out.hasFile(l.text) {
			a.s.warn(l.num, KindDuplicateFileHeader, "file "+l.text+" was already reviewed, merging comments")
		}
		a.s.out.ensureFile(l.text)
		a.file = l.text
		a.hasFile = true
		a.function = ""
	case lineFunctionHeader:
		a.close()
		a.function = l.text
	case lineMarker:
		a.close()
		a.start(l)
	case lineBullet:
		// Only a line marker starts a comment; other bullets belong to the open one.
		if a.open == nil {
			a.start(l)
			break
		}
		sep := "\n"
		if a.afterBlank {
			sep = "\n\n"
		}
		a.open.message.WriteString(sep + strings.TrimRight(dedent(l.raw, a.open.indent), " \t"))
		a.open.blockEnded = false
	default:
		a.continueText(l)
	}
	a.afterBlank = false
}

func (a *assembler) continueText(l line) {
	switch {
	case a.open == nil:
		a.start(l)
	case !a.afterBlank && a.open.blockEnded:
		a.open.message.WriteString("\n" + l.text)
		a.open.blockEnded = false
	case !a.afterBlank:
		a.open.message.WriteString(" " + l.text)
	default:
		a.open.message.WriteString("\n\n" + l.text)
		a.open.blockEnded = false
	}
}

// start opens a new comment from a marker, or from a bullet or text line
// when no comment is open. A function named on the line itself wins over the
// current sub-header.
func (a *assembler) start(l line) {
	function := l.function
	if function == "" {
		function = a.currentFunction()
	}
	a.open = &pendingComment{
		function:  function,
		startLine: l.startLine,
		endLine:   l.endLine,
		indent:    l.indent,
	}
	a.open.message.WriteString(l.text)
}

func (a *assembler) currentFunction() string {
	if a.function != "" {
		return a.function
	}
	return a.s.generalBucket()
}

// suggestion attaches fence content to the open comment. A comment carries at
// most one suggestion; any other fence becomes a comment of its own with an
// empty message.
func (a *assembler) suggestion(content string, num int) {
	if !a.hasFile {
		a.addStray("```suggestion", num)
		a.stray = append(a.stray, strings.Split(content, "\n")...)
		a.stray = append(a.stray, "```")
		return
	}
	a.afterBlank = false

	if a.open != nil && !a.open.attached {
		a.open.suggestion = content
		a.open.attached = true
		a.open.blockEnded = true
		return
	}

	function := a.currentFunction()
	if a.open != nil {
		function = a.open.function
	}
	a.close()
	a.s.warn(num, KindOrphanSuggestion, "suggestion fence does not follow a comment, keeping it as a comment of its own")
	if content != "" {
		a.s.out.addComment(a.file, function, core.Comment{Suggestion: content})
	}
}

// code appends one line of a non-suggestion fenced block.
func (a *assembler) code(text string, num int) {
	if !a.hasFile {
		if text == "" {
			a.stray = append(a.stray, "")
			return
		}
		a.addStray(text, num)
		return
	}
	if a.open == nil {
		a.open = &pendingComment{function: a.currentFunction(), indent: a.s.codeIndent}
		a.open.message.WriteString(text)
		a.afterBlank = false
		return
	}
	if a.afterBlank {
		a.open.message.WriteString("\n")
	}
	a.open.message.WriteString("\n" + text)
	a.afterBlank = false
}

func (a *assembler) codeEnd() {
	if a.open != nil {
		a.open.blockEnded = true
	}
}

func (a *assembler) addStray(raw string, num int) {
	text := strings.TrimRight(raw, " \t")
	if strings.TrimSpace(text) == "" {
		if len(a.stray) > 0 {
			a.stray = append(a.stray, "")
		}
		return
	}
	if !a.strayReported {
		a.strayReported = true
		a.s.warn(num, KindContentOutsideFile, "content before the first file header is kept as a general section")
	}
	a.stray = append(a.stray, text)
}

// close files the open comment. Comments with neither message nor suggestion
// are dropped.
func (a *assembler) close() {
	if a.open == nil {
		return
	}
	c := core.Comment{
		Message:    strings.TrimSpace(a.open.message.String()),
		Suggestion: a.open.suggestion,
		StartLine:  a.open.startLine,
		EndLine:    a.open.endLine,
	}
	if c.Message != "" || c.Suggestion != "" {
		a.s.out.addComment(a.file, a.open.function, c)
	}
	a.open = nil
}

// finish flushes the region when the next top-level block begins.
func (a *assembler) finish() {
	a.close()
	if content := joinTrimmed(a.stray); content != "" {
		a.s.out.addSection(a.label, content)
	}
}
