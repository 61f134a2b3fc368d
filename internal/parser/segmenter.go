package parser

import (
	"strings"

	"github.com/sevigo/review-relay/internal/core"
)

// blockKind is the top-level block the segmenter is currently filling.
type blockKind int

const (
	blockPreamble blockKind = iota
	blockOverall
	blockFiles
	blockSection
	blockSummary
)

func (k blockKind) String() string {
	switch k {
	case blockPreamble:
		return "preamble"
	case blockOverall:
		return "overall_impression"
	case blockFiles:
		return "file_comments"
	case blockSection:
		return "section"
	case blockSummary:
		return "summary"
	}
	return "unknown"
}

// Header labels that open the files region, matched as lower-case substrings.
var filesHeaderKeywords = []string{
	"specific observations",
	"per-file",
	"per file",
	"file-by-file",
	"file by file",
	"file-specific",
	"file specific",
}

// headerBlock maps a top-level header label to the block it opens. Labels
// that match no known family open a general section.
func headerBlock(label string) blockKind {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "overall impression"):
		return blockOverall
	case containsAny(lower, filesHeaderKeywords):
		return blockFiles
	case strings.Contains(lower, "summary"):
		return blockSummary
	}
	return blockSection
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// segmenter walks the document once and splits it into top-level blocks.
// All cross-line state of a single parse lives here.
type segmenter struct {
	p      *Parser
	lines  []string
	offset int // lines removed in front of the document by fence unwrapping

	out   *recordBuilder
	diags []Diagnostic

	kind  blockKind
	title string
	text  []string
	asm   *assembler

	inCode     bool
	codeIndent int
	codeStart  int

	verdict        string
	verdictLine    int // index of the marker that decides the verdict, -1 when none
	pendingVerdict bool
}

func newSegmenter(p *Parser, lines []string, offset int) *segmenter {
	return &segmenter{
		p:      p,
		lines:  lines,
		offset: offset,
		out:    newRecordBuilder(),
		kind:   blockPreamble,
	}
}

func (s *segmenter) run() {
	s.verdictLine = lastApprovalLine(s.lines)
	for i := 0; i < len(s.lines); {
		i += s.step(i)
	}
	if s.inCode {
		s.warn(s.codeStart, KindUnterminatedFence, "code fence is never closed")
	}
	s.flush()
	s.out.status = matchApproval(s.verdict, s.p.rules)
}

// step consumes the line at i, or the whole fence starting there, and
// returns the number of lines consumed.
func (s *segmenter) step(i int) int {
	raw := s.lines[i]
	num := i + 1 + s.offset

	if s.inCode {
		s.verbatim(raw, num)
		if isBareFence(raw) {
			s.inCode = false
			if s.kind == blockFiles {
				s.asm.codeEnd()
			}
		}
		return 1
	}

	l := classifyLine(raw, num)
	if s.pendingVerdict && l.kind != lineBlank {
		s.pendingVerdict = false
		if l.kind == lineText || l.kind == lineBullet {
			s.verdict = l.text
			return 1
		}
	}

	if l.kind == lineApproval && i != s.verdictLine {
		l = demoteApproval(l)
	}

	switch l.kind {
	case lineApproval:
		s.verdict = l.text
		s.pendingVerdict = l.text == ""
		return 1
	case lineSuggestionOpen:
		if s.kind == blockFiles {
			content, n, terminated := extractFence(s.lines, i)
			if !terminated {
				s.warn(num, KindUnterminatedFence, "suggestion fence is never closed, captured to end of document")
			}
			s.asm.suggestion(content, num)
			return n
		}
		s.openCode(raw, num)
		return 1
	case lineFenceOpen, lineFenceBare:
		s.openCode(raw, num)
		return 1
	case lineHeader:
		s.enter(l.text, num)
		return 1
	case lineFileHeader, lineFunctionHeader:
		if s.kind == blockFiles {
			s.asm.add(l)
			return 1
		}
		if l.fallback == lineHeader {
			s.enter(l.label, num)
			return 1
		}
		l.kind = l.fallback
	}

	s.content(l)
	return 1
}

// lastApprovalLine returns the index of the last approval marker outside a
// fenced block, or -1.
func lastApprovalLine(lines []string) int {
	last := -1
	inFence := false
	for i, raw := range lines {
		if inFence {
			inFence = !isBareFence(raw)
			continue
		}
		switch classifyLine(raw, i+1).kind {
		case lineSuggestionOpen, lineFenceOpen, lineFenceBare:
			inFence = true
		case lineApproval:
			last = i
		}
	}
	return last
}

func (s *segmenter) openCode(raw string, num int) {
	s.inCode = true
	s.codeIndent = indentWidth(raw)
	s.codeStart = num
	s.verbatim(raw, num)
}

// verbatim keeps a line of a fenced code block unchanged.
func (s *segmenter) verbatim(raw string, num int) {
	if s.kind == blockFiles {
		s.asm.code(strings.TrimRight(dedent(raw, s.codeIndent), " \t"), num)
		return
	}
	s.text = append(s.text, strings.TrimRight(raw, " \t"))
}

func (s *segmenter) content(l line) {
	if s.kind == blockFiles {
		s.asm.add(l)
		return
	}
	s.text = append(s.text, strings.TrimRight(l.raw, " \t"))
}

// enter closes the open block and opens the one named by label.
func (s *segmenter) enter(label string, num int) {
	s.flush()
	s.kind = headerBlock(label)
	s.title = label
	if s.kind == blockFiles {
		s.asm = newAssembler(s, label)
	}
	s.p.logger.Debug("entering review block", "line", num, "block", s.kind.String(), "label", label)
}

func (s *segmenter) flush() {
	content := joinTrimmed(s.text)
	switch s.kind {
	case blockPreamble:
		s.out.preamble = content
	case blockOverall:
		s.out.overall = appendNonEmpty(s.out.overall, content)
	case blockFiles:
		s.asm.finish()
	case blockSection:
		s.out.addSection(s.title, content)
	case blockSummary:
		s.out.summary = appendNonEmpty(s.out.summary, content)
	}
	s.text = nil
	s.asm = nil
}

func (s *segmenter) warn(num int, kind DiagnosticKind, msg string) {
	s.diags = append(s.diags, Diagnostic{Line: num, Kind: kind, Message: msg})
	s.p.logger.Warn("review markdown anomaly", "line", num, "kind", string(kind), "message", msg)
}

// generalBucket is the function bucket for comments with no named function.
func (s *segmenter) generalBucket() string {
	if s.p.general != "" {
		return s.p.general
	}
	return core.GeneralFileComments
}
