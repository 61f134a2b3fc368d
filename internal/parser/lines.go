package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// lineKind is the structural role of a single line of review markdown.
type lineKind int

const (
	lineBlank lineKind = iota
	lineSuggestionOpen
	lineFenceOpen // fence with an info string other than "suggestion"
	lineFenceBare // bare ``` that either closes or opens an untagged block
	lineApproval
	lineRule
	lineFunctionHeader
	lineFileHeader
	lineHeader
	lineMarker
	lineBullet
	lineText
)

var lineKindNames = map[lineKind]string{
	lineBlank:          "blank",
	lineSuggestionOpen: "suggestion_open",
	lineFenceOpen:      "fence_open",
	lineFenceBare:      "fence_bare",
	lineApproval:       "approval",
	lineRule:           "rule",
	lineFunctionHeader: "function_header",
	lineFileHeader:     "file_header",
	lineHeader:         "header",
	lineMarker:         "marker",
	lineBullet:         "bullet",
	lineText:           "text",
}

func (k lineKind) String() string {
	if name, ok := lineKindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

var (
	// Matches "- item", "* item" and "+ item" with any indentation.
	bulletRegex = regexp.MustCompile(`^\s*[*+-]\s+(.*)$`)
	// Matches "# Heading" through "###### Heading", dropping closing hashes.
	headingRegex = regexp.MustCompile(`^#{1,6}\s+(.*?)\s*#*$`)
	// Matches a line fully wrapped in bold markers, colon inside or outside.
	boldHeaderRegex = regexp.MustCompile(`^\*\*([^*]+?)\*\*\s*(:?)$`)
	// Matches "Line 12", "**Lines 3-7", "Line 5 – 9" at the start of a bullet body.
	markerRegex = regexp.MustCompile(`(?i)^[*_]*\s*lines?\s+(\d+)(?:\s*[-–]\s*(\d+))?`)
	// Matches "Recommended Action: ..." with optional heading, bullet or bold decoration.
	approvalRegex = regexp.MustCompile(`(?i)^[\s#>*_-]*recommended\s+action\s*[*_]*\s*:\s*(.*)$`)
	// Matches "Function: `name`" inside a comment bullet.
	functionFragmentRegex = regexp.MustCompile("(?i)\\b(?:function|method)\\s*:\\s*`([^`]+)`")
	// Looser form for sub-headers, the colon is optional: "**Function `name`:**".
	functionHeaderRegex = regexp.MustCompile("(?i)\\b(?:function|method)\\s*:?\\s*`([^`]+)`")
	filePathRegex       = regexp.MustCompile(`^[\w.\-/\\@+~]+\.[A-Za-z0-9]+$`)
	ruleRegex           = regexp.MustCompile(`^(?:\*\s*){3,}$|^(?:-\s*){3,}$|^(?:_\s*){3,}$`)
)

// line is one classified input line. The classifier is stateless; lines that
// only make sense inside the files region carry a fallback kind for use
// everywhere else.
type line struct {
	num       int // 1-based
	raw       string
	kind      lineKind
	fallback  lineKind
	indent    int
	text      string // label, path, function name, approval text, bullet body or trimmed text
	label     string // header label used when the line falls back to lineHeader
	function  string // "Function: `name`" fragment found in a bullet
	startLine int
	endLine   int
}

// classifyLine tags a single line with its structural role.
func classifyLine(raw string, num int) line {
	l := line{num: num, raw: raw, indent: indentWidth(raw)}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		l.kind = lineBlank
		return l
	case strings.HasPrefix(trimmed, "```"):
		info := strings.TrimSpace(trimmed[3:])
		switch {
		case info == "":
			l.kind = lineFenceBare
		case strings.EqualFold(info, "suggestion"):
			l.kind = lineSuggestionOpen
		default:
			l.kind = lineFenceOpen
			l.text = info
		}
		return l
	}

	if m := approvalRegex.FindStringSubmatch(trimmed); m != nil {
		l.kind = lineApproval
		l.text = strings.Trim(m[1], " \t*_`.!")
		return l
	}
	return classifyStructure(l, raw, trimmed)
}

// classifyStructure tags a non-blank, non-fence line without looking for an
// approval marker.
func classifyStructure(l line, raw, trimmed string) line {
	if ruleRegex.MatchString(trimmed) {
		l.kind = lineRule
		return l
	}

	if m := bulletRegex.FindStringSubmatch(raw); m != nil {
		return classifyBullet(l, strings.TrimSpace(m[1]))
	}

	if strings.HasPrefix(trimmed, "**") && markerRegex.MatchString(trimmed) {
		return withMarker(l, trimmed)
	}

	label, isHeader := headerLabel(trimmed)
	fallback := lineText
	if isHeader {
		fallback = lineHeader
	}

	if strings.HasPrefix(trimmed, "**") || strings.HasPrefix(trimmed, "#") {
		if m := functionHeaderRegex.FindStringSubmatch(trimmed); m != nil {
			l.kind = lineFunctionHeader
			l.fallback = fallback
			l.text = normalizeFunctionName(m[1])
			l.label = label
			return l
		}
	}

	if path, ok := fileHeaderPath(trimmed); ok {
		l.kind = lineFileHeader
		l.fallback = fallback
		l.text = path
		l.label = label
		return l
	}

	if isHeader {
		l.kind = lineHeader
		l.text = label
		return l
	}

	l.kind = lineText
	l.text = trimmed
	return l
}

// demoteApproval reclassifies an approval marker that does not decide the
// verdict. It stays in its block as a bullet or as plain text.
func demoteApproval(l line) line {
	d := classifyStructure(line{num: l.num, raw: l.raw, indent: l.indent}, l.raw, strings.TrimSpace(l.raw))
	if d.kind != lineBullet {
		d.kind = lineText
		d.text = strings.TrimSpace(l.raw)
		d.function = ""
	}
	return d
}

func classifyBullet(l line, body string) line {
	if markerRegex.MatchString(body) {
		return withMarker(l, body)
	}
	if path, ok := fileHeaderPath(body); ok && strings.HasSuffix(strings.TrimRight(body, "*_` "), ":") {
		l.kind = lineFileHeader
		l.fallback = lineBullet
		l.text = path
		return l
	}
	l.kind = lineBullet
	l.text = body
	if m := functionFragmentRegex.FindStringSubmatch(body); m != nil {
		l.function = normalizeFunctionName(m[1])
	}
	return l
}

func withMarker(l line, body string) line {
	l.kind = lineMarker
	l.text = body
	m := markerRegex.FindStringSubmatch(body)
	l.startLine, _ = strconv.Atoi(m[1])
	l.endLine = l.startLine
	if m[2] != "" {
		l.endLine, _ = strconv.Atoi(m[2])
	}
	if l.endLine < l.startLine {
		l.startLine, l.endLine = l.endLine, l.startLine
	}
	if fm := functionFragmentRegex.FindStringSubmatch(body); fm != nil {
		l.function = normalizeFunctionName(fm[1])
	}
	return l
}

// headerLabel reports whether trimmed is a top-level header and returns its
// label with emphasis and the trailing colon removed.
func headerLabel(trimmed string) (string, bool) {
	if m := headingRegex.FindStringSubmatch(trimmed); m != nil {
		label := cleanLabel(m[1])
		return label, label != ""
	}
	if m := boldHeaderRegex.FindStringSubmatch(trimmed); m != nil {
		inner := strings.TrimSpace(m[1])
		if !strings.HasSuffix(inner, ":") && m[2] != ":" {
			return "", false
		}
		label := cleanLabel(inner)
		return label, label != ""
	}
	return "", false
}

// fileHeaderPath extracts the path from "**path.ext:**", "`path.ext`:",
// "### path.ext" or "**File: path.ext**".
func fileHeaderPath(trimmed string) (string, bool) {
	s := trimmed
	explicit := false
	if m := headingRegex.FindStringSubmatch(s); m != nil {
		s = m[1]
		explicit = true
	}
	s = strings.Trim(s, "*_ ")
	hasColon := strings.HasSuffix(s, ":")
	s = strings.Trim(strings.TrimSuffix(s, ":"), "*_` ")
	if len(s) > 5 && strings.EqualFold(s[:5], "file:") {
		s = strings.Trim(s[5:], "*_` ")
		explicit = true
	}
	s = strings.Trim(strings.TrimSuffix(s, ":"), "*_` ")
	if !hasColon && !explicit {
		return "", false
	}
	if !filePathRegex.MatchString(s) {
		return "", false
	}
	return normalizePath(s), true
}

// cleanLabel strips emphasis markers and a trailing colon from header text.
func cleanLabel(s string) string {
	for {
		before := s
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, ":")
		s = strings.Trim(s, "*_")
		if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
			s = s[1 : len(s)-1]
		}
		if s == before {
			return s
		}
	}
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

func normalizeFunctionName(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimSpace(strings.TrimSuffix(name, "()"))
}

func isBareFence(raw string) bool {
	return strings.TrimSpace(raw) == "```"
}

// indentWidth counts leading whitespace, a tab counts as four columns.
func indentWidth(raw string) int {
	n := 0
	for _, r := range raw {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// dedent removes up to width columns of leading whitespace.
func dedent(raw string, width int) string {
	i, n := 0, 0
	for i < len(raw) && n < width {
		switch raw[i] {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return raw[i:]
		}
		i++
	}
	return raw[i:]
}
