package parser

import "strings"

// extractFence reads the body of the fence opened at lines[start]. Content
// lines lose the opening fence's own indentation and are otherwise kept
// verbatim, including backticks that do not form a bare closing fence.
// consumed counts every line read, the opening and closing fences included.
// An unterminated fence swallows the rest of the document.
func extractFence(lines []string, start int) (content string, consumed int, terminated bool) {
	width := indentWidth(lines[start])
	var body []string
	i := start + 1
	for ; i < len(lines); i++ {
		if isBareFence(lines[i]) {
			terminated = true
			i++
			break
		}
		body = append(body, dedent(lines[i], width))
	}
	return joinTrimmed(body), i - start, terminated
}

// joinTrimmed drops leading and trailing blank lines and joins the rest.
func joinTrimmed(lines []string) string {
	first, last := 0, len(lines)
	for first < last && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	for last > first && strings.TrimSpace(lines[last-1]) == "" {
		last--
	}
	return strings.Join(lines[first:last], "\n")
}
