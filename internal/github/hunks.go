package github

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// DiffLines is the set of new-side line numbers of one file's patch.
type DiffLines map[int]struct{}

// Contains reports whether line can receive an inline comment.
func (d DiffLines) Contains(line int) bool {
	_, ok := d[line]
	return ok
}

// First returns the smallest commentable line, or 0 for an empty set.
func (d DiffLines) First() int {
	if len(d) == 0 {
		return 0
	}
	lines := make([]int, 0, len(d))
	for l := range d {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines[0]
}

// ParseValidLinesFromPatch extracts all line numbers that can receive a comment in a GitHub PR.
// These are the lines present in the "new" side of the diff (the + side).
func ParseValidLinesFromPatch(patch string, logger *slog.Logger) DiffLines {
	valid := make(DiffLines)
	current := -1

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			current = -1
			m := hunkHeaderRegex.FindStringSubmatch(line)
			if len(m) < 2 {
				continue
			}
			start, err := strconv.Atoi(m[1])
			if err != nil {
				// A corrupted hunk would shift every following line number.
				if logger != nil {
					logger.Warn("skipped malformed hunk header", "line", line, "error", err)
				}
				continue
			}
			current = start
			continue
		}
		if current == -1 {
			continue
		}

		// ' ' and '+' exist on the new side, '-' only on the old one.
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, " ") {
			valid[current] = struct{}{}
			current++
		}
	}

	return valid
}
