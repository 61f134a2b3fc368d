package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFence(t *testing.T) {
	tests := []struct {
		name           string
		lines          []string
		wantContent    string
		wantConsumed   int
		wantTerminated bool
	}{
		{
			name:           "simple",
			lines:          []string{"```suggestion", "x := 1", "```", "after"},
			wantContent:    "x := 1",
			wantConsumed:   3,
			wantTerminated: true,
		},
		{
			name:           "indented fence strips its own indentation",
			lines:          []string{"  ```suggestion", "  if ok {", "      return", "  }", "  ```"},
			wantContent:    "if ok {\n    return\n}",
			wantConsumed:   5,
			wantTerminated: true,
		},
		{
			name:           "embedded backticks and tagged fences are content",
			lines:          []string{"```suggestion", "s := `raw`", "```go", "y", "```", "rest"},
			wantContent:    "s := `raw`\n```go\ny",
			wantConsumed:   5,
			wantTerminated: true,
		},
		{
			name:           "surrounding blank lines trimmed",
			lines:          []string{"```suggestion", "", "a", "", "b", "  ", "```"},
			wantContent:    "a\n\nb",
			wantConsumed:   7,
			wantTerminated: true,
		},
		{
			name:           "trailing whitespace is kept",
			lines:          []string{"```suggestion", "x := 1  ", "\ty := 2\t", "```"},
			wantContent:    "x := 1  \n\ty := 2\t",
			wantConsumed:   4,
			wantTerminated: true,
		},
		{
			name:           "unterminated",
			lines:          []string{"```suggestion", "a", "b", ""},
			wantContent:    "a\nb",
			wantConsumed:   4,
			wantTerminated: false,
		},
		{
			name:           "empty fence",
			lines:          []string{"```suggestion", "```"},
			wantContent:    "",
			wantConsumed:   2,
			wantTerminated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, consumed, terminated := extractFence(tt.lines, 0)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantConsumed, consumed)
			assert.Equal(t, tt.wantTerminated, terminated)
		})
	}
}
