// Package parser turns the free-form markdown review written by an LLM into a
// core.ReviewRecord.
//
// Parsing is a single synchronous pass over the text. It never fails: input
// that does not follow the expected layout degrades into general sections, and
// structural anomalies are reported as diagnostics next to the record.
package parser

import (
	"io"
	"log/slog"
	"strings"

	"github.com/sevigo/review-relay/internal/core"
)

// Parser holds the fixed tables used while parsing. A Parser is never
// modified after New, so one value may serve concurrent Parse calls.
type Parser struct {
	rules   []core.ApprovalKeyword
	general string
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger that receives anomaly warnings and block
// transitions. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithApprovalKeywords extends the verdict table. Extra keywords are matched
// after the built-in ones.
func WithApprovalKeywords(keywords ...core.ApprovalKeyword) Option {
	return func(p *Parser) {
		for _, kw := range keywords {
			if strings.TrimSpace(kw.Keyword) == "" || !kw.Status.Valid() {
				continue
			}
			p.rules = append(p.rules, kw)
		}
	}
}

// WithGeneralBucket renames the bucket used for comments that name no function.
func WithGeneralBucket(name string) Option {
	return func(p *Parser) {
		if name = strings.TrimSpace(name); name != "" {
			p.general = name
		}
	}
}

// FromConfig applies a repository parser configuration.
func FromConfig(cfg *core.ParserConfig) Option {
	return func(p *Parser) {
		if cfg == nil {
			return
		}
		WithApprovalKeywords(cfg.ApprovalKeywords...)(p)
		WithGeneralBucket(cfg.GeneralBucket)(p)
	}
}

// New creates a Parser with the built-in tables and the given options.
func New(opts ...Option) *Parser {
	p := &Parser{
		rules:   append([]core.ApprovalKeyword(nil), DefaultApprovalKeywords...),
		general: core.GeneralFileComments,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GeneralBucket returns the name of the bucket for comments that name no
// function. Renderers need it to tell that bucket from a real function.
func (p *Parser) GeneralBucket() string {
	return p.general
}

var defaultParser = New()

// Parse parses markdown with the built-in tables and drops the diagnostics.
func Parse(markdown string) *core.ReviewRecord {
	record, _ := defaultParser.Parse(markdown)
	return record
}

// Parse converts markdown into a ReviewRecord. The returned diagnostics list
// every recoverable anomaly in document order; line numbers refer to the
// input as given.
func (p *Parser) Parse(markdown string) (*core.ReviewRecord, []Diagnostic) {
	text := strings.ReplaceAll(markdown, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	offset := 0
	if unwrapped := stripMarkdownFence(text); unwrapped != text {
		if idx := strings.Index(text, unwrapped); idx > 0 && unwrapped != "" {
			offset = strings.Count(text[:idx], "\n")
		}
		text = unwrapped
	}

	s := newSegmenter(p, strings.Split(text, "\n"), offset)
	s.run()

	record := s.out.build()
	p.logger.Debug("parsed review markdown",
		"files", len(record.FileComments),
		"comments", record.CommentCount(),
		"sections", len(record.GeneralSections),
		"approval_status", string(record.ApprovalStatus),
		"diagnostics", len(s.diags),
	)
	return record, s.diags
}

// stripMarkdownFence removes ```markdown ... ``` wrapping that some LLMs add around their output.
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```markdown") && !strings.HasPrefix(trimmed, "```md") {
		return s
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
