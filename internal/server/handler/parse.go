package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/jobs"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/render"
)

// ParseHandler parses review markdown synchronously and returns the record.
type ParseHandler struct {
	parser *parser.Parser
	logger *slog.Logger
}

// NewParseHandler creates a handler backed by p.
func NewParseHandler(p *parser.Parser, logger *slog.Logger) *ParseHandler {
	return &ParseHandler{parser: p, logger: logger}
}

type parseRequest struct {
	Markdown string `json:"markdown"`
}

type parseResponse struct {
	Record       *core.ReviewRecord  `json:"record"`
	Diagnostics  []parser.Diagnostic `json:"diagnostics"`
	Body         string              `json:"body,omitempty"`
	FileComments []string            `json:"file_comments,omitempty"`
}

// Handle accepts either a raw text body or {"markdown": "..."}.
// With ?render=true the response also carries the rendered comment bodies.
func (h *ParseHandler) Handle(w http.ResponseWriter, r *http.Request) {
	markdown, err := readMarkdown(w, r)
	if err != nil {
		h.logger.Warn("rejected parse request", "error", err)
		writeError(w, h.logger, statusForReadError(err), err.Error())
		return
	}

	record, diags := h.parser.Parse(markdown)
	if diags == nil {
		diags = []parser.Diagnostic{}
	}
	resp := parseResponse{Record: record, Diagnostics: diags}

	if wantRender, _ := strconv.ParseBool(r.URL.Query().Get("render")); wantRender {
		resp.Body = render.ReviewBody(record)
		resp.FileComments = render.FileComments(record, h.parser.GeneralBucket())
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

var errInvalidJSON = errors.New("invalid JSON body")

func readMarkdown(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, jobs.MaxMarkdownBytes))
	if err != nil {
		return "", err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return string(body), nil
	}

	var req parseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", errInvalidJSON
	}
	return req.Markdown, nil
}

func statusForReadError(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
