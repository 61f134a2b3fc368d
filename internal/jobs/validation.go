package jobs

import (
	"context"
	"fmt"

	"github.com/sevigo/review-relay/internal/core"
)

// MaxMarkdownBytes caps the size of a review accepted for relaying.
const MaxMarkdownBytes = 1 << 20

// ValidateRequest ensures the request carries everything a relay job needs.
func ValidateRequest(ctx context.Context, req *core.RelayRequest) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if len(req.Markdown) > MaxMarkdownBytes {
		return fmt.Errorf("review markdown is %d bytes, the limit is %d", len(req.Markdown), MaxMarkdownBytes)
	}
	return nil
}
