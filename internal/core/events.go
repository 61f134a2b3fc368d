// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"strings"
)

// PullRequestTarget identifies the pull request a review is relayed to.
type PullRequestTarget struct {
	RepoOwner string `json:"repo_owner"`
	RepoName  string `json:"repo_name"`
	PRNumber  int    `json:"pr_number"`
	HeadSHA   string `json:"head_sha,omitempty"`
}

// FullName returns "owner/repo".
func (t PullRequestTarget) FullName() string {
	return t.RepoOwner + "/" + t.RepoName
}

// RelayRequest asks for an LLM markdown review to be parsed, archived and
// posted to a pull request.
type RelayRequest struct {
	ID       string            `json:"id"`
	Target   PullRequestTarget `json:"target"`
	Markdown string            `json:"markdown"`
	DryRun   bool              `json:"dry_run"`
}

// Validate checks that the request carries everything a relay job needs.
// It acts as the anti-corruption layer between API payloads and jobs.
func (r *RelayRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("relay request cannot be nil")
	}
	if strings.TrimSpace(r.Target.RepoOwner) == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if strings.TrimSpace(r.Target.RepoName) == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if r.Target.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", r.Target.PRNumber)
	}
	if strings.TrimSpace(r.Markdown) == "" {
		return fmt.Errorf("review markdown cannot be empty")
	}
	return nil
}
