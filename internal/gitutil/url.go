// Package gitutil resolves pull request references given on the command line
// or in API payloads.
package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sevigo/review-relay/internal/core"
)

var (
	prURLRegex       = regexp.MustCompile(`github\.com/([^/\s]+)/([^/\s]+)/pull/(\d+)(?:/(?:files|commits|checks))?$`)
	prShorthandRegex = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
)

// ParsePullRequestURL parses a pull request reference into a target without a head SHA.
// Supported formats:
//
//	https://github.com/{owner}/{repo}/pull/{number}
//	github.com/{owner}/{repo}/pull/{number}/files
//	{owner}/{repo}#{number}
func ParsePullRequestURL(ref string) (core.PullRequestTarget, error) {
	ref = strings.TrimSuffix(strings.TrimSpace(ref), "/")

	matches := prURLRegex.FindStringSubmatch(ref)
	if matches == nil {
		matches = prShorthandRegex.FindStringSubmatch(ref)
	}
	if matches == nil {
		return core.PullRequestTarget{}, fmt.Errorf("invalid pull request URL format: %s", ref)
	}

	prNumberStr := matches[3]
	prNumber, err := strconv.Atoi(prNumberStr)
	if err != nil {
		return core.PullRequestTarget{}, fmt.Errorf("invalid PR number '%s': %w", prNumberStr, err)
	}
	if prNumber <= 0 {
		return core.PullRequestTarget{}, fmt.Errorf("invalid PR number '%s': must be positive", prNumberStr)
	}

	return core.PullRequestTarget{
		RepoOwner: matches[1],
		RepoName:  strings.TrimSuffix(matches[2], ".git"),
		PRNumber:  prNumber,
	}, nil
}
