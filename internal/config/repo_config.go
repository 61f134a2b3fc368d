package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sevigo/review-relay/internal/core"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParsing  = errors.New("config parsing failed")
	ErrConfigInvalid  = errors.New("config invalid")
)

// LoadParserConfig loads and parses a .review-relay.yml file. A missing file
// yields the defaults together with ErrConfigNotFound, which callers may
// treat as non-fatal. An empty path yields the defaults and no error.
func LoadParserConfig(path string) (*core.ParserConfig, error) {
	if path == "" {
		return core.DefaultParserConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.DefaultParserConfig(), ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	config := core.DefaultParserConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	if config.GeneralBucket == "" {
		config.GeneralBucket = core.GeneralFileComments
	}
	for i, kw := range config.ApprovalKeywords {
		if kw.Keyword == "" {
			return nil, fmt.Errorf("%w: approval_keywords[%d] has an empty keyword", ErrConfigInvalid, i)
		}
		if !kw.Status.Valid() {
			return nil, fmt.Errorf("%w: approval_keywords[%d] has unknown status %q", ErrConfigInvalid, i, kw.Status)
		}
	}
	return config, nil
}
