package core

// ApprovalKeyword maps a case-insensitive substring of the recommended action
// text to a verdict.
type ApprovalKeyword struct {
	Keyword string         `yaml:"keyword"`
	Status  ApprovalStatus `yaml:"status"`
}

// ParserConfig represents the structure of the .review-relay.yml file.
type ParserConfig struct {
	// Extra approval keywords, matched after the built-in table.
	// Example: [{keyword: "lgtm", status: Approved}]
	ApprovalKeywords []ApprovalKeyword `yaml:"approval_keywords"`

	// Name of the bucket for comments not attributed to a function.
	GeneralBucket string `yaml:"general_bucket"`
}

// DefaultParserConfig returns a config with default values.
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		ApprovalKeywords: []ApprovalKeyword{},
		GeneralBucket:    GeneralFileComments,
	}
}
