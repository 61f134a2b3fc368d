package core

import "time"

// ApprovalStatus is the normalized verdict detected from a review's
// "Recommended Action" line.
type ApprovalStatus string

const (
	ApprovalApproved         ApprovalStatus = "Approved"
	ApprovalChangesRequested ApprovalStatus = "ChangesRequested"
	ApprovalCommented        ApprovalStatus = "Commented"
	ApprovalUnknown          ApprovalStatus = "Unknown"
)

// Valid reports whether s is one of the known approval statuses.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalApproved, ApprovalChangesRequested, ApprovalCommented, ApprovalUnknown:
		return true
	}
	return false
}

// GeneralFileComments is the function bucket used for file comments that
// are not attributed to a named function.
const GeneralFileComments = "General_File_Comments"

// Comment is a single observation about a file, optionally carrying the
// verbatim content of a suggestion block.
type Comment struct {
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	StartLine  int    `json:"start_line,omitempty"` // From a "Line N-M:" marker, 0 when absent
	EndLine    int    `json:"end_line,omitempty"`
}

// HasSuggestion reports whether the comment carries a suggestion block.
func (c Comment) HasSuggestion() bool {
	return c.Suggestion != ""
}

// FunctionComments holds the comments of one function bucket in document order.
type FunctionComments struct {
	Name     string    `json:"name"`
	Comments []Comment `json:"comments"`
}

// FileComments holds the function buckets of one file in first-seen order.
type FileComments struct {
	Path      string             `json:"path"`
	Functions []FunctionComments `json:"functions"`
}

// Function returns the bucket with the given name, or nil.
func (f *FileComments) Function(name string) *FunctionComments {
	for i := range f.Functions {
		if f.Functions[i].Name == name {
			return &f.Functions[i]
		}
	}
	return nil
}

// CommentCount returns the number of comments across all buckets of the file.
func (f *FileComments) CommentCount() int {
	n := 0
	for _, fn := range f.Functions {
		n += len(fn.Comments)
	}
	return n
}

// Section is a freestanding block of commentary not tied to a file.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ReviewRecord is the structured form of an LLM markdown review. It is built
// once by the parser and treated as read-only afterwards.
type ReviewRecord struct {
	OverallImpression string         `json:"overall_impression"`
	FileComments      []FileComments `json:"file_comments"`
	GeneralSections   []Section      `json:"general_sections"`
	Summary           string         `json:"summary"`
	ApprovalStatus    ApprovalStatus `json:"approval_status"`
}

// File returns the entry for path, or nil.
func (r *ReviewRecord) File(path string) *FileComments {
	for i := range r.FileComments {
		if r.FileComments[i].Path == path {
			return &r.FileComments[i]
		}
	}
	return nil
}

// Comments returns the comments filed under path and function, or nil.
func (r *ReviewRecord) Comments(path, function string) []Comment {
	f := r.File(path)
	if f == nil {
		return nil
	}
	fn := f.Function(function)
	if fn == nil {
		return nil
	}
	return fn.Comments
}

// CommentCount returns the number of file comments in the record.
func (r *ReviewRecord) CommentCount() int {
	n := 0
	for i := range r.FileComments {
		n += r.FileComments[i].CommentCount()
	}
	return n
}

// Review is an archived review stored in the database.
type Review struct {
	ID             int64          `db:"id" json:"id"`
	RepoFullName   string         `db:"repo_full_name" json:"repo_full_name"`
	PRNumber       int            `db:"pr_number" json:"pr_number"`
	HeadSHA        string         `db:"head_sha" json:"head_sha"`
	RawMarkdown    string         `db:"raw_markdown" json:"raw_markdown"`
	Record         *ReviewRecord  `db:"-" json:"record"`
	ApprovalStatus ApprovalStatus `db:"approval_status" json:"approval_status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
