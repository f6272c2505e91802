package orchestrator

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Severity ranks how badly a defect hurts users.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Category is the WCAG principle a defect falls under.
type Category string

const (
	CategoryPerceivable    Category = "Perceivable"
	CategoryOperable       Category = "Operable"
	CategoryUnderstandable Category = "Understandable"
	CategoryRobust         Category = "Robust"
)

// Persona identifies one of the three fixer specializations.
type Persona string

const (
	PersonaHTML       Persona = "html"
	PersonaCSS        Persona = "css"
	PersonaJavaScript Persona = "javascript"
)

// LineNumber is an int that tolerates the oracle returning a line as a
// number, a numeric string, "unknown", or null. Anything non-numeric
// decodes to 0, which means unknown.
type LineNumber int

// UnmarshalJSON implements json.Unmarshaler.
func (l *LineNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*l = 0
		return nil
	}
	if n, ok := parseLine(s); ok {
		*l = LineNumber(n)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if n, ok := parseLine(strings.TrimSpace(raw)); ok {
			*l = LineNumber(n)
			return nil
		}
	}
	*l = 0
	return nil
}

// parseLine accepts integer and float renditions; the oracle sometimes
// emits lines like 15.0.
func parseLine(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

// Int returns the line number, 0 meaning unknown.
func (l LineNumber) Int() int {
	return int(l)
}

// DefectRecord is one accessibility issue reported by the oracle for a file.
// The File field is always force-overwritten with the actual file path; the
// oracle is not trusted for it.
type DefectRecord struct {
	File           string     `json:"file"`
	Line           LineNumber `json:"line"`
	Severity       Severity   `json:"severity"`
	WCAG           string     `json:"wcag"`
	Category       Category   `json:"category"`
	Description    string     `json:"description"`
	Impact         string     `json:"impact"`
	Recommendation string     `json:"recommendation"`
}

// LocatedDefect is a DefectRecord enriched with an exact code location.
// Enrichment fields are optional: when location fails the record falls back
// to its own line and recommendation.
type LocatedDefect struct {
	DefectRecord

	ExactLine          LineNumber `json:"exact_line,omitempty"`
	CodeSnippet        string     `json:"code_snippet,omitempty"`
	ProblematicElement string     `json:"problematic_element,omitempty"`
	FixApproach        string     `json:"fix_approach,omitempty"`
}

// FixResult is the outcome of one expert fix attempt. Success=false is a
// valid terminal state, not an error.
type FixResult struct {
	Success         bool   `json:"success"`
	FixedCode       string `json:"fixed_code,omitempty"`
	Explanation     string `json:"explanation,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
	Error           string `json:"error,omitempty"`
}

// FixAttempt pairs an issue with the expert that handled it and the result.
type FixAttempt struct {
	Issue  LocatedDefect `json:"issue"`
	Expert Persona       `json:"expert"`
	File   string        `json:"file"`
	Fix    FixResult     `json:"fix"`
}

// CritiqueRecord is the review verdict for one fix attempt.
// Invariants: Rating is clamped to [0,10]; Approved is false whenever the
// originating fix had Success=false.
type CritiqueRecord struct {
	File             string    `json:"file"`
	IssueDescription string    `json:"issue_description"`
	Approved         bool      `json:"approved"`
	Rating           int       `json:"rating"`
	Strengths        []string  `json:"strengths"`
	Weaknesses       []string  `json:"weaknesses"`
	Suggestions      []string  `json:"suggestions"`
	Concerns         []string  `json:"concerns"`
	Note             string    `json:"note,omitempty"`
	OriginalFix      FixResult `json:"original_fix"`
}

// PublishResult reports the branch/commit/push/PR outcome.
type PublishResult struct {
	Success        bool   `json:"success"`
	FilesModified  int    `json:"files_modified"`
	BranchName     string `json:"branch_name,omitempty"`
	PullRequestURL string `json:"pull_request_url,omitempty"`
	Error          string `json:"error,omitempty"`
	Note           string `json:"note,omitempty"`
}

// Report kinds, the three fixed keys of PipelineState.Reports.
const (
	ReportAccessibility = "accessibility"
	ReportFixes         = "fixes"
	ReportCritiques     = "critiques"
)

// PipelineState is the single mutable record threaded through all stages.
// Each run owns an independent instance; nothing is shared across runs.
type PipelineState struct {
	// Set by the caller, immutable afterwards.
	RepoURL  string `json:"repo_url"`
	RepoName string `json:"repo_name"`

	// Written by the clone stage.
	RepoPath    string            `json:"repo_path"`
	SourceFiles map[string]string `json:"source_files"`

	// Written by the analyze stage.
	Issues          []DefectRecord `json:"issues"`
	AnalysisSummary string         `json:"analysis_summary,omitempty"`

	// Written by the locate stage.
	EnrichedIssues []LocatedDefect `json:"enriched_issues"`

	// Written by the delegate stage. DelegateAttempts counts rounds so the
	// critique retry loop stays bounded.
	Fixes             []FixAttempt `json:"fixes"`
	DelegateAttempts  int          `json:"delegate_attempts"`
	DelegationSummary string       `json:"delegation_summary,omitempty"`

	// Written by the critique stage.
	Critiques       []CritiqueRecord `json:"critiques"`
	ApprovedCount   int              `json:"approved_count"`
	RejectedCount   int              `json:"rejected_count"`
	ApprovalRate    float64          `json:"approval_rate"`
	IsSatisfactory  bool             `json:"is_satisfactory"`
	CritiqueSummary string           `json:"critique_summary,omitempty"`

	// Written by the publish stage.
	GitHubResult *PublishResult `json:"github_result,omitempty"`

	// Written by the report stage: report kind -> file path.
	Reports map[string]string `json:"reports"`

	// CurrentStep is the last stage that completed, successfully or not.
	CurrentStep string `json:"current_step"`

	// Errors is append-only and never cleared.
	Errors []string `json:"errors"`
}

// NewPipelineState creates a run state with empty defaults.
func NewPipelineState(repoURL, repoName string) *PipelineState {
	return &PipelineState{
		RepoURL:     repoURL,
		RepoName:    repoName,
		SourceFiles: make(map[string]string),
		Issues:      []DefectRecord{},
		Reports:     make(map[string]string),
		Errors:      []string{},
	}
}

// AppendError records a degraded-stage message. Errors are the sole record
// of failures; no stage error aborts the run.
func (s *PipelineState) AppendError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// RepoNameFromURL derives an "owner/repo" name from a clone URL. Falls
// back to the last path segment when the URL has no owner component.
func RepoNameFromURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	trimmed = strings.TrimPrefix(trimmed, "git@")
	trimmed = strings.ReplaceAll(trimmed, ":", "/")

	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return url
}

// ClampRating bounds a critique rating to [0,10].
func ClampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > 10 {
		return 10
	}
	return r
}
