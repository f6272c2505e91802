package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/oracle"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

const analyzeTemplate = `Analyze the following source code file for accessibility issues according to WCAG 2.1 guidelines.

File: %s

Source Code:
` + "```" + `
%s
` + "```" + `

Identify ALL accessibility issues in this file. For each issue, provide:
1. Severity (Critical, High, Medium, Low)
2. WCAG criterion violated (e.g., 1.1.1, 2.4.1)
3. Category (Perceivable, Operable, Understandable, Robust)
4. Line number (approximate if exact is not clear)
5. Description of the issue
6. Impact on users
7. Specific recommendation to fix

Return your response as a JSON array of issues. Each issue should be an object with keys:
file, line, severity, wcag, category, description, impact, recommendation

Example:
[
  {
    "file": "index.html",
    "line": 15,
    "severity": "Critical",
    "wcag": "1.1.1",
    "category": "Perceivable",
    "description": "Image missing alt text",
    "impact": "Screen reader users cannot understand image content",
    "recommendation": "Add descriptive alt attribute to the img tag"
  }
]

Respond with ONLY the JSON array, no other text.`

// Analyzer is the second pipeline stage: one oracle call per non-empty
// source file, each returning a JSON array of defect records. A malformed
// response for one file never affects sibling files.
type Analyzer struct {
	oracle        oracle.Client
	contentBudget int
	logger        *logging.Logger
}

// NewAnalyzer creates the analyze stage. contentBudget caps the characters
// of file content sent per oracle call.
func NewAnalyzer(client oracle.Client, contentBudget int, logger *logging.Logger) *Analyzer {
	return &Analyzer{oracle: client, contentBudget: contentBudget, logger: logger}
}

// Name implements orchestrator.Stage.
func (a *Analyzer) Name() orchestrator.StageName {
	return orchestrator.StageAnalyze
}

// Execute implements orchestrator.Stage. Files are visited in sorted path
// order so issue ordering is stable across runs.
func (a *Analyzer) Execute(ctx context.Context, state *orchestrator.PipelineState) error {
	paths := make([]string, 0, len(state.SourceFiles))
	for path := range state.SourceFiles {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var issues []orchestrator.DefectRecord

	for _, path := range paths {
		content := state.SourceFiles[path]
		if strings.TrimSpace(content) == "" {
			continue
		}

		fileIssues, err := a.analyzeFile(ctx, path, content)
		if err != nil {
			state.AppendError(fmt.Sprintf("analyze %s: %v", path, err))
			a.logger.Warn(ctx, "file analysis failed",
				zap.String("file", path), zap.Error(err))
			continue
		}

		// The oracle is not trusted for the file field.
		for i := range fileIssues {
			fileIssues[i].File = path
		}
		issues = append(issues, fileIssues...)
	}

	if issues == nil {
		issues = []orchestrator.DefectRecord{}
	}
	state.Issues = issues
	state.AnalysisSummary = analysisSummary(issues)

	a.logger.Info(ctx, "analysis complete",
		zap.Int("files", len(paths)),
		zap.Int("issues", len(issues)),
	)
	return nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, path, content string) ([]orchestrator.DefectRecord, error) {
	prompt := fmt.Sprintf(analyzeTemplate, path, truncateContent(content, a.contentBudget))

	raw, err := a.oracle.Complete(ctx, analyzerProfile.systemPrompt(), prompt)
	if err != nil {
		return nil, err
	}

	var issues []orchestrator.DefectRecord
	if err := oracle.Decode(raw, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// analysisSummary aggregates issue counts by severity and category into a
// human-readable string.
func analysisSummary(issues []orchestrator.DefectRecord) string {
	if len(issues) == 0 {
		return "No accessibility issues found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d accessibility issues:\n\n", len(issues))

	bySeverity := make(map[orchestrator.Severity]int)
	byCategory := make(map[orchestrator.Category]int)
	for _, issue := range issues {
		bySeverity[issue.Severity]++
		byCategory[issue.Category]++
	}

	b.WriteString("By Severity:\n")
	for _, sev := range []orchestrator.Severity{
		orchestrator.SeverityCritical,
		orchestrator.SeverityHigh,
		orchestrator.SeverityMedium,
		orchestrator.SeverityLow,
	} {
		if n := bySeverity[sev]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", sev, n)
		}
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)

	b.WriteString("\nBy Category:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "  %s: %d\n", cat, byCategory[orchestrator.Category(cat)])
	}

	return b.String()
}

// truncateContent caps s at max characters. 0 or negative means no cap.
func truncateContent(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
