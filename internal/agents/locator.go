package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/oracle"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

const locateTemplate = `Given an accessibility issue and the source code file, identify the exact code that needs to be fixed.

Issue Details:
- Description: %s
- WCAG: %s
- Recommendation: %s
- Approximate Line: %d

Source Code:
` + "```" + `
%s
` + "```" + `

Analyze the code and provide:
1. The exact line number where the issue occurs
2. The problematic code snippet (5-10 lines of context)
3. The specific element or attribute causing the issue
4. The minimum code change needed to fix it

Return your response as JSON with keys:
- exact_line: number
- code_snippet: string (the problematic code with context)
- problematic_element: string (what exactly is wrong)
- fix_approach: string (how to fix it)

Example:
{
  "exact_line": 42,
  "code_snippet": "<img src='logo.png'>",
  "problematic_element": "img element without alt attribute",
  "fix_approach": "Add alt='Company Logo' to the img tag"
}

Respond with ONLY the JSON object, no other text.`

// Locator is the third pipeline stage: one oracle call per issue mapping it
// to an exact code location. The stage never drops an issue, only its
// precision: a missing file skips the oracle call entirely, and any failure
// falls back to the issue's own line and recommendation.
type Locator struct {
	oracle        oracle.Client
	contentBudget int
	logger        *logging.Logger
}

// NewLocator creates the locate stage.
func NewLocator(client oracle.Client, contentBudget int, logger *logging.Logger) *Locator {
	return &Locator{oracle: client, contentBudget: contentBudget, logger: logger}
}

// Name implements orchestrator.Stage.
func (l *Locator) Name() orchestrator.StageName {
	return orchestrator.StageLocate
}

// Execute implements orchestrator.Stage.
func (l *Locator) Execute(ctx context.Context, state *orchestrator.PipelineState) error {
	enriched := make([]orchestrator.LocatedDefect, 0, len(state.Issues))

	for _, issue := range state.Issues {
		content, ok := state.SourceFiles[issue.File]
		if !ok {
			// No oracle call wasted; the issue passes through unenriched.
			enriched = append(enriched, orchestrator.LocatedDefect{DefectRecord: issue})
			continue
		}

		located, err := l.locate(ctx, issue, content)
		if err != nil {
			l.logger.Warn(ctx, "could not locate issue precisely",
				zap.String("file", issue.File), zap.Error(err))
			enriched = append(enriched, orchestrator.LocatedDefect{
				DefectRecord: issue,
				ExactLine:    issue.Line,
				FixApproach:  issue.Recommendation,
			})
			continue
		}
		enriched = append(enriched, located)
	}

	state.EnrichedIssues = enriched
	l.logger.Info(ctx, "issues located", zap.Int("total", len(enriched)))
	return nil
}

func (l *Locator) locate(ctx context.Context, issue orchestrator.DefectRecord, content string) (orchestrator.LocatedDefect, error) {
	prompt := fmt.Sprintf(locateTemplate,
		issue.Description,
		issue.WCAG,
		issue.Recommendation,
		issue.Line.Int(),
		truncateContent(content, l.contentBudget),
	)

	raw, err := l.oracle.Complete(ctx, locatorProfile.systemPrompt(), prompt)
	if err != nil {
		return orchestrator.LocatedDefect{}, err
	}

	var loc struct {
		ExactLine          orchestrator.LineNumber `json:"exact_line"`
		CodeSnippet        string                  `json:"code_snippet"`
		ProblematicElement string                  `json:"problematic_element"`
		FixApproach        string                  `json:"fix_approach"`
	}
	if err := oracle.Decode(raw, &loc); err != nil {
		return orchestrator.LocatedDefect{}, err
	}

	return orchestrator.LocatedDefect{
		DefectRecord:       issue,
		ExactLine:          loc.ExactLine,
		CodeSnippet:        loc.CodeSnippet,
		ProblematicElement: loc.ProblematicElement,
		FixApproach:        loc.FixApproach,
	}, nil
}
