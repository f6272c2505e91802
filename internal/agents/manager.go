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

const fixTemplate = `Fix the following %s accessibility issue:

Issue: %s
WCAG: %s
Current Code:
` + "```" + `
%s
` + "```" + `

Recommendation: %s

Provide the corrected code that:
%s

Return your response as JSON with keys:
- fixed_code: string (the corrected code)
- explanation: string (what was changed and why)
- additional_notes: string (any other considerations)

Respond with ONLY the JSON object, no other text.`

// Manager is the fourth pipeline stage: route each enriched issue to a
// fixer persona and collect one fix attempt per issue, order preserved.
// Routing is pure (orchestrator.SelectExpert); only the fix itself costs an
// oracle call. A failed fix is a terminal success=false result, never an
// error raised past this stage.
type Manager struct {
	oracle oracle.Client
	logger *logging.Logger
}

// NewManager creates the delegate stage.
func NewManager(client oracle.Client, logger *logging.Logger) *Manager {
	return &Manager{oracle: client, logger: logger}
}

// Name implements orchestrator.Stage.
func (m *Manager) Name() orchestrator.StageName {
	return orchestrator.StageDelegate
}

// Execute implements orchestrator.Stage. Each execution counts as one
// delegate round toward the critique gate's retry cap.
func (m *Manager) Execute(ctx context.Context, state *orchestrator.PipelineState) error {
	state.DelegateAttempts++

	fixes := make([]orchestrator.FixAttempt, 0, len(state.EnrichedIssues))

	for _, issue := range state.EnrichedIssues {
		persona := orchestrator.SelectExpert(issue.File, issue.Description)

		m.logger.Debug(ctx, "delegating issue",
			zap.String("expert", string(persona)),
			zap.String("file", issue.File),
		)

		fixes = append(fixes, orchestrator.FixAttempt{
			Issue:  issue,
			Expert: persona,
			File:   issue.File,
			Fix:    m.generateFix(ctx, persona, issue),
		})
	}

	state.Fixes = fixes
	state.DelegationSummary = delegationSummary(fixes)

	successes := 0
	for _, f := range fixes {
		if f.Fix.Success {
			successes++
		}
	}
	m.logger.Info(ctx, "delegation round complete",
		zap.Int("attempt", state.DelegateAttempts),
		zap.Int("fixes", len(fixes)),
		zap.Int("successful", successes),
	)
	return nil
}

func (m *Manager) generateFix(ctx context.Context, persona orchestrator.Persona, issue orchestrator.LocatedDefect) orchestrator.FixResult {
	expert := expertProfiles[persona]
	prompt := fmt.Sprintf(fixTemplate,
		expertLanguage[persona],
		issue.Description,
		issue.WCAG,
		issue.CodeSnippet,
		issue.Recommendation,
		expertRequirements[persona],
	)

	raw, err := m.oracle.Complete(ctx, expert.systemPrompt(), prompt)
	if err != nil {
		return orchestrator.FixResult{Success: false, Error: err.Error()}
	}

	var fix struct {
		FixedCode       string `json:"fixed_code"`
		Explanation     string `json:"explanation"`
		AdditionalNotes string `json:"additional_notes"`
	}
	if err := oracle.Decode(raw, &fix); err != nil {
		return orchestrator.FixResult{Success: false, Error: err.Error()}
	}

	return orchestrator.FixResult{
		Success:         true,
		FixedCode:       fix.FixedCode,
		Explanation:     fix.Explanation,
		AdditionalNotes: fix.AdditionalNotes,
	}
}

// delegationSummary reports tasks by expert and the round's success rate.
func delegationSummary(fixes []orchestrator.FixAttempt) string {
	var b strings.Builder
	b.WriteString("TASK DELEGATION REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	byExpert := make(map[string]int)
	for _, f := range fixes {
		byExpert[expertProfiles[f.Expert].Name]++
	}

	experts := make([]string, 0, len(byExpert))
	for name := range byExpert {
		experts = append(experts, name)
	}
	sort.Strings(experts)

	b.WriteString("Tasks by Expert:\n")
	for _, name := range experts {
		fmt.Fprintf(&b, "  %s: %d tasks\n", name, byExpert[name])
	}
	b.WriteString("\n")

	successful := 0
	for _, f := range fixes {
		if f.Fix.Success {
			successful++
		}
	}
	rate := 0.0
	if len(fixes) > 0 {
		rate = float64(successful) / float64(len(fixes)) * 100
	}
	fmt.Fprintf(&b, "Success Rate: %d/%d (%.1f%%)\n", successful, len(fixes), rate)

	return b.String()
}
