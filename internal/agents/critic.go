package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/config"
	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/oracle"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

const critiqueTemplate = `Review the following accessibility fix:

ORIGINAL ISSUE:
- Description: %s
- WCAG: %s
- Severity: %s
- Original Code:
` + "```" + `
%s
` + "```" + `

PROPOSED FIX:
` + "```" + `
%s
` + "```" + `

Explanation: %s

Critically evaluate this fix on:
1. Does it actually solve the accessibility issue?
2. Does it follow WCAG 2.1 best practices?
3. Could it introduce new accessibility problems?
4. Is the implementation correct and maintainable?
5. Are there better alternative approaches?

Provide your critique as JSON with keys:
- approved: boolean (true if fix should be applied)
- rating: number (0-10, how good is this fix)
- strengths: array of strings (what's good about this fix)
- weaknesses: array of strings (what's problematic)
- suggestions: array of strings (how to improve)
- concerns: array of strings (potential new issues this might create)

Be thorough and honest. It's better to reject a fix than to introduce new problems.

Respond with ONLY the JSON object, no other text.`

// Critic is the fifth pipeline stage: one review per fix attempt, in order.
// A fix that was never generated is rejected without an oracle call. When
// the review call itself fails the configured policy applies: auto-approve
// (bias toward forward progress), auto-reject, or propagate the error.
type Critic struct {
	oracle oracle.Client
	policy string
	logger *logging.Logger
}

// NewCritic creates the critique stage. policy is one of the
// config.CritiqueError constants; anything unrecognized behaves as
// auto-approve.
func NewCritic(client oracle.Client, policy string, logger *logging.Logger) *Critic {
	return &Critic{oracle: client, policy: policy, logger: logger}
}

// Name implements orchestrator.Stage.
func (c *Critic) Name() orchestrator.StageName {
	return orchestrator.StageCritique
}

// Execute implements orchestrator.Stage.
func (c *Critic) Execute(ctx context.Context, state *orchestrator.PipelineState) error {
	critiques := make([]orchestrator.CritiqueRecord, 0, len(state.Fixes))

	for _, attempt := range state.Fixes {
		critiques = append(critiques, c.critiqueFix(ctx, state, attempt))
	}

	approved := 0
	for _, cr := range critiques {
		if cr.Approved {
			approved++
		}
	}

	state.Critiques = critiques
	state.ApprovedCount = approved
	state.RejectedCount = len(critiques) - approved
	state.ApprovalRate = 0
	if len(critiques) > 0 {
		state.ApprovalRate = float64(approved) / float64(len(critiques)) * 100
	}
	state.IsSatisfactory = orchestrator.Satisfactory(critiques)
	state.CritiqueSummary = critiqueSummary(critiques)

	c.logger.Info(ctx, "critique round complete",
		zap.Int("approved", state.ApprovedCount),
		zap.Int("rejected", state.RejectedCount),
		zap.Bool("satisfactory", state.IsSatisfactory),
	)
	return nil
}

func (c *Critic) critiqueFix(ctx context.Context, state *orchestrator.PipelineState, attempt orchestrator.FixAttempt) orchestrator.CritiqueRecord {
	if !attempt.Fix.Success {
		// Rejected outright; the review call would be wasted.
		return orchestrator.CritiqueRecord{
			File:             attempt.File,
			IssueDescription: attempt.Issue.Description,
			Approved:         false,
			Rating:           0,
			Strengths:        []string{},
			Weaknesses:       []string{"Fix was not successfully generated"},
			Suggestions:      []string{"Retry with clearer context or different approach"},
			Concerns:         []string{},
			OriginalFix:      attempt.Fix,
		}
	}

	prompt := fmt.Sprintf(critiqueTemplate,
		attempt.Issue.Description,
		attempt.Issue.WCAG,
		attempt.Issue.Severity,
		attempt.Issue.CodeSnippet,
		attempt.Fix.FixedCode,
		attempt.Fix.Explanation,
	)

	raw, err := c.oracle.Complete(ctx, criticProfile.systemPrompt(), prompt)
	if err == nil {
		var verdict struct {
			Approved    bool     `json:"approved"`
			Rating      int      `json:"rating"`
			Strengths   []string `json:"strengths"`
			Weaknesses  []string `json:"weaknesses"`
			Suggestions []string `json:"suggestions"`
			Concerns    []string `json:"concerns"`
		}
		if decodeErr := oracle.Decode(raw, &verdict); decodeErr == nil {
			return orchestrator.CritiqueRecord{
				File:             attempt.File,
				IssueDescription: attempt.Issue.Description,
				Approved:         verdict.Approved,
				Rating:           orchestrator.ClampRating(verdict.Rating),
				Strengths:        emptyIfNil(verdict.Strengths),
				Weaknesses:       emptyIfNil(verdict.Weaknesses),
				Suggestions:      emptyIfNil(verdict.Suggestions),
				Concerns:         emptyIfNil(verdict.Concerns),
				OriginalFix:      attempt.Fix,
			}
		} else {
			err = decodeErr
		}
	}

	return c.onCritiqueError(ctx, state, attempt, err)
}

// onCritiqueError applies the configured fail-open policy when the review
// call or its decode fails.
func (c *Critic) onCritiqueError(ctx context.Context, state *orchestrator.PipelineState, attempt orchestrator.FixAttempt, err error) orchestrator.CritiqueRecord {
	c.logger.Warn(ctx, "could not critique fix",
		zap.String("file", attempt.File), zap.Error(err))

	switch c.policy {
	case config.CritiqueErrorAutoReject:
		return orchestrator.CritiqueRecord{
			File:             attempt.File,
			IssueDescription: attempt.Issue.Description,
			Approved:         false,
			Rating:           0,
			Strengths:        []string{},
			Weaknesses:       []string{},
			Suggestions:      []string{},
			Concerns:         []string{},
			Note:             fmt.Sprintf("Automatic rejection due to critique error: %v", err),
			OriginalFix:      attempt.Fix,
		}

	case config.CritiqueErrorPropagate:
		state.AppendError(fmt.Sprintf("critique %s: %v", attempt.File, err))
		return orchestrator.CritiqueRecord{
			File:             attempt.File,
			IssueDescription: attempt.Issue.Description,
			Approved:         false,
			Rating:           0,
			Strengths:        []string{},
			Weaknesses:       []string{},
			Suggestions:      []string{},
			Concerns:         []string{},
			Note:             fmt.Sprintf("Critique error propagated: %v", err),
			OriginalFix:      attempt.Fix,
		}

	default: // config.CritiqueErrorAutoApprove
		return orchestrator.CritiqueRecord{
			File:             attempt.File,
			IssueDescription: attempt.Issue.Description,
			Approved:         true,
			Rating:           7,
			Strengths:        []string{"Fix was generated successfully"},
			Weaknesses:       []string{},
			Suggestions:      []string{},
			Concerns:         []string{},
			Note:             fmt.Sprintf("Automatic approval due to critique error: %v", err),
			OriginalFix:      attempt.Fix,
		}
	}
}

// critiqueSummary aggregates a round's verdicts into a human-readable
// string, including the most common concerns.
func critiqueSummary(critiques []orchestrator.CritiqueRecord) string {
	var b strings.Builder
	b.WriteString("SOLUTION CRITIQUE SUMMARY\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	approved := 0
	for _, c := range critiques {
		if c.Approved {
			approved++
		}
	}
	total := len(critiques)

	b.WriteString("Overall Results:\n")
	fmt.Fprintf(&b, "  Approved: %d/%d\n", approved, total)
	fmt.Fprintf(&b, "  Rejected: %d/%d\n", total-approved, total)

	if total > 0 {
		sum := 0
		for _, c := range critiques {
			sum += c.Rating
		}
		fmt.Fprintf(&b, "  Average Rating: %.1f/10\n", float64(sum)/float64(total))
	}
	b.WriteString("\n")

	concernCounts := make(map[string]int)
	for _, c := range critiques {
		for _, concern := range c.Concerns {
			concernCounts[concern]++
		}
	}

	if len(concernCounts) > 0 {
		b.WriteString("Common Concerns:\n")

		concerns := make([]string, 0, len(concernCounts))
		for concern := range concernCounts {
			concerns = append(concerns, concern)
		}
		sort.Slice(concerns, func(i, j int) bool {
			if concernCounts[concerns[i]] != concernCounts[concerns[j]] {
				return concernCounts[concerns[i]] > concernCounts[concerns[j]]
			}
			return concerns[i] < concerns[j]
		})

		if len(concerns) > 5 {
			concerns = concerns[:5]
		}
		for _, concern := range concerns {
			fmt.Fprintf(&b, "  - %s (mentioned %d times)\n", concern, concernCounts[concern])
		}
	}

	return b.String()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
