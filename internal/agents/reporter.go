package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

// ReportWriter is the artifact-generation surface the report stage needs.
type ReportWriter interface {
	Accessibility(issues []orchestrator.DefectRecord, repoName string) (string, error)
	Fixes(critiques []orchestrator.CritiqueRecord, repoName string) (string, error)
	Critiques(critiques []orchestrator.CritiqueRecord, repoName string) (string, error)
}

// Reporter is the terminal pipeline stage: write the three run artifacts.
// Each artifact fails independently so one write error never loses the
// others.
type Reporter struct {
	reports ReportWriter
	logger  *logging.Logger
}

// NewReporter creates the report stage.
func NewReporter(reports ReportWriter, logger *logging.Logger) *Reporter {
	return &Reporter{reports: reports, logger: logger}
}

// Name implements orchestrator.Stage.
func (r *Reporter) Name() orchestrator.StageName {
	return orchestrator.StageReport
}

// Execute implements orchestrator.Stage.
func (r *Reporter) Execute(ctx context.Context, state *orchestrator.PipelineState) error {
	if path, err := r.reports.Accessibility(state.Issues, state.RepoName); err != nil {
		state.AppendError(fmt.Sprintf("accessibility report: %v", err))
		r.logger.Warn(ctx, "accessibility report failed", zap.Error(err))
	} else {
		state.Reports[orchestrator.ReportAccessibility] = path
	}

	if path, err := r.reports.Fixes(state.Critiques, state.RepoName); err != nil {
		state.AppendError(fmt.Sprintf("fix report: %v", err))
		r.logger.Warn(ctx, "fix report failed", zap.Error(err))
	} else {
		state.Reports[orchestrator.ReportFixes] = path
	}

	if path, err := r.reports.Critiques(state.Critiques, state.RepoName); err != nil {
		state.AppendError(fmt.Sprintf("critique report: %v", err))
		r.logger.Warn(ctx, "critique report failed", zap.Error(err))
	} else {
		state.Reports[orchestrator.ReportCritiques] = path
	}

	r.logger.Info(ctx, "reports written", zap.Int("count", len(state.Reports)))
	return nil
}
