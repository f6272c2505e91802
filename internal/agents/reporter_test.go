package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

// fakeReportWriter returns canned paths, with one optional failing kind.
type fakeReportWriter struct {
	failFixes bool
}

func (f *fakeReportWriter) Accessibility(_ []orchestrator.DefectRecord, repoName string) (string, error) {
	return "reports/accessibility_report_" + repoName + ".txt", nil
}

func (f *fakeReportWriter) Fixes(_ []orchestrator.CritiqueRecord, repoName string) (string, error) {
	if f.failFixes {
		return "", errors.New("disk full")
	}
	return "reports/fix_report_" + repoName + ".txt", nil
}

func (f *fakeReportWriter) Critiques(_ []orchestrator.CritiqueRecord, repoName string) (string, error) {
	return "reports/critique_report_" + repoName + ".txt", nil
}

func TestReporter_WritesAllThreeArtifacts(t *testing.T) {
	reporter := NewReporter(&fakeReportWriter{}, logging.NewTestLogger().Logger)
	state := orchestrator.NewPipelineState("url", "site")

	require.NoError(t, reporter.Execute(context.Background(), state))

	assert.Len(t, state.Reports, 3)
	assert.Contains(t, state.Reports[orchestrator.ReportAccessibility], "accessibility_report_site")
	assert.Contains(t, state.Reports[orchestrator.ReportFixes], "fix_report_site")
	assert.Contains(t, state.Reports[orchestrator.ReportCritiques], "critique_report_site")
	assert.Empty(t, state.Errors)
}

func TestReporter_OneFailureDoesNotLoseOthers(t *testing.T) {
	reporter := NewReporter(&fakeReportWriter{failFixes: true}, logging.NewTestLogger().Logger)
	state := orchestrator.NewPipelineState("url", "site")

	require.NoError(t, reporter.Execute(context.Background(), state))

	assert.Len(t, state.Reports, 2)
	assert.NotContains(t, state.Reports, orchestrator.ReportFixes)
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "fix report")
}
