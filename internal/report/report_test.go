package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return ts }
}

func sampleIssues() []orchestrator.DefectRecord {
	return []orchestrator.DefectRecord{
		{
			File:           "index.html",
			Line:           1,
			Severity:       orchestrator.SeverityCritical,
			WCAG:           "1.1.1",
			Category:       orchestrator.CategoryPerceivable,
			Description:    "Image missing alt text",
			Impact:         "Screen reader users cannot understand image content",
			Recommendation: "Add descriptive alt attribute",
		},
		{
			File:     "styles.css",
			Line:     40,
			Severity: orchestrator.SeverityMedium,
			WCAG:     "1.4.3",
			Category: orchestrator.CategoryPerceivable,
		},
	}
}

func TestAccessibilityReport(t *testing.T) {
	gen := NewGenerator(t.TempDir(), fixedClock())

	path, err := gen.Accessibility(sampleIssues(), "site")
	require.NoError(t, err)

	assert.Equal(t, "accessibility_report_site_20260314_092653.txt", filepath.Base(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(body)
	assert.Contains(t, content, "ACCESSIBILITY AUDIT REPORT")
	assert.Contains(t, content, "Repository: site")
	assert.Contains(t, content, "Generated: 2026-03-14 09:26:53")
	assert.Contains(t, content, "Total Issues Found: 2")
	assert.Contains(t, content, "Critical: 1")
	assert.Contains(t, content, "Medium: 1")
	assert.Contains(t, content, "Issue #1")
	assert.Contains(t, content, "File: index.html")
	assert.Contains(t, content, "WCAG: 1.1.1")
}

func TestFixReport_OnlyApprovedWithExplanation(t *testing.T) {
	gen := NewGenerator(t.TempDir(), fixedClock())

	critiques := []orchestrator.CritiqueRecord{
		{
			File:     "index.html",
			Approved: true,
			OriginalFix: orchestrator.FixResult{
				Success:     true,
				Explanation: "added alt attribute",
			},
		},
		{
			File:        "styles.css",
			Approved:    false,
			OriginalFix: orchestrator.FixResult{Explanation: "rejected change"},
		},
		{
			File:        "app.js",
			Approved:    true,
			OriginalFix: orchestrator.FixResult{Explanation: ""},
		},
	}

	path, err := gen.Fixes(critiques, "site")
	require.NoError(t, err)
	assert.Equal(t, "fix_report_site_20260314_092653.txt", filepath.Base(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(body)
	assert.Contains(t, content, "Total Files Modified: 1")
	assert.Contains(t, content, "File: index.html")
	assert.Contains(t, content, "- added alt attribute")
	assert.NotContains(t, content, "styles.css", "rejected fixes are excluded")
	assert.NotContains(t, content, "app.js", "fixes without explanation are excluded")
}

func TestCritiqueReport(t *testing.T) {
	gen := NewGenerator(t.TempDir(), fixedClock())

	critiques := []orchestrator.CritiqueRecord{
		{
			File:        "index.html",
			Approved:    true,
			Rating:      9,
			Strengths:   []string{"solves the issue"},
			Weaknesses:  []string{"verbose alt text"},
			Suggestions: []string{"shorten the description"},
		},
	}

	path, err := gen.Critiques(critiques, "site")
	require.NoError(t, err)
	assert.Equal(t, "critique_report_site_20260314_092653.txt", filepath.Base(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(body)
	assert.Contains(t, content, "SOLUTION CRITIQUE REPORT")
	assert.Contains(t, content, "Rating: 9/10")
	assert.Contains(t, content, "+ solves the issue")
	assert.Contains(t, content, "- verbose alt text")
	assert.Contains(t, content, "* shorten the description")
	assert.Contains(t, content, "Approved: true")
}

func TestReports_DeterministicBodies(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	genA := NewGenerator(dirA, fixedClock())
	genB := NewGenerator(dirB, fixedClock())

	pathA, err := genA.Accessibility(sampleIssues(), "site")
	require.NoError(t, err)
	pathB, err := genB.Accessibility(sampleIssues(), "site")
	require.NoError(t, err)

	bodyA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	bodyB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, bodyA, bodyB, "identical state and clock produce byte-identical bodies")
}

func TestGenerator_SlashedRepoNameStaysInReportsDir(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, fixedClock())

	path, err := gen.Accessibility(sampleIssues(), "org/site")
	require.NoError(t, err)

	assert.Equal(t, "accessibility_report_org_site_20260314_092653.txt", filepath.Base(path))
	assert.Equal(t, dir, filepath.Dir(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Repository: org/site")
}

func TestGenerator_CreatesReportsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	gen := NewGenerator(dir, fixedClock())

	_, err := gen.Accessibility(nil, "site")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
