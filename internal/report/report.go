// Package report writes the three per-run text artifacts: the
// accessibility issue listing, the per-file fix listing, and the critique
// detail listing. Bodies are deterministic given identical input and a
// fixed clock; filenames embed the repo name and a timestamp so two runs
// never collide.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

const (
	headerRule  = "================================================================================"
	sectionRule = "--------------------------------------------------------------------------------"

	timestampLayout = "20060102_150405"
	generatedLayout = "2006-01-02 15:04:05"
)

// Generator writes reports under a fixed directory.
type Generator struct {
	dir string
	now func() time.Time
}

// NewGenerator creates a generator writing under dir. A nil clock means
// time.Now; tests inject a fixed clock to pin filenames and bodies.
func NewGenerator(dir string, clock func() time.Time) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{dir: dir, now: clock}
}

// Accessibility writes the issue listing and returns the file path.
func (g *Generator) Accessibility(issues []orchestrator.DefectRecord, repoName string) (string, error) {
	ts := g.now()

	var b strings.Builder
	writeHeader(&b, "ACCESSIBILITY AUDIT REPORT", repoName, ts)

	b.WriteString("SUMMARY\n")
	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "Total Issues Found: %d\n", len(issues))

	bySeverity := make(map[string]int)
	for _, issue := range issues {
		bySeverity[string(issue.Severity)]++
	}
	severities := make([]string, 0, len(bySeverity))
	for sev := range bySeverity {
		severities = append(severities, sev)
	}
	sort.Strings(severities)
	for _, sev := range severities {
		fmt.Fprintf(&b, "%s: %d\n", sev, bySeverity[sev])
	}
	b.WriteString("\n")

	b.WriteString("DETAILED ISSUES\n")
	b.WriteString(sectionRule + "\n\n")
	for i, issue := range issues {
		fmt.Fprintf(&b, "Issue #%d\n", i+1)
		fmt.Fprintf(&b, "  File: %s\n", issue.File)
		fmt.Fprintf(&b, "  Line: %d\n", issue.Line.Int())
		fmt.Fprintf(&b, "  Severity: %s\n", issue.Severity)
		fmt.Fprintf(&b, "  Category: %s\n", issue.Category)
		fmt.Fprintf(&b, "  WCAG: %s\n", issue.WCAG)
		fmt.Fprintf(&b, "  Description: %s\n", issue.Description)
		fmt.Fprintf(&b, "  Impact: %s\n", issue.Impact)
		fmt.Fprintf(&b, "  Recommendation: %s\n", issue.Recommendation)
		b.WriteString("\n")
	}

	return g.write("accessibility", repoName, ts, b.String())
}

// Fixes writes the per-file fix listing, built only from approved
// critiques that carry an explanation, and returns the file path.
func (g *Generator) Fixes(critiques []orchestrator.CritiqueRecord, repoName string) (string, error) {
	ts := g.now()

	byFile := make(map[string][]orchestrator.CritiqueRecord)
	for _, c := range critiques {
		if c.Approved && c.OriginalFix.Explanation != "" && c.File != "" {
			byFile[c.File] = append(byFile[c.File], c)
		}
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	var b strings.Builder
	writeHeader(&b, "ACCESSIBILITY FIX REPORT", repoName, ts)

	b.WriteString("SUMMARY\n")
	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "Total Files Modified: %d\n\n", len(files))

	for _, f := range files {
		fmt.Fprintf(&b, "File: %s\n", f)
		fmt.Fprintf(&b, "  Issues Fixed: %d\n", len(byFile[f]))
		b.WriteString("  Changes Made:\n")
		for _, c := range byFile[f] {
			fmt.Fprintf(&b, "    - %s\n", c.OriginalFix.Explanation)
		}
		b.WriteString("\n")
	}

	return g.write("fix", repoName, ts, b.String())
}

// Critiques writes the per-critique detail listing and returns the file
// path.
func (g *Generator) Critiques(critiques []orchestrator.CritiqueRecord, repoName string) (string, error) {
	ts := g.now()

	var b strings.Builder
	writeHeader(&b, "SOLUTION CRITIQUE REPORT", repoName, ts)

	for i, c := range critiques {
		fmt.Fprintf(&b, "Critique #%d\n", i+1)
		fmt.Fprintf(&b, "  File: %s\n", c.File)
		fmt.Fprintf(&b, "  Rating: %d/10\n", c.Rating)
		b.WriteString("  Strengths:\n")
		for _, s := range c.Strengths {
			fmt.Fprintf(&b, "    + %s\n", s)
		}
		b.WriteString("  Weaknesses:\n")
		for _, w := range c.Weaknesses {
			fmt.Fprintf(&b, "    - %s\n", w)
		}
		b.WriteString("  Suggestions:\n")
		for _, s := range c.Suggestions {
			fmt.Fprintf(&b, "    * %s\n", s)
		}
		fmt.Fprintf(&b, "  Approved: %t\n", c.Approved)
		b.WriteString("\n")
	}

	return g.write("critique", repoName, ts, b.String())
}

func writeHeader(b *strings.Builder, title, repoName string, ts time.Time) {
	b.WriteString(headerRule + "\n")
	b.WriteString(title + "\n")
	fmt.Fprintf(b, "Repository: %s\n", repoName)
	fmt.Fprintf(b, "Generated: %s\n", ts.Format(generatedLayout))
	b.WriteString(headerRule + "\n\n")
}

func (g *Generator) write(kind, repoName string, ts time.Time, body string) (string, error) {
	if err := os.MkdirAll(g.dir, 0o750); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	name := fmt.Sprintf("%s_report_%s_%s.txt", kind, fileSafe(repoName), ts.Format(timestampLayout))
	path := filepath.Join(g.dir, name)

	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return "", fmt.Errorf("write %s report: %w", kind, err)
	}
	return path, nil
}

// fileSafe flattens path separators so a repository name like "owner/repo"
// stays a single filename component.
func fileSafe(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, "\\", "_")
}
