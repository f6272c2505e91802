package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

// GitWriter is the branch/commit/push surface the publish stage needs.
type GitWriter interface {
	CreateBranch(ctx context.Context, repoPath, name string) error
	CommitAll(ctx context.Context, repoPath, message string) error
	Push(ctx context.Context, repoPath, branch string) error
}

// PullRequester opens a pull request against the hosting provider and
// returns its URL.
type PullRequester interface {
	OpenPullRequest(ctx context.Context, repoName, title, body, head, base string) (string, error)
}

// PatchApplier applies approved fixes to the working tree and returns the
// repo-relative paths it touched. Pluggable so real diff/patch logic can
// replace the default without redesigning the stage.
type PatchApplier interface {
	Apply(ctx context.Context, repoPath string, fixesByFile map[string][]orchestrator.CritiqueRecord, sourceFiles map[string]string) ([]string, error)
}

// BackupMarkApplier is the default PatchApplier: it writes a .backup copy
// of each touched file and records the path as needing human review. No
// file content is mutated; automated patching is an unimplemented
// capability.
type BackupMarkApplier struct {
	logger *logging.Logger
}

// NewBackupMarkApplier creates the default applier.
func NewBackupMarkApplier(logger *logging.Logger) *BackupMarkApplier {
	return &BackupMarkApplier{logger: logger}
}

// Apply implements PatchApplier.
func (a *BackupMarkApplier) Apply(ctx context.Context, repoPath string, fixesByFile map[string][]orchestrator.CritiqueRecord, sourceFiles map[string]string) ([]string, error) {
	paths := make([]string, 0, len(fixesByFile))
	for path := range fixesByFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var modified []string
	for _, path := range paths {
		original, ok := sourceFiles[path]
		if !ok || original == "" {
			a.logger.Warn(ctx, "no original content for file, skipping",
				zap.String("file", path))
			continue
		}

		backup := filepath.Join(repoPath, path+".backup")
		if err := os.WriteFile(backup, []byte(original), 0o600); err != nil {
			a.logger.Warn(ctx, "could not write backup",
				zap.String("file", path), zap.Error(err))
			continue
		}

		a.logger.Info(ctx, "marked for review", zap.String("file", path))
		modified = append(modified, path)
	}

	return modified, nil
}

// Publisher is the sixth pipeline stage: apply approved fixes, then branch,
// commit, push, and open a pull request. Zero approved critiques is a
// normal outcome, not an error, and costs no provider calls. Branch and PR
// failures are non-fatal; push failure is the stage's one fatal condition.
type Publisher struct {
	git        GitWriter
	pr         PullRequester
	applier    PatchApplier
	branchName string
	baseBranch string
	logger     *logging.Logger
}

// NewPublisher creates the publish stage. pr may be nil when no hosting
// token is configured; PR creation is then skipped with a note.
func NewPublisher(git GitWriter, pr PullRequester, applier PatchApplier, branchName, baseBranch string, logger *logging.Logger) *Publisher {
	return &Publisher{
		git:        git,
		pr:         pr,
		applier:    applier,
		branchName: branchName,
		baseBranch: baseBranch,
		logger:     logger,
	}
}

// Name implements orchestrator.Stage.
func (p *Publisher) Name() orchestrator.StageName {
	return orchestrator.StagePublish
}

// Execute implements orchestrator.Stage.
func (p *Publisher) Execute(ctx context.Context, state *orchestrator.PipelineState) error {
	approved := approvedCritiques(state.Critiques)
	if len(approved) == 0 {
		state.GitHubResult = &orchestrator.PublishResult{
			Success:       false,
			FilesModified: 0,
			Note:          "No approved fixes to apply",
		}
		p.logger.Info(ctx, "nothing to publish")
		return nil
	}

	fixesByFile := make(map[string][]orchestrator.CritiqueRecord)
	for _, c := range approved {
		if c.File != "" {
			fixesByFile[c.File] = append(fixesByFile[c.File], c)
		}
	}

	modified, err := p.applier.Apply(ctx, state.RepoPath, fixesByFile, state.SourceFiles)
	if err != nil {
		state.GitHubResult = &orchestrator.PublishResult{
			Success: false,
			Error:   err.Error(),
			Note:    "Applying fixes failed",
		}
		return fmt.Errorf("apply fixes: %w", err)
	}
	if len(modified) == 0 {
		state.GitHubResult = &orchestrator.PublishResult{
			Success:       false,
			FilesModified: 0,
			Note:          "No files were modified",
		}
		return nil
	}

	// Branch may already exist; not fatal.
	if err := p.git.CreateBranch(ctx, state.RepoPath, p.branchName); err != nil {
		p.logger.Warn(ctx, "could not create branch",
			zap.String("branch", p.branchName), zap.Error(err))
	}

	message := commitMessage(approved)
	if err := p.git.CommitAll(ctx, state.RepoPath, message); err != nil {
		state.GitHubResult = &orchestrator.PublishResult{
			Success:       false,
			FilesModified: len(modified),
			BranchName:    p.branchName,
			Error:         err.Error(),
			Note:          "Files modified locally but commit failed",
		}
		return fmt.Errorf("commit: %w", err)
	}

	if err := p.git.Push(ctx, state.RepoPath, p.branchName); err != nil {
		state.GitHubResult = &orchestrator.PublishResult{
			Success:       false,
			FilesModified: len(modified),
			BranchName:    p.branchName,
			Error:         err.Error(),
			Note:          "Files modified locally but push to remote failed",
		}
		return fmt.Errorf("push %s: %w", p.branchName, err)
	}

	result := &orchestrator.PublishResult{
		Success:       true,
		FilesModified: len(modified),
		BranchName:    p.branchName,
	}

	if p.pr == nil {
		result.Note = "PR creation skipped: no hosting token configured"
	} else {
		url, err := p.pr.OpenPullRequest(ctx, state.RepoName,
			"Fix accessibility issues", prDescription(approved), p.branchName, p.baseBranch)
		if err != nil {
			p.logger.Warn(ctx, "could not create pull request", zap.Error(err))
			result.Note = "Changes pushed but PR creation failed"
		} else {
			result.PullRequestURL = url
		}
	}

	state.GitHubResult = result
	p.logger.Info(ctx, "publish complete",
		zap.Int("files_modified", result.FilesModified),
		zap.String("branch", result.BranchName),
		zap.String("pr", result.PullRequestURL),
	)
	return nil
}

func approvedCritiques(critiques []orchestrator.CritiqueRecord) []orchestrator.CritiqueRecord {
	var approved []orchestrator.CritiqueRecord
	for _, c := range critiques {
		if c.Approved {
			approved = append(approved, c)
		}
	}
	return approved
}

// commitMessage builds a deterministic message from the approved critiques,
// naming up to five issues.
func commitMessage(approved []orchestrator.CritiqueRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fix: Apply %d accessibility fixes\n\n", len(approved))
	b.WriteString("This commit addresses the following accessibility issues:\n\n")

	for i, c := range approved {
		if i >= 5 {
			break
		}
		desc := c.IssueDescription
		if desc == "" {
			desc = "Unknown issue"
		}
		if r := []rune(desc); len(r) > 80 {
			desc = string(r[:80])
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, desc)
	}

	if len(approved) > 5 {
		fmt.Fprintf(&b, "\n... and %d more fixes\n", len(approved)-5)
	}

	b.WriteString("\nGenerated by a11ypipe")
	return b.String()
}

// prDescription builds the deterministic pull-request body.
func prDescription(approved []orchestrator.CritiqueRecord) string {
	var b strings.Builder
	b.WriteString("## Accessibility Fixes\n\n")
	fmt.Fprintf(&b, "This PR addresses **%d** accessibility issues.\n\n", len(approved))

	files := make(map[string]struct{})
	for _, c := range approved {
		if c.File != "" {
			files[c.File] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(files))
	for f := range files {
		sorted = append(sorted, f)
	}
	sort.Strings(sorted)

	b.WriteString("### Changes\n\n")
	fmt.Fprintf(&b, "Modified %d files:\n\n", len(sorted))
	for _, f := range sorted {
		fmt.Fprintf(&b, "- `%s`\n", f)
	}

	b.WriteString("\n### Testing\n\n")
	b.WriteString("- [ ] Tested with keyboard navigation\n")
	b.WriteString("- [ ] Tested with screen reader\n")
	b.WriteString("- [ ] Verified color contrast\n")
	b.WriteString("- [ ] Checked responsive design\n")

	b.WriteString("\n---\n*Generated by a11ypipe*")
	return b.String()
}
