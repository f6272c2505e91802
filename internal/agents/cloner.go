package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
)

// SourceFetcher is the repository-provider surface the clone stage needs.
type SourceFetcher interface {
	// Clone checks the repository out into an ephemeral directory and
	// returns its path.
	Clone(ctx context.Context, url string) (string, error)

	// ListSourceFiles enumerates allow-listed source files under path,
	// keyed by repo-relative path.
	ListSourceFiles(ctx context.Context, path string) (map[string]string, error)
}

// Cloner is the first pipeline stage: clone the repository and enumerate
// its source files. On failure SourceFiles stays empty and downstream
// stages see zero work.
type Cloner struct {
	repo   SourceFetcher
	logger *logging.Logger
}

// NewCloner creates the clone stage.
func NewCloner(repo SourceFetcher, logger *logging.Logger) *Cloner {
	return &Cloner{repo: repo, logger: logger}
}

// Name implements orchestrator.Stage.
func (c *Cloner) Name() orchestrator.StageName {
	return orchestrator.StageClone
}

// Execute implements orchestrator.Stage.
func (c *Cloner) Execute(ctx context.Context, state *orchestrator.PipelineState) error {
	path, err := c.repo.Clone(ctx, state.RepoURL)
	if err != nil {
		return fmt.Errorf("clone %s: %w", state.RepoURL, err)
	}
	state.RepoPath = path

	files, err := c.repo.ListSourceFiles(ctx, path)
	if err != nil {
		return fmt.Errorf("enumerate source files: %w", err)
	}
	state.SourceFiles = files

	c.logger.Info(ctx, "repository cloned",
		zap.String("path", path),
		zap.Int("source_files", len(files)),
	)
	return nil
}
