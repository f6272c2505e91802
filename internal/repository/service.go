// Package repository provides the git-backed repository provider: clone to
// an ephemeral directory, enumerate source files by extension allow-list,
// and branch/commit/push for publication.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/config"
	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
)

// skipDirs are directory names never descended into during enumeration.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"__pycache__":  {},
	"dist":         {},
	"build":        {},
	"vendor":       {},
	"target":       {},
	".next":        {},
	".cache":       {},
	".idea":        {},
	".vscode":      {},
	".svn":         {},
	".hg":          {},
	".venv":        {},
	"venv":         {},
}

// Service handles clone, enumeration, and publication against a single
// working clone. Each run owns its own Service so concurrent runs never
// share a working directory.
type Service struct {
	tempDir     string
	extensions  []string
	maxFileSize int64
	token       config.Secret
	logger      *logging.Logger

	clonePath string
}

// NewService creates a repository service from configuration.
func NewService(cfg config.RepositoryConfig, token config.Secret, logger *logging.Logger) *Service {
	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = config.DefaultExtensions()
	}
	return &Service{
		tempDir:     cfg.TempDir,
		extensions:  extensions,
		maxFileSize: cfg.MaxFileSize,
		token:       token,
		logger:      logger,
	}
}

// Clone checks the repository out into a fresh temporary directory and
// returns its path. The directory lives until Cleanup.
func (s *Service) Clone(ctx context.Context, url string) (string, error) {
	dir, err := os.MkdirTemp(s.tempDir, "a11ypipe-clone-")
	if err != nil {
		return "", fmt.Errorf("create clone dir: %w", err)
	}

	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Auth: s.auth(),
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("clone %s: %w", url, err)
	}

	s.clonePath = dir
	s.logger.Info(ctx, "repository cloned", zap.String("dir", dir))
	return dir, nil
}

// ListSourceFiles walks the clone and returns allow-listed files keyed by
// repo-relative path. Unreadable, oversized, and non-UTF-8 files are
// skipped with a warning.
func (s *Service) ListSourceFiles(ctx context.Context, root string) (map[string]string, error) {
	files := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.allowedExtension(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if s.maxFileSize > 0 {
			info, err := d.Info()
			if err != nil {
				s.logger.Warn(ctx, "could not stat file", zap.String("file", rel), zap.Error(err))
				return nil
			}
			if info.Size() > s.maxFileSize {
				s.logger.Warn(ctx, "skipping oversized file",
					zap.String("file", rel), zap.Int64("size", info.Size()))
				return nil
			}
		}

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn(ctx, "could not read file", zap.String("file", rel), zap.Error(err))
			return nil
		}
		if !utf8.Valid(content) {
			s.logger.Warn(ctx, "skipping non-text file", zap.String("file", rel))
			return nil
		}

		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", root, err)
	}

	return files, nil
}

// CreateBranch creates and checks out a new branch in the clone. Fails if
// the branch already exists.
func (s *Service) CreateBranch(ctx context.Context, repoPath, name string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	err = wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}

	s.logger.Info(ctx, "branch created", zap.String("branch", name))
	return nil
}

// CommitAll stages the entire working tree and commits it.
func (s *Service) CommitAll(ctx context.Context, repoPath, message string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "a11ypipe",
			Email: "a11ypipe@localhost",
		},
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info(ctx, "changes committed")
	return nil
}

// Push pushes the named branch to origin.
func (s *Service) Push(ctx context.Context, repoPath, branch string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	refspec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(refspec)},
		Auth:       s.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push %s: %w", branch, err)
	}

	s.logger.Info(ctx, "branch pushed", zap.String("branch", branch))
	return nil
}

// Cleanup removes the ephemeral clone directory, if any.
func (s *Service) Cleanup(ctx context.Context) {
	if s.clonePath == "" {
		return
	}
	if err := os.RemoveAll(s.clonePath); err != nil {
		s.logger.Warn(ctx, "could not clean up clone dir",
			zap.String("dir", s.clonePath), zap.Error(err))
		return
	}
	s.logger.Debug(ctx, "clone dir removed", zap.String("dir", s.clonePath))
	s.clonePath = ""
}

func (s *Service) allowedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// auth returns token auth for clone/push, or nil for anonymous access.
func (s *Service) auth() transport.AuthMethod {
	if !s.token.IsSet() {
		return nil
	}
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: s.token.Value(),
	}
}
