// Package main implements the a11ypipe CLI: audit a repository for
// accessibility defects through the staged oracle pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/a11ypipe/internal/agents"
	"github.com/fyrsmithlabs/a11ypipe/internal/config"
	gh "github.com/fyrsmithlabs/a11ypipe/internal/github"
	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"github.com/fyrsmithlabs/a11ypipe/internal/oracle"
	"github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"
	"github.com/fyrsmithlabs/a11ypipe/internal/report"
	"github.com/fyrsmithlabs/a11ypipe/internal/repository"
)

var (
	configPath string
	repoName   string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "a11ypipe",
	Short: "Accessibility audit pipeline",
	Long: `a11ypipe audits a web repository for accessibility defects: it clones
the repository, asks an LLM oracle to detect and locate WCAG violations,
delegates fixes to specialized personas, reviews them, and optionally
publishes an accessibility-fixes branch with a pull request.`,
	Version: version,
}

var auditCmd = &cobra.Command{
	Use:   "audit <repo-url>",
	Short: "Run a full accessibility audit against a repository",
	Long: `Run the seven-stage audit pipeline against a repository URL.

Examples:
  # Audit a public repository
  a11ypipe audit https://github.com/org/site

  # Name the repository explicitly (used in reports and PRs)
  a11ypipe audit --repo-name org/site https://github.com/org/site

  # Use a config file
  a11ypipe audit --config a11ypipe.yaml https://github.com/org/site`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	auditCmd.Flags().StringVar(&repoName, "repo-name", "", "repository name (owner/repo); derived from the URL when empty")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	repoURL := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logging.NewDefaultConfig()
	if cfg.Logging.Level != "" {
		level, err := logging.LevelFromString(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		logCfg.Level = level
	}
	if cfg.Logging.Format != "" {
		logCfg.Format = cfg.Logging.Format
	}

	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := logging.WithLogger(cmd.Context(), logger)

	name := repoName
	if name == "" {
		name = orchestrator.RepoNameFromURL(repoURL)
	}
	ctx = logging.WithRepo(ctx, name)
	ctx = logging.WithRunID(ctx, fmt.Sprintf("%d", time.Now().UnixNano()))

	state, err := runPipeline(ctx, cfg, logger, repoURL, name)
	if err != nil {
		return err
	}

	printSummary(cmd, state)
	return nil
}

// runPipeline wires the collaborators and drives one run.
func runPipeline(ctx context.Context, cfg *config.Config, logger *logging.Logger, repoURL, repoName string) (*orchestrator.PipelineState, error) {
	oracleClient, err := oracle.NewClient(cfg.Oracle)
	if err != nil {
		return nil, fmt.Errorf("create oracle client: %w", err)
	}

	repoSvc := repository.NewService(cfg.Repository, cfg.GitHub.Token, logger)
	defer repoSvc.Cleanup(ctx)

	// PR creation is optional: without a token the publish stage still
	// branches and pushes, and notes the skipped PR.
	var pr agents.PullRequester
	if cfg.GitHub.Token.IsSet() {
		client, err := gh.NewClient(ctx, cfg.GitHub.Token, logger)
		if err != nil {
			logger.Warn(ctx, "GitHub client unavailable, PR creation disabled", zap.Error(err))
		} else {
			pr = client
		}
	}

	reports := report.NewGenerator(cfg.Pipeline.ReportsDir, nil)

	engine := orchestrator.NewEngine(orchestrator.NewGate(cfg.Pipeline.MaxDelegateAttempts), logger)
	engine.Register(agents.NewCloner(repoSvc, logger))
	engine.Register(agents.NewAnalyzer(oracleClient, cfg.Pipeline.AnalyzeContentBudget, logger))
	engine.Register(agents.NewLocator(oracleClient, cfg.Pipeline.LocateContentBudget, logger))
	engine.Register(agents.NewManager(oracleClient, logger))
	engine.Register(agents.NewCritic(oracleClient, cfg.Pipeline.OnCritiqueError, logger))
	engine.Register(agents.NewPublisher(repoSvc, pr, agents.NewBackupMarkApplier(logger),
		cfg.GitHub.BranchName, cfg.GitHub.BaseBranch, logger))
	engine.Register(agents.NewReporter(reports, logger))

	state, err := engine.Run(ctx, orchestrator.NewPipelineState(repoURL, repoName))
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	return state, nil
}

func printSummary(cmd *cobra.Command, state *orchestrator.PipelineState) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Audit of %s complete.\n\n", state.RepoName)
	fmt.Fprintf(out, "Issues found:    %d\n", len(state.Issues))
	fmt.Fprintf(out, "Fixes attempted: %d\n", len(state.Fixes))
	fmt.Fprintf(out, "Approved:        %d/%d (%.1f%%)\n",
		state.ApprovedCount, len(state.Critiques), state.ApprovalRate)

	if r := state.GitHubResult; r != nil {
		fmt.Fprintf(out, "Published:       %t (%d files)\n", r.Success, r.FilesModified)
		if r.PullRequestURL != "" {
			fmt.Fprintf(out, "Pull request:    %s\n", r.PullRequestURL)
		}
		if r.Note != "" {
			fmt.Fprintf(out, "Note:            %s\n", r.Note)
		}
	}

	if len(state.Reports) > 0 {
		fmt.Fprintln(out, "\nReports:")
		for _, kind := range []string{
			orchestrator.ReportAccessibility,
			orchestrator.ReportFixes,
			orchestrator.ReportCritiques,
		} {
			if path, ok := state.Reports[kind]; ok {
				fmt.Fprintf(out, "  %s: %s\n", kind, path)
			}
		}
	}

	if len(state.Errors) > 0 {
		fmt.Fprintf(out, "\nDegraded steps (%d):\n", len(state.Errors))
		for _, e := range state.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}
}
