// Package config provides configuration loading for a11ypipe.
package config

import (
	"fmt"
	"time"
)

// Critique error policies. These control what the critique stage does when
// the review call itself fails (network or parse error).
const (
	CritiqueErrorAutoApprove = "auto_approve"
	CritiqueErrorAutoReject  = "auto_reject"
	CritiqueErrorPropagate   = "propagate"
)

// Config is the root configuration for a11ypipe.
type Config struct {
	Oracle     OracleConfig     `koanf:"oracle"`
	GitHub     GitHubConfig     `koanf:"github"`
	Repository RepositoryConfig `koanf:"repository"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// OracleConfig configures the LLM oracle client.
type OracleConfig struct {
	// APIKey authenticates against the chat-completions endpoint.
	APIKey Secret `koanf:"api_key"`

	// BaseURL points at an OpenAI-compatible API root.
	BaseURL string `koanf:"base_url"`

	// Model is the model identifier sent with every request.
	Model string `koanf:"model"`

	// Temperature is a pointer so an explicit 0 is distinguishable from
	// unset; nil defaults to 0.1.
	Temperature *float64 `koanf:"temperature"`
	MaxTokens   int      `koanf:"max_tokens"`

	// RequestsPerSecond gates request frequency to respect upstream quota.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	Timeout    Duration `koanf:"timeout"`
	MaxRetries int      `koanf:"max_retries"`
}

// GitHubConfig configures branch/PR publication.
type GitHubConfig struct {
	Token      Secret `koanf:"token"`
	BaseBranch string `koanf:"base_branch"`
	BranchName string `koanf:"branch_name"`
}

// RepositoryConfig configures cloning and source enumeration.
type RepositoryConfig struct {
	// TempDir is the parent directory for ephemeral clones. Empty means
	// the system temp directory.
	TempDir string `koanf:"temp_dir"`

	// Extensions is the source-file allow-list.
	Extensions []string `koanf:"extensions"`

	// MaxFileSize caps individual file reads, in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`
}

// PipelineConfig configures the orchestration engine.
type PipelineConfig struct {
	ReportsDir string `koanf:"reports_dir"`

	// MaxDelegateAttempts bounds the critique retry loop. When the cap is
	// reached the gate proceeds best-effort instead of cycling.
	MaxDelegateAttempts int `koanf:"max_delegate_attempts"`

	// OnCritiqueError is one of auto_approve, auto_reject, propagate.
	OnCritiqueError string `koanf:"on_critique_error"`

	// AnalyzeContentBudget and LocateContentBudget cap file content sent
	// to the oracle, in characters.
	AnalyzeContentBudget int `koanf:"analyze_content_budget"`
	LocateContentBudget  int `koanf:"locate_content_budget"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultExtensions is the source-file allow-list when none is configured.
func DefaultExtensions() []string {
	return []string{".html", ".htm", ".css", ".js", ".jsx", ".tsx", ".vue"}
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Oracle.BaseURL == "" {
		cfg.Oracle.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "moonshotai/kimi-k2-instruct"
	}
	if cfg.Oracle.Temperature == nil {
		temp := 0.1
		cfg.Oracle.Temperature = &temp
	}
	if cfg.Oracle.MaxTokens == 0 {
		cfg.Oracle.MaxTokens = 5000
	}
	if cfg.Oracle.RequestsPerSecond == 0 {
		cfg.Oracle.RequestsPerSecond = 0.5
	}
	if cfg.Oracle.Burst == 0 {
		cfg.Oracle.Burst = 1
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = Duration(60 * time.Second)
	}
	if cfg.Oracle.MaxRetries == 0 {
		cfg.Oracle.MaxRetries = 3
	}

	if cfg.GitHub.BaseBranch == "" {
		cfg.GitHub.BaseBranch = "main"
	}
	if cfg.GitHub.BranchName == "" {
		cfg.GitHub.BranchName = "accessibility-fixes"
	}

	if len(cfg.Repository.Extensions) == 0 {
		cfg.Repository.Extensions = DefaultExtensions()
	}
	if cfg.Repository.MaxFileSize == 0 {
		cfg.Repository.MaxFileSize = 1024 * 1024 // 1MB
	}

	if cfg.Pipeline.ReportsDir == "" {
		cfg.Pipeline.ReportsDir = "reports"
	}
	if cfg.Pipeline.MaxDelegateAttempts == 0 {
		cfg.Pipeline.MaxDelegateAttempts = 3
	}
	if cfg.Pipeline.OnCritiqueError == "" {
		cfg.Pipeline.OnCritiqueError = CritiqueErrorAutoApprove
	}
	if cfg.Pipeline.AnalyzeContentBudget == 0 {
		cfg.Pipeline.AnalyzeContentBudget = 8000
	}
	if cfg.Pipeline.LocateContentBudget == 0 {
		cfg.Pipeline.LocateContentBudget = 6000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Oracle.RequestsPerSecond <= 0 {
		return fmt.Errorf("oracle.requests_per_second must be > 0, got %v", c.Oracle.RequestsPerSecond)
	}
	if c.Oracle.Burst < 1 {
		return fmt.Errorf("oracle.burst must be >= 1, got %d", c.Oracle.Burst)
	}
	if t := c.Oracle.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("oracle.temperature must be in [0,2], got %v", *t)
	}
	if c.Oracle.MaxRetries < 0 {
		return fmt.Errorf("oracle.max_retries must be >= 0, got %d", c.Oracle.MaxRetries)
	}

	if c.Pipeline.MaxDelegateAttempts < 1 {
		return fmt.Errorf("pipeline.max_delegate_attempts must be >= 1, got %d", c.Pipeline.MaxDelegateAttempts)
	}
	switch c.Pipeline.OnCritiqueError {
	case CritiqueErrorAutoApprove, CritiqueErrorAutoReject, CritiqueErrorPropagate:
	default:
		return fmt.Errorf("pipeline.on_critique_error must be one of auto_approve, auto_reject, propagate; got %q", c.Pipeline.OnCritiqueError)
	}
	if c.Pipeline.AnalyzeContentBudget < 1 {
		return fmt.Errorf("pipeline.analyze_content_budget must be >= 1, got %d", c.Pipeline.AnalyzeContentBudget)
	}
	if c.Pipeline.LocateContentBudget < 1 {
		return fmt.Errorf("pipeline.locate_content_budget must be >= 1, got %d", c.Pipeline.LocateContentBudget)
	}

	if c.Repository.MaxFileSize > 10*1024*1024 {
		return fmt.Errorf("repository.max_file_size cannot exceed 10MB")
	}
	for _, ext := range c.Repository.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("repository.extensions entries must start with '.', got %q", ext)
		}
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	return nil
}
