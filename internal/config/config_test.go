package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret_Redaction(t *testing.T) {
	s := Secret("super-secret-key")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "Secret([REDACTED])", s.GoString())
	assert.Equal(t, "super-secret-key", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"[REDACTED]"`, string(data))

	assert.NotContains(t, fmt.Sprintf("%v %s %#v", s, s, s), "super-secret-key")
}

func TestSecret_Empty(t *testing.T) {
	var s Secret
	assert.Equal(t, "", s.String())
	assert.False(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `""`, string(data))
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, "https://api.groq.com/openai", cfg.Oracle.BaseURL)
	assert.Equal(t, 0.5, cfg.Oracle.RequestsPerSecond)
	assert.Equal(t, 5000, cfg.Oracle.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.Oracle.Timeout.Duration())
	assert.Equal(t, "main", cfg.GitHub.BaseBranch)
	assert.Equal(t, "accessibility-fixes", cfg.GitHub.BranchName)
	assert.Equal(t, DefaultExtensions(), cfg.Repository.Extensions)
	assert.Equal(t, 3, cfg.Pipeline.MaxDelegateAttempts)
	assert.Equal(t, CritiqueErrorAutoApprove, cfg.Pipeline.OnCritiqueError)
	assert.Equal(t, 8000, cfg.Pipeline.AnalyzeContentBudget)
	assert.Equal(t, 6000, cfg.Pipeline.LocateContentBudget)
	require.NotNil(t, cfg.Oracle.Temperature)
	assert.Equal(t, 0.1, *cfg.Oracle.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_KeepsExplicitZeroTemperature(t *testing.T) {
	var cfg Config
	zero := 0.0
	cfg.Oracle.Temperature = &zero
	applyDefaults(&cfg)

	require.NotNil(t, cfg.Oracle.Temperature)
	assert.Equal(t, 0.0, *cfg.Oracle.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitZeroTemperature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
oracle:
  temperature: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Oracle.Temperature)
	assert.Equal(t, 0.0, *cfg.Oracle.Temperature)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero rate",
			mutate:  func(c *Config) { c.Oracle.RequestsPerSecond = -1 },
			wantErr: "requests_per_second",
		},
		{
			name:    "bad critique policy",
			mutate:  func(c *Config) { c.Pipeline.OnCritiqueError = "shrug" },
			wantErr: "on_critique_error",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Pipeline.MaxDelegateAttempts = -2 },
			wantErr: "max_delegate_attempts",
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.Repository.Extensions = []string{"html"} },
			wantErr: "extensions",
		},
		{
			name:    "oversized file cap",
			mutate:  func(c *Config) { c.Repository.MaxFileSize = 50 * 1024 * 1024 },
			wantErr: "max_file_size",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			applyDefaults(&cfg)
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
oracle:
  model: from-file
  requests_per_second: 2
pipeline:
  max_delegate_attempts: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	t.Setenv("ORACLE_MODEL", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Oracle.Model, "env overrides file")
	assert.Equal(t, float64(2), cfg.Oracle.RequestsPerSecond, "file overrides default")
	assert.Equal(t, 5, cfg.Pipeline.MaxDelegateAttempts)
}

func TestLoad_RejectsWorldReadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle:\n  model: x\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "accessibility-fixes", cfg.GitHub.BranchName)
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "oracle.api_key", envTransform("ORACLE_API_KEY"))
	assert.Equal(t, "github.base_branch", envTransform("GITHUB_BASE_BRANCH"))
	assert.Equal(t, "", envTransform("PATH"), "unknown sections dropped")
	assert.Equal(t, "", envTransform("HOME"))
}
