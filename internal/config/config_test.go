package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "macrocycle/internal/errors"
)

// chdir runs the test from an empty directory so no stray config or .env file is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	t.Setenv(ConfigFileEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "1990 1Q", cfg.Analysis.BaseQuarter)
	assert.Equal(t, 0.8, cfg.Analysis.ProminenceFactor)
	assert.Equal(t, 2.0, cfg.Analysis.ShockMultiplier)
	assert.Equal(t, "auto", cfg.Analysis.SmoothingMethod)
	assert.Equal(t, 5, cfg.Analysis.SmoothingWindow)
	assert.Equal(t, 2, cfg.Analysis.SmoothingOrder)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, []string{"csv", "xlsx"}, cfg.Output.Formats)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.Equal(t, "info", cfg.LogLevel())
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdir(t)

	yamlPath := filepath.Join(dir, "custom.yaml")
	content := `
analysis:
  base_quarter: "2000Q1"
  shock_multiplier: 1.5
output:
  dir: results
  formats: [csv]
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o644))
	t.Setenv("MACRO_SERVER_PORT", "9100")
	t.Setenv("MACRO_ANALYSIS_VERBOSE", "true")

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, "2000Q1", cfg.Analysis.BaseQuarter, "file overrides default")
	assert.Equal(t, 1.5, cfg.Analysis.ShockMultiplier)
	assert.Equal(t, 0.8, cfg.Analysis.ProminenceFactor, "keys absent from the file keep their default")
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, []string{"csv"}, cfg.Output.Formats)
	assert.Equal(t, 9100, cfg.Server.Port, "environment overrides file")
	assert.Equal(t, "debug", cfg.LogLevel(), "verbose raises the log level")
}

func TestLoad_ConfigFileEnv(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "from-env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: envdir\n"), 0o644))
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "envdir", cfg.Output.Dir)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	t.Setenv(ConfigFileEnv, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte("MACRO_OUTPUT_DIR=dotenv-out\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MACRO_OUTPUT_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-out", cfg.Output.Dir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		file      string
		wantField string
	}{
		{
			name:      "unparseable base quarter",
			env:       map[string]string{"MACRO_ANALYSIS_BASE_QUARTER": "nineteen ninety"},
			wantField: "Config.Analysis.BaseQuarter",
		},
		{
			name:      "unknown smoothing method",
			env:       map[string]string{"MACRO_ANALYSIS_SMOOTHING_METHOD": "lowess"},
			wantField: "Config.Analysis.SmoothingMethod",
		},
		{
			name:      "unsupported export format",
			env:       map[string]string{"MACRO_OUTPUT_FORMATS": "csv,pdf"},
			wantField: "Config.Output.Formats[1]",
		},
		{
			name:      "port out of range",
			file:      "server:\n  port: 70000\n",
			wantField: "Config.Server.Port",
		},
		{
			name:      "malformed yaml",
			file:      "analysis: [unclosed\n",
			wantField: "config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdir(t)
			t.Setenv(ConfigFileEnv, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(dir, "c.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			}

			_, err := Load(path)
			require.Error(t, err)

			var cfgErr *apperrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("does-not-exist.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Usage(&buf))
	assert.Contains(t, buf.String(), "MACRO_ANALYSIS_BASE_QUARTER")
	assert.Contains(t, buf.String(), "MACRO_SERVER_RATE_LIMIT_RPS")
}
