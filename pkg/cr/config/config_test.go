package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/creditrisk/pkg/cr/decision"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "table", c.Format)
	assert.Equal(t, 4, c.Concurrency)
	assert.Equal(t, 15*time.Second, c.Timeout)
	assert.Nil(t, c.RiskFreeRate)
	assert.Equal(t, 0.04, c.RiskFreeFallback)
	assert.Equal(t, "^TNX", c.RiskFreeSymbol)
	assert.Equal(t, decision.DefaultConfig(), c.Decision)
	assert.Equal(t, []string{"working_capital", "retained_earnings"}, c.ZeroFill)
	assert.Equal(t, 3, c.MinHistoryWarn)
	assert.Contains(t, c.Keywords.Financial, "bank")
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("CR_CONCURRENCY", "8")
	t.Setenv("CR_BOUNDARY", "STRICT")
	t.Setenv("CR_RISK_FREE_RATE", "0.035")
	t.Setenv("CR_THRESHOLDS_MERTON_DISTRESS", "0.1")
	t.Setenv("CR_ZERO_FILL", "retained_earnings")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 8, c.Concurrency)
	assert.Equal(t, decision.BoundaryStrict, c.Decision.Boundary)
	require.NotNil(t, c.RiskFreeRate)
	assert.Equal(t, 0.035, *c.RiskFreeRate)
	assert.Equal(t, 0.1, c.Decision.Merton.Distress)
	assert.Equal(t, []string{"retained_earnings"}, c.ZeroFill)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
format: json
columns: [ticker, zscore, verdict]
thresholds:
  z:
    safe: 3.0
keywords:
  manufacturing: [widget]
`), 0o644))

	v := New()
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "json", c.Format)
	assert.Equal(t, []string{"ticker", "zscore", "verdict"}, c.Columns)
	assert.Equal(t, 3.0, c.Decision.Z.Safe)
	assert.Equal(t, 1.81, c.Decision.Z.Distress)
	assert.Equal(t, []string{"widget"}, c.Keywords.Manufacturing)
}

func TestReadFileMissingExplicitPath(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestReadFileNoDefaultFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CR_CONFIG", "")
	assert.NoError(t, ReadFile(New(), ""))
}

func TestLoadValidation(t *testing.T) {
	tests := map[string]map[string]any{
		"format":        {KeyFormat: "xml"},
		"concurrency":   {KeyConcurrency: 0},
		"boundary":      {KeyBoundary: "lenient"},
		"rate":          {KeyRiskFreeRate: "abc"},
		"zero fill":     {KeyZeroFill: []string{"ebit"}},
		"thresholds":    {"thresholds.zpp.safe": 1.0},
		"timeout":       {KeyTimeout: "0s"},
		"cache size":    {KeyCacheSize: 0},
		"history warn":  {KeyMinHistoryWarn: -1},
		"merton bounds": {"thresholds.merton.safe": 0.5},
	}
	for name, overrides := range tests {
		t.Run(name, func(t *testing.T) {
			v := New()
			for k, val := range overrides {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CR_TEST_DOTENV_FORMAT=json\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CR_TEST_DOTENV_FORMAT") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "json", os.Getenv("CR_TEST_DOTENV_FORMAT"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

// chdirTemp is the Go 1.21 equivalent of t.Chdir(t.TempDir()).
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
