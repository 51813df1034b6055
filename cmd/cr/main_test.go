package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/komsit37/creditrisk/pkg/cr/config"
	"github.com/komsit37/creditrisk/pkg/cr/types"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	chdirTemp(t)
	var out, errOut bytes.Buffer
	a := &app{v: config.New(), stdin: strings.NewReader(stdin), stdout: &out, stderr: &errOut}
	root := a.rootCmd()
	root.SetArgs(append([]string{"--color=false"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "", "classify", "Auto Manufacturers", "Banks - Regional", "Widgets")
	require.NoError(t, err)
	assert.Contains(t, out, "manufacturing")
	assert.Contains(t, out, "financial")
	assert.Contains(t, out, "unclassified")
	assert.Contains(t, out, "not recognized")
}

func TestSetsCommand(t *testing.T) {
	out, err := run(t, "", "sets")
	require.NoError(t, err)
	assert.Contains(t, out, "@altman")
	assert.Contains(t, out, "@merton")
	assert.Contains(t, out, "merton_verdict")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	_, err := run(t, "", "--format", "xml", "sets")
	assert.ErrorContains(t, err, "unknown format")
}

func TestAnalyzeRejectsBadFilter(t *testing.T) {
	_, err := run(t, "", "analyze", "AAPL", "--filter", "sector:tech")
	assert.ErrorContains(t, err, "unknown key")
}

func TestAnalyzePromptWithoutInput(t *testing.T) {
	_, err := run(t, "", "analyze")
	assert.ErrorContains(t, err, "no tickers entered")
}

func TestAnalyzePromptBlankLine(t *testing.T) {
	_, err := run(t, "  ,  \n", "analyze")
	assert.ErrorContains(t, err, "no tickers to analyze")
}

func TestMaxColWidth(t *testing.T) {
	assert.Equal(t, 0, maxColWidth(0, 6))
	assert.Equal(t, 0, maxColWidth(120, 0))
	assert.Equal(t, 20, maxColWidth(120, 6))
	assert.Equal(t, 12, maxColWidth(40, 10))
}

func TestRunID(t *testing.T) {
	outs := []types.Outcome{
		{Ticker: "X", Err: &types.AnalysisError{Ticker: "X"}},
		{Ticker: "A", Report: &types.AnalysisReport{RunID: "run-7"}},
	}
	assert.Equal(t, "run-7", runID(outs))
	assert.NotEmpty(t, runID(outs[:1]))
}

func TestFailedTickersError(t *testing.T) {
	e1 := &types.AnalysisError{Ticker: "X", Kind: types.KindInsufficientData, Message: "insufficient data: ebit is missing"}
	e2 := &types.AnalysisError{Ticker: "Y", Kind: types.KindDataProvider, Message: "data provider: Y: down"}
	err := error(&failedTickersError{count: 2, errs: multierr.Combine(e1, e2)})

	assert.Equal(t, "2 ticker(s) failed", err.Error())
	var failed *failedTickersError
	require.True(t, errors.As(err, &failed))
	assert.Len(t, multierr.Errors(failed.errs), 2)
	var ae *types.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "X", ae.Ticker)
}

func TestColumnsEnv(t *testing.T) {
	t.Setenv("COLUMNS", "132")
	assert.Equal(t, 132, columnsEnv())
	t.Setenv("COLUMNS", "wide")
	assert.Equal(t, 0, columnsEnv())
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
