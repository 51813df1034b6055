package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

func ok(ticker string, v types.Verdict) types.Outcome {
	return types.Outcome{Ticker: ticker, Report: &types.AnalysisReport{Ticker: ticker, Combined: types.CombinedDecision{Verdict: v}}}
}

func failed(ticker string) types.Outcome {
	return types.Outcome{Ticker: ticker, Err: &types.AnalysisError{Ticker: ticker, Kind: types.KindInsufficientData}}
}

func TestParseMatcher(t *testing.T) {
	tests := []struct {
		expr  string
		name  string
		match bool
	}{
		{"", "ANY", true},
		{"aapl,msft", "MSFT", true},
		{"aapl,msft", "IBM", false},
		{"7*.T", "7203.T", true},
		{"7*.t", "7203.T", true},
		{"7*.T", "AAPL", false},
		{"/^BRK/", "BRK-B", true},
		{"/^BRK/", "XBRK", false},
		{"tech", "US/Tech", true},
	}
	for _, tt := range tests {
		m, err := ParseMatcher(tt.expr)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.match, m.Match(tt.name), "%q on %q", tt.expr, tt.name)
	}

	_, err := ParseMatcher("/[/")
	assert.Error(t, err)
}

func TestParseExpr(t *testing.T) {
	outs := []types.Outcome{
		ok("AAPL", types.Approved),
		ok("F", types.Denied),
		failed("XYZ"),
		ok("GM", types.ApprovedWithWarning),
	}
	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"AAPL", "F", "XYZ", "GM"}},
		{"verdict:denied,warning", []string{"F", "GM"}},
		{"verdict:APPROVED", []string{"AAPL"}},
		{"status:error", []string{"XYZ"}},
		{"status:ok", []string{"AAPL", "F", "GM"}},
		{"F,GM,XYZ verdict:denied", []string{"F"}},
		{"ticker:/^[A-F]/", []string{"AAPL", "F"}},
	}
	for _, tt := range tests {
		e, err := Parse(tt.expr)
		require.NoError(t, err, tt.expr)
		var got []string
		for _, o := range e.Apply(outs) {
			got = append(got, o.Ticker)
		}
		assert.Equal(t, tt.want, got, tt.expr)
	}
}

func TestParsePortfolio(t *testing.T) {
	e, err := Parse("portfolio:us/*")
	require.NoError(t, err)
	assert.True(t, e.MatchPortfolio("us/tech"))
	assert.False(t, e.MatchPortfolio("jp/autos"))
	assert.True(t, e.Match(ok("AAPL", types.Approved)))
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"verdict:maybe", "status:pending", "sector:tech", "ticker:/(/"} {
		_, err := Parse(expr)
		assert.Error(t, err, expr)
	}
}
