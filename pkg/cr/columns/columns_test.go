package columns

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

func sample() types.Outcome {
	x5 := 0.5
	return types.Outcome{Ticker: "ACME", Report: &types.AnalysisReport{
		Ticker:      "ACME",
		CompanyName: "Acme Corporation",
		Profile:     types.CompanyProfile{IndustryLabel: "Auto Manufacturers", Category: types.CategoryManufacturing, Variant: types.VariantZ},
		Snapshot:    types.FinancialSnapshot{MarketCap: types.Value(1_234_567_890), EBIT: types.Missing()},
		ZScore:      types.ZScoreResult{Variant: types.VariantZ, X1: 0.1, X5: &x5, Score: 3.14159},
		ZScoreDecision: types.Decision{
			Verdict: types.Approved, Zone: types.ZoneSafe,
		},
		Merton:         &types.MertonResult{ProbabilityOfDefault: 0.012345, DistanceToDefault: 2.25, RiskFreeRate: 0.0425},
		MertonDecision: &types.Decision{Verdict: types.Approved},
		Combined:       types.CombinedDecision{Verdict: types.Approved, Basis: "Z-Score: APPROVED | Merton: APPROVED"},
	}}
}

func resolve(t *testing.T, key string, o types.Outcome) string {
	t.Helper()
	d, ok := GetDef(key)
	require.True(t, ok, key)
	return d.Resolve(o)
}

func TestResolvers(t *testing.T) {
	o := sample()
	tests := map[string]string{
		"ticker":         "ACME",
		"name":           "Acme Corporation",
		"model":          "Z",
		"zscore":         "3.14",
		"x1":             "0.1000",
		"x5":             "0.5000",
		"pd":             "1.2345%",
		"dd":             "2.2500",
		"rf":             "4.25%",
		"verdict":        "APPROVED",
		"merton_verdict": "APPROVED",
		"market_cap":     "1.23B",
		"ebit":           "",
		"single_model":   "",
		"error":          "",
	}
	for key, want := range tests {
		assert.Equal(t, want, resolve(t, key, o), key)
	}
}

func TestResolversSingleModel(t *testing.T) {
	o := sample()
	o.Report.Merton, o.Report.MertonDecision = nil, nil
	o.Report.Combined.SingleModel = true
	assert.Equal(t, "n/a", resolve(t, "pd", o))
	assert.Equal(t, "n/a", resolve(t, "merton_verdict", o))
	assert.Equal(t, "yes", resolve(t, "single_model", o))
}

func TestResolversError(t *testing.T) {
	o := types.Outcome{Ticker: "XYZ", Err: &types.AnalysisError{
		Ticker: "XYZ", Kind: types.KindInsufficientData, Field: types.FieldEBIT, Message: "insufficient data: ebit is missing",
	}}
	assert.Equal(t, "ERROR", resolve(t, "verdict", o))
	assert.Equal(t, "", resolve(t, "zscore", o))
	assert.Equal(t, "XYZ", resolve(t, "sym", o))
	assert.Equal(t, "InsufficientDataError (ebit): insufficient data: ebit is missing", resolve(t, "error", o))
}

func TestCompute(t *testing.T) {
	defs, err := Compute(nil)
	require.NoError(t, err)
	assert.Equal(t, Default, keysOf(defs))

	defs, err = Compute([]string{"sym", "merton", "pd", "decision"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ticker", "dd", "pd", "mu", "sigma", "rf", "merton_verdict", "verdict"}, keysOf(defs))

	defs, err = Compute([]string{"@summary", "error"})
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, Default...), "error"), keysOf(defs))

	_, err = Compute([]string{"ticker", "beta"})
	var colErr *UnknownColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "beta", colErr.Name)

	_, err = Compute([]string{"@nope"})
	var setErr *UnknownSetError
	require.ErrorAs(t, err, &setErr)
}

func TestSetsReferenceKnownColumns(t *testing.T) {
	for name, cols := range Sets {
		for _, c := range cols {
			_, ok := Canonical(c)
			assert.True(t, ok, "set %s: column %s", name, c)
		}
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatFloat(1234567.891, 2))
	assert.Equal(t, "-1,000.0", FormatFloat(-1000, 1))
	assert.Equal(t, "12.50%", FormatPercent(0.125, 2))
	assert.Equal(t, "2.50T", FormatMoney(2.5e12))
	assert.Equal(t, "-450.00M", FormatMoney(-4.5e8))
	assert.Equal(t, "12.35K", FormatMoney(12345))
	assert.Equal(t, "999", FormatMoney(999))
	assert.Equal(t, "NaN", FormatFloat(math.NaN(), 2))
}

func keysOf(defs []Def) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Key
	}
	return out
}
