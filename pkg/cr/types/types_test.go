package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictRankOrder(t *testing.T) {
	assert.Greater(t, Approved.Rank(), ApprovedWithWarning.Rank())
	assert.Greater(t, ApprovedWithWarning.Rank(), Denied.Rank())
	assert.Equal(t, Denied, Verdict(0), "zero verdict must be the most conservative")
}

func TestWorst(t *testing.T) {
	assert.Equal(t, Denied, Worst(Approved, Denied))
	assert.Equal(t, Denied, Worst(Denied, ApprovedWithWarning))
	assert.Equal(t, ApprovedWithWarning, Worst(Approved, ApprovedWithWarning))
	assert.Equal(t, Approved, Worst(Approved, Approved))
}

func TestVerdictJSON(t *testing.T) {
	b, err := json.Marshal(Decision{Model: ModelZScore, Verdict: ApprovedWithWarning, Zone: ZoneGrey})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"verdict":"APPROVED_WITH_WARNING"`)
}

func TestParseVerdict(t *testing.T) {
	for _, v := range []Verdict{Approved, ApprovedWithWarning, Denied} {
		got, err := ParseVerdict(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	got, err := ParseVerdict("warning")
	require.NoError(t, err)
	assert.Equal(t, ApprovedWithWarning, got)

	_, err = ParseVerdict("maybe")
	assert.Error(t, err)
}

func TestAssetHistoryLatest(t *testing.T) {
	_, ok := AssetHistory(nil).Latest()
	assert.False(t, ok)

	h := AssetHistory{{FiscalYear: 2022, TotalAssets: 10}, {FiscalYear: 2023, TotalAssets: 12, TotalLiabilities: 5}}
	p, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 2023, p.FiscalYear)
	assert.Equal(t, []float64{10, 12}, h.Assets())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  ErrorKind
		field string
	}{
		{"data", &InsufficientDataError{Field: FieldEBIT}, KindInsufficientData, FieldEBIT},
		{"history", &InsufficientHistoryError{Have: 1, Need: 2}, KindInsufficientHistory, FieldAssetHistory},
		{"volatility", &ZeroVolatilityError{Observations: 2}, KindZeroVolatility, ""},
		{"input", &InvalidInputError{Field: FieldTotalAssets, Value: -1}, KindInvalidInput, FieldTotalAssets},
		{"provider", &DataProviderError{Ticker: "X", Err: errors.New("boom")}, KindDataProvider, ""},
		{"wrapped", fmt.Errorf("zscore: %w", &InsufficientDataError{Field: FieldMarketCap}), KindInsufficientData, FieldMarketCap},
		{"plain", errors.New("boom"), KindInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.field, FieldOf(tt.err))
		})
	}
}

func TestNewAnalysisError(t *testing.T) {
	cause := errors.New("timeout")
	ae := NewAnalysisError("AAPL", &DataProviderError{Ticker: "AAPL", Err: cause})
	assert.Equal(t, KindDataProvider, ae.Kind)
	assert.ErrorIs(t, ae, cause)
	assert.Contains(t, ae.Error(), "AAPL")

	// Already classified errors pass through unchanged.
	assert.Same(t, ae, NewAnalysisError("AAPL", fmt.Errorf("wrap: %w", ae)))
}

func TestOutcomeOK(t *testing.T) {
	assert.True(t, Outcome{Ticker: "A", Report: &AnalysisReport{}}.OK())
	assert.False(t, Outcome{Ticker: "A", Err: &AnalysisError{}}.OK())
}
