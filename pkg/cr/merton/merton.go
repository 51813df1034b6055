// Package merton implements the balance-sheet variant of the Merton model.
//
//	DD = [ln(V_A/D) + (μ − σ²/2)·T] / (σ·√T)
//	PD = 1 − Φ(DD)
//
// V_A and D are the latest total assets and total liabilities; μ and σ are
// the mean and sample standard deviation of year-over-year percentage
// changes in total assets. T is fixed at one year.
package merton

import (
	"math"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

const (
	// Horizon is T in years.
	Horizon = 1.0
	// MinChanges is the fewest year-over-year changes that yield a volatility.
	MinChanges = 2
)

// NormalCDF is the standard-normal CDF, Φ(x) = 0.5·(1 + erf(x/√2)).
func NormalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// PercentChanges returns (v[i] − v[i−1]) / |v[i−1]|. Pairs with a zero
// previous value have no defined change and are skipped.
func PercentChanges(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, (values[i]-prev)/math.Abs(prev))
	}
	return out
}

// DriftVolatility returns the mean and sample (n−1) standard deviation.
// It expects at least two observations.
func DriftVolatility(changes []float64) (mu, sigma float64) {
	n := float64(len(changes))
	for _, c := range changes {
		mu += c
	}
	mu /= n
	var ss float64
	for _, c := range changes {
		d := c - mu
		ss += d * d
	}
	return mu, math.Sqrt(ss / (n - 1))
}

// DistanceToDefault evaluates DD. Callers must ensure assets, debt and sigma
// are positive.
func DistanceToDefault(assets, debt, mu, sigma, horizon float64) float64 {
	return (math.Log(assets/debt) + (mu-sigma*sigma/2)*horizon) / (sigma * math.Sqrt(horizon))
}

// Calculator computes Merton results. The zero value is ready to use.
type Calculator struct{}

// Compute derives μ and σ from history and evaluates DD and PD.
func (Calculator) Compute(history types.AssetHistory, riskFreeRate float64) (types.MertonResult, error) {
	if math.IsNaN(riskFreeRate) || math.IsInf(riskFreeRate, 0) {
		return types.MertonResult{}, &types.InvalidInputError{Field: types.FieldRiskFreeRate, Value: riskFreeRate, Reason: "value is not finite"}
	}
	for _, p := range history {
		if math.IsNaN(p.TotalAssets) || math.IsInf(p.TotalAssets, 0) {
			return types.MertonResult{}, &types.InvalidInputError{Field: types.FieldAssetHistory, Value: p.TotalAssets, Reason: "total assets are not finite"}
		}
	}

	changes := PercentChanges(history.Assets())
	if len(changes) < MinChanges {
		return types.MertonResult{}, &types.InsufficientHistoryError{Have: len(changes), Need: MinChanges}
	}

	latest, _ := history.Latest()
	va, d := latest.TotalAssets, latest.TotalLiabilities
	if va <= 0 {
		return types.MertonResult{}, &types.InvalidInputError{Field: types.FieldTotalAssets, Value: va, Reason: "asset value must be positive"}
	}
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return types.MertonResult{}, &types.InvalidInputError{Field: types.FieldTotalLiabilities, Value: d, Reason: "debt must be positive"}
	}

	mu, sigma := DriftVolatility(changes)
	if sigma == 0 {
		return types.MertonResult{}, &types.ZeroVolatilityError{Observations: len(changes)}
	}

	dd := DistanceToDefault(va, d, mu, sigma, Horizon)
	return types.MertonResult{
		AssetValue:           va,
		Debt:                 d,
		Mu:                   mu,
		Sigma:                sigma,
		RiskFreeRate:         riskFreeRate,
		Horizon:              Horizon,
		DistanceToDefault:    dd,
		ProbabilityOfDefault: 1 - NormalCDF(dd),
		Observations:         len(changes),
	}, nil
}
