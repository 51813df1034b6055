// Package zscore computes the Altman Z-Score.
//
//	Z   (public manufacturers): 1.2·X1 + 1.4·X2 + 3.3·X3 + 0.6·X4 + 1.0·X5
//	Z'' (non-manufacturers):    6.56·X1 + 3.26·X2 + 6.72·X3 + 1.05·X4
//
//	X1 = Working Capital / Total Assets
//	X2 = Retained Earnings / Total Assets
//	X3 = EBIT / Total Assets
//	X4 = Market Value of Equity / Total Liabilities
//	X5 = Sales / Total Assets
package zscore

import (
	"math"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Weights are the coefficients for X1..X5.
type Weights struct {
	X1, X2, X3, X4, X5 float64
}

var weights = map[types.Variant]Weights{
	types.VariantZ:            {X1: 1.2, X2: 1.4, X3: 3.3, X4: 0.6, X5: 1.0},
	types.VariantZDoublePrime: {X1: 6.56, X2: 3.26, X3: 6.72, X4: 1.05},
}

// WeightsFor returns the coefficients of variant.
func WeightsFor(v types.Variant) (Weights, bool) {
	w, ok := weights[v]
	return w, ok
}

// Calculator computes Z-Scores. The zero value is ready to use.
type Calculator struct{}

// Compute returns the ratios and weighted score for variant. A zero
// denominator is an error, never a zero ratio.
func (Calculator) Compute(s types.FinancialSnapshot, v types.Variant) (types.ZScoreResult, error) {
	w, ok := WeightsFor(v)
	if !ok {
		return types.ZScoreResult{}, &types.InvalidInputError{Field: types.FieldVariant, Value: math.NaN(), Reason: "unknown Z-Score variant " + string(v)}
	}

	ta, err := denominator(types.FieldTotalAssets, s.TotalAssets)
	if err != nil {
		return types.ZScoreResult{}, err
	}
	tl, err := denominator(types.FieldTotalLiabilities, s.TotalLiabilities)
	if err != nil {
		return types.ZScoreResult{}, err
	}

	wc, err := numerator(types.FieldWorkingCapital, s.WorkingCapital)
	if err != nil {
		return types.ZScoreResult{}, err
	}
	re, err := numerator(types.FieldRetainedEarnings, s.RetainedEarnings)
	if err != nil {
		return types.ZScoreResult{}, err
	}
	ebit, err := numerator(types.FieldEBIT, s.EBIT)
	if err != nil {
		return types.ZScoreResult{}, err
	}
	mve, err := numerator(types.FieldMarketCap, s.MarketCap)
	if err != nil {
		return types.ZScoreResult{}, err
	}
	if mve < 0 {
		return types.ZScoreResult{}, &types.InvalidInputError{Field: types.FieldMarketCap, Value: mve, Reason: "market capitalization cannot be negative"}
	}

	res := types.ZScoreResult{
		Variant: v,
		X1:      wc / ta,
		X2:      re / ta,
		X3:      ebit / ta,
		X4:      mve / tl,
	}
	res.Score = w.X1*res.X1 + w.X2*res.X2 + w.X3*res.X3 + w.X4*res.X4

	if v == types.VariantZ {
		sales, err := numerator(types.FieldTotalRevenue, s.TotalRevenue)
		if err != nil {
			return types.ZScoreResult{}, err
		}
		x5 := sales / ta
		res.X5 = &x5
		res.Score += w.X5 * x5
	}
	return res, nil
}

func numerator(name string, f types.Field) (float64, error) {
	if !f.Valid {
		return 0, &types.InsufficientDataError{Field: name}
	}
	if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
		return 0, &types.InvalidInputError{Field: name, Value: f.Value, Reason: "value is not finite"}
	}
	return f.Value, nil
}

func denominator(name string, f types.Field) (float64, error) {
	v, err := numerator(name, f)
	if err != nil {
		return 0, err
	}
	switch {
	case v == 0:
		return 0, &types.InsufficientDataError{Field: name, Reason: "is zero; ratio undefined"}
	case v < 0:
		return 0, &types.InvalidInputError{Field: name, Value: v, Reason: "must be positive"}
	}
	return v, nil
}
