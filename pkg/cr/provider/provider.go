// Package provider delivers resolved financial fields to the analyzer.
package provider

import (
	"context"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Provider fetches one company's accounting inputs. Errors are returned as
// *types.DataProviderError.
type Provider interface {
	Fetch(ctx context.Context, ticker string) (types.CompanyData, error)
}

// RateSource supplies the annualized risk-free rate as a decimal. It never
// fails; a fallback value is annotated with a warning instead.
type RateSource interface {
	RiskFreeRate(ctx context.Context) (float64, *types.Warning)
}

// StaticRate is a fixed risk-free rate.
type StaticRate float64

func (r StaticRate) RiskFreeRate(context.Context) (float64, *types.Warning) {
	return float64(r), nil
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, ticker string) (types.CompanyData, error)

func (f ProviderFunc) Fetch(ctx context.Context, ticker string) (types.CompanyData, error) {
	return f(ctx, ticker)
}
