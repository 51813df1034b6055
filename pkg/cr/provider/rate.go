package provider

import (
	"context"
	"fmt"
	"math"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

const (
	DefaultRateSymbol   = "^TNX"
	DefaultRateFallback = 0.04
)

// YFRateSource reads the risk-free rate from a Yahoo yield index quoted in
// percent, such as ^TNX for the 10-year Treasury.
type YFRateSource struct {
	client   yfgo.API
	symbol   string
	fallback float64
	timeout  time.Duration
}

func NewYFRateSource(client yfgo.API, symbol string, fallback float64, timeout time.Duration) *YFRateSource {
	if symbol == "" {
		symbol = DefaultRateSymbol
	}
	return &YFRateSource{client: client, symbol: symbol, fallback: fallback, timeout: timeout}
}

func (s *YFRateSource) RiskFreeRate(ctx context.Context) (float64, *types.Warning) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	quotes, err := s.client.Quote(ctx, []string{s.symbol})
	if err != nil {
		return s.fall(err.Error())
	}
	if len(quotes) == 0 || quotes[0].RegularMarketPrice == nil {
		return s.fall("no price")
	}
	pct := *quotes[0].RegularMarketPrice
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return s.fall("price is not finite")
	}
	return pct / 100, nil
}

func (s *YFRateSource) fall(reason string) (float64, *types.Warning) {
	return s.fallback, &types.Warning{
		Kind:    types.WarnRiskFreeRateFallback,
		Field:   types.FieldRiskFreeRate,
		Message: fmt.Sprintf("%s unavailable (%s); using %.2f%%", s.symbol, reason, s.fallback*100),
	}
}
