package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Modules are the quoteSummary modules one Fetch requests.
var Modules = []yfgo.QuoteSummaryModule{
	yfgo.ModulePrice,
	yfgo.ModuleSummaryDetail,
	yfgo.ModuleFinancialData,
	yfgo.ModuleAssetProfile,
	yfgo.ModuleBalanceSheetHistory,
	yfgo.ModuleIncomeStatementHistory,
}

const (
	balanceSheetPath    = "balanceSheetHistory.balanceSheetStatements"
	incomeStatementPath = "incomeStatementHistory.incomeStatementHistory"

	sourceZeroFill = "zero-fill"
)

// YFProvider implements Provider on Yahoo Finance quoteSummary data.
type YFProvider struct {
	client     yfgo.API
	timeout    time.Duration
	zeroFill   map[string]bool
	minHistory int
	maxHistory int
}

type Option func(*YFProvider)

// WithZeroFill lists the fields that may be assumed zero when Yahoo does not
// report them. Only working_capital and retained_earnings are meaningful.
func WithZeroFill(fields ...string) Option {
	return func(p *YFProvider) {
		p.zeroFill = make(map[string]bool, len(fields))
		for _, f := range fields {
			p.zeroFill[f] = true
		}
	}
}

// WithMinHistoryWarn sets the history length below which a short_history
// warning is attached.
func WithMinHistoryWarn(years int) Option {
	return func(p *YFProvider) { p.minHistory = years }
}

// WithMaxHistory caps the asset history to the most recent years.
func WithMaxHistory(years int) Option {
	return func(p *YFProvider) { p.maxHistory = years }
}

func NewYFProvider(client yfgo.API, timeout time.Duration, opts ...Option) *YFProvider {
	p := &YFProvider{
		client:     client,
		timeout:    timeout,
		minHistory: 3,
		maxHistory: 5,
	}
	WithZeroFill(types.FieldWorkingCapital, types.FieldRetainedEarnings)(p)
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *YFProvider) Fetch(ctx context.Context, ticker string) (types.CompanyData, error) {
	if ticker == "" {
		return types.CompanyData{}, &types.DataProviderError{Ticker: ticker, Err: errors.New("empty ticker")}
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	raw, err := p.client.QuoteSummary(ctx, ticker, Modules)
	if err != nil {
		return types.CompanyData{}, &types.DataProviderError{Ticker: ticker, Err: err}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return types.CompanyData{}, &types.DataProviderError{Ticker: ticker, Err: fmt.Errorf("unexpected quoteSummary payload %T", raw)}
	}
	return p.parse(ticker, m), nil
}

// candidate is one way of obtaining a field, in priority order.
type candidate struct {
	source string
	value  func() (float64, bool)
}

func item(stmt map[string]any, key string) candidate {
	return candidate{source: key, value: func() (float64, bool) { return number(stmt, key) }}
}

func path(m map[string]any, p string) candidate {
	return candidate{source: p, value: func() (float64, bool) { return number(m, p) }}
}

func diff(stmt map[string]any, a, b string) candidate {
	return candidate{source: a + "-" + b, value: func() (float64, bool) {
		x, ok1 := number(stmt, a)
		y, ok2 := number(stmt, b)
		return x - y, ok1 && ok2
	}}
}

func (p *YFProvider) parse(ticker string, m map[string]any) types.CompanyData {
	bs := statements(m, balanceSheetPath)
	is := statements(m, incomeStatementPath)
	var bs0, is0 map[string]any
	if len(bs) > 0 {
		bs0 = bs[0]
	}
	if len(is) > 0 {
		is0 = is[0]
	}

	d := types.CompanyData{
		Ticker:   ticker,
		Name:     text(m, "price.longName|price.shortName"),
		Industry: text(m, "assetProfile.industry"),
	}
	if d.Name == "" {
		d.Name = ticker
	}

	r := resolver{zeroFill: p.zeroFill}
	d.Snapshot = types.FinancialSnapshot{
		FiscalYear:       fiscalYear(bs0),
		TotalAssets:      r.resolve(types.FieldTotalAssets, item(bs0, "totalAssets")),
		TotalLiabilities: r.resolve(types.FieldTotalLiabilities, item(bs0, "totalLiab"), item(bs0, "totalLiabilitiesNetMinorityInterest")),
		WorkingCapital:   r.resolve(types.FieldWorkingCapital, item(bs0, "workingCapital"), diff(bs0, "totalCurrentAssets", "totalCurrentLiabilities")),
		RetainedEarnings: r.resolve(types.FieldRetainedEarnings, item(bs0, "retainedEarnings")),
		EBIT:             r.resolve(types.FieldEBIT, item(is0, "ebit"), item(is0, "operatingIncome"), item(is0, "incomeBeforeTax")),
		TotalRevenue:     r.resolve(types.FieldTotalRevenue, item(is0, "totalRevenue"), path(m, "financialData.totalRevenue")),
		MarketCap:        r.resolve(types.FieldMarketCap, path(m, "price.marketCap"), path(m, "summaryDetail.marketCap")),
	}
	d.History = p.history(bs)
	d.Warnings = r.warnings
	if n := len(d.History); n < p.minHistory {
		d.Warnings = append(d.Warnings, types.Warning{
			Kind:    types.WarnShortHistory,
			Field:   types.FieldAssetHistory,
			Message: fmt.Sprintf("only %d year(s) of balance sheet history available", n),
		})
	}
	return d
}

// history converts Yahoo's most-recent-first statements into an
// oldest-first series, skipping years without total assets.
func (p *YFProvider) history(bs []map[string]any) types.AssetHistory {
	h := make(types.AssetHistory, 0, len(bs))
	for i := len(bs) - 1; i >= 0; i-- {
		ta, ok := number(bs[i], "totalAssets")
		if !ok {
			continue
		}
		tl, ok := number(bs[i], "totalLiab")
		if !ok {
			tl, _ = number(bs[i], "totalLiabilitiesNetMinorityInterest")
		}
		h = append(h, types.AssetPoint{FiscalYear: fiscalYear(bs[i]), TotalAssets: ta, TotalLiabilities: tl})
	}
	if p.maxHistory > 0 && len(h) > p.maxHistory {
		h = h[len(h)-p.maxHistory:]
	}
	return h
}

func fiscalYear(stmt map[string]any) int {
	sec, ok := number(stmt, "endDate")
	if !ok {
		return 0
	}
	return time.Unix(int64(sec), 0).UTC().Year()
}

// resolver applies the substitution chain for each field and records the
// annotations.
type resolver struct {
	zeroFill map[string]bool
	warnings []types.Warning
}

func (r *resolver) resolve(field string, cands ...candidate) types.Field {
	for i, c := range cands {
		v, ok := c.value()
		if !ok {
			continue
		}
		if i > 0 {
			r.warnings = append(r.warnings, types.Warning{
				Kind:    types.WarnFieldSubstituted,
				Field:   field,
				Message: fmt.Sprintf("%s not reported; using %s", cands[0].source, c.source),
			})
		}
		return types.Field{Value: v, Valid: true, Source: c.source}
	}
	if r.zeroFill[field] {
		r.warnings = append(r.warnings, types.Warning{
			Kind:    types.WarnFieldSubstituted,
			Field:   field,
			Message: "not reported; assumed 0",
		})
		return types.Field{Value: 0, Valid: true, Source: sourceZeroFill}
	}
	return types.Missing()
}
