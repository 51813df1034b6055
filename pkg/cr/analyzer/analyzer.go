// Package analyzer runs the credit-risk pipeline for one ticker or a batch:
// fetch, classify, Z-Score, Merton when applicable, decide and combine.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/panics"

	"github.com/komsit37/creditrisk/pkg/cr/classify"
	"github.com/komsit37/creditrisk/pkg/cr/decision"
	"github.com/komsit37/creditrisk/pkg/cr/logging"
	"github.com/komsit37/creditrisk/pkg/cr/merton"
	"github.com/komsit37/creditrisk/pkg/cr/provider"
	"github.com/komsit37/creditrisk/pkg/cr/types"
	"github.com/komsit37/creditrisk/pkg/cr/zscore"
)

// ZScorer computes an Altman score for a snapshot.
type ZScorer interface {
	Compute(s types.FinancialSnapshot, v types.Variant) (types.ZScoreResult, error)
}

// DefaultModel estimates a probability of default from asset history.
type DefaultModel interface {
	Compute(history types.AssetHistory, riskFreeRate float64) (types.MertonResult, error)
}

// Analyzer holds read-only collaborators; one value serves concurrent runs.
type Analyzer struct {
	Provider    provider.Provider
	Rates       provider.RateSource
	Classifier  *classify.Classifier
	ZScore      ZScorer
	Merton      DefaultModel
	Engine      *decision.Engine
	Logger      *slog.Logger
	Concurrency int
	Now         func() time.Time
}

// New returns an analyzer with the standard calculators and the given
// collaborators. Nil rates mean provider.DefaultRateFallback.
func New(p provider.Provider, rates provider.RateSource, cls *classify.Classifier, eng *decision.Engine, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		Provider:    p,
		Rates:       rates,
		Classifier:  cls,
		ZScore:      zscore.Calculator{},
		Merton:      merton.Calculator{},
		Engine:      eng,
		Logger:      logger,
		Concurrency: 4,
		Now:         time.Now,
	}
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return logging.Discard()
	}
	return a.Logger
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Analyzer) classifier() *classify.Classifier {
	if a.Classifier == nil {
		return classify.New(classify.Keywords{})
	}
	return a.Classifier
}

func (a *Analyzer) engine() (*decision.Engine, error) {
	if a.Engine != nil {
		return a.Engine, nil
	}
	return decision.NewEngine(decision.DefaultConfig())
}

// riskFreeRate fetches the rate once. The warning, if any, is attached to
// every report of the run.
func (a *Analyzer) riskFreeRate(ctx context.Context) (float64, *types.Warning) {
	if a.Rates == nil {
		return provider.DefaultRateFallback, nil
	}
	return a.Rates.RiskFreeRate(ctx)
}

// Run analyzes a single ticker. A failure is returned as *types.AnalysisError.
func (a *Analyzer) Run(ctx context.Context, ticker string) (*types.AnalysisReport, error) {
	rf, rfWarn := a.riskFreeRate(ctx)
	if rfWarn != nil {
		a.logger().Warn("risk-free rate fallback", "message", rfWarn.Message)
	}
	return a.analyze(ctx, uuid.NewString(), types.NormalizeTicker(ticker), rf, rfWarn)
}

// AnalyzeMultiple analyzes every ticker with bounded concurrency. Outcomes
// are in input order, duplicates included; a failing or panicking ticker
// never affects the others.
func (a *Analyzer) AnalyzeMultiple(ctx context.Context, tickers []string) []types.Outcome {
	runID := uuid.NewString()
	log := a.logger().With("run_id", runID)
	start := a.now()
	log.Info("batch start", "tickers", len(tickers))

	rf, rfWarn := a.riskFreeRate(ctx)
	if rfWarn != nil {
		log.Warn("risk-free rate fallback", "message", rfWarn.Message)
	}

	workers := a.Concurrency
	if workers < 1 {
		workers = 1
	}
	mapper := iter.Mapper[string, types.Outcome]{MaxGoroutines: workers}
	outs := mapper.Map(tickers, func(t *string) types.Outcome {
		ticker := types.NormalizeTicker(*t)
		var (
			rep *types.AnalysisReport
			err error
		)
		if r := panics.Try(func() { rep, err = a.analyze(ctx, runID, ticker, rf, rfWarn) }); r != nil {
			log.Error("analysis panicked", "ticker", ticker, "panic", r.Value)
			return types.Outcome{Ticker: ticker, Err: &types.AnalysisError{
				Ticker:  ticker,
				Kind:    types.KindInternal,
				Message: fmt.Sprintf("panic: %v", r.Value),
				Err:     r.AsError(),
			}}
		}
		if err != nil {
			return types.Outcome{Ticker: ticker, Err: types.NewAnalysisError(ticker, err)}
		}
		return types.Outcome{Ticker: ticker, Report: rep}
	})

	failed := 0
	for _, o := range outs {
		if !o.OK() {
			failed++
		}
	}
	log.Info("batch finish", "tickers", len(outs), "failed", failed, "elapsed", a.now().Sub(start))
	return outs
}

func (a *Analyzer) analyze(ctx context.Context, runID, ticker string, rf float64, rfWarn *types.Warning) (*types.AnalysisReport, error) {
	log := a.logger().With("run_id", runID, "ticker", ticker)
	fail := func(err error) (*types.AnalysisReport, error) {
		ae := types.NewAnalysisError(ticker, err)
		log.Error("analysis failed", "kind", ae.Kind, "field", ae.Field, "error", ae.Message)
		return nil, ae
	}
	if ticker == "" {
		return fail(&types.InvalidInputError{Field: "ticker", Reason: "empty ticker"})
	}

	eng, err := a.engine()
	if err != nil {
		return fail(err)
	}

	log.Debug("fetching company data")
	data, err := a.Provider.Fetch(ctx, ticker)
	if err != nil {
		if types.KindOf(err) == types.KindInternal {
			err = &types.DataProviderError{Ticker: ticker, Err: err}
		}
		return fail(err)
	}

	profile := a.classifier().Classify(data.Industry, data.Snapshot.TotalLiabilities)
	log.Debug("classified", "industry", profile.IndustryLabel, "category", profile.Category, "variant", profile.Variant)

	z, err := a.ZScore.Compute(data.Snapshot, profile.Variant)
	if err != nil {
		return fail(err)
	}
	zDec := eng.DecideZScore(z.Score, profile.Variant)
	z.Zone = zDec.Zone
	log.Debug("z-score computed", "score", z.Score, "zone", zDec.Zone)

	// Provider results may be cached and shared; never append in place.
	warnings := make([]types.Warning, 0, len(data.Warnings)+3)
	warnings = append(warnings, data.Warnings...)
	if profile.Caveat != "" {
		warnings = append(warnings, types.Warning{Kind: types.WarnClassificationCaveat, Field: types.FieldIndustry, Message: profile.Caveat})
	}

	rep := &types.AnalysisReport{
		RunID:          runID,
		Ticker:         ticker,
		CompanyName:    data.Name,
		Profile:        profile,
		Snapshot:       data.Snapshot,
		ZScore:         z,
		ZScoreDecision: zDec,
		GeneratedAt:    a.now(),
	}
	if rep.CompanyName == "" {
		rep.CompanyName = ticker
	}

	switch {
	case !profile.MertonApplicable:
		warnings = append(warnings, types.Warning{
			Kind:    types.WarnMertonNotApplicable,
			Field:   types.FieldTotalLiabilities,
			Message: profile.MertonReason,
		})
		rep.Combined = decision.ZScoreOnly(zDec, "Merton not applicable: "+profile.MertonReason)
	default:
		if rfWarn != nil {
			warnings = append(warnings, *rfWarn)
		}
		m, merr := a.Merton.Compute(data.History, rf)
		if merr != nil {
			msg := merr.Error()
			warnings = append(warnings, types.Warning{
				Kind:    types.WarnMertonNotComputable,
				Field:   types.FieldOf(merr),
				Message: msg,
			})
			rep.Combined = decision.ZScoreOnly(zDec, "Merton not computable: "+msg)
			break
		}
		mDec := eng.DecideMertonResult(m)
		rep.Merton = &m
		rep.MertonDecision = &mDec
		rep.Combined = decision.Combine(zDec, mDec)
		log.Debug("merton computed", "pd", m.ProbabilityOfDefault, "dd", m.DistanceToDefault)
	}

	for _, w := range warnings {
		log.Warn("analysis warning", "kind", w.Kind, "field", w.Field, "message", w.Message)
	}
	rep.Warnings = warnings
	log.Debug("decision", "verdict", rep.Combined.Verdict, "basis", rep.Combined.Basis)
	return rep, nil
}
