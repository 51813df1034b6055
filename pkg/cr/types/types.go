package types

import (
	"fmt"
	"strings"
	"time"
)

// Accounting field names used by snapshots, errors and warnings.
const (
	FieldWorkingCapital   = "working_capital"
	FieldTotalAssets      = "total_assets"
	FieldRetainedEarnings = "retained_earnings"
	FieldEBIT             = "ebit"
	FieldTotalRevenue     = "total_revenue"
	FieldTotalLiabilities = "total_liabilities"
	FieldMarketCap        = "market_cap"
	FieldAssetHistory     = "asset_history"
	FieldRiskFreeRate     = "risk_free_rate"
	FieldIndustry         = "industry"
	FieldVariant          = "variant"
)

// Field is a resolved accounting value. The zero Field is the missing marker.
type Field struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
	// Source names the upstream line item the value was taken from.
	Source string `json:"source,omitempty"`
}

// Value returns a present field.
func Value(v float64) Field { return Field{Value: v, Valid: true} }

// Missing returns the explicit missing marker.
func Missing() Field { return Field{} }

// FinancialSnapshot holds the latest fiscal year's accounting inputs.
type FinancialSnapshot struct {
	FiscalYear       int   `json:"fiscal_year,omitempty"`
	WorkingCapital   Field `json:"working_capital"`
	TotalAssets      Field `json:"total_assets"`
	RetainedEarnings Field `json:"retained_earnings"`
	EBIT             Field `json:"ebit"`
	TotalRevenue     Field `json:"total_revenue"`
	TotalLiabilities Field `json:"total_liabilities"`
	MarketCap        Field `json:"market_cap"`
}

// AssetPoint is one fiscal year of balance-sheet totals.
type AssetPoint struct {
	FiscalYear       int     `json:"fiscal_year"`
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
}

// AssetHistory is ordered oldest first, most recent last.
type AssetHistory []AssetPoint

// Latest returns the most recent point.
func (h AssetHistory) Latest() (AssetPoint, bool) {
	if len(h) == 0 {
		return AssetPoint{}, false
	}
	return h[len(h)-1], true
}

// Assets returns the total-assets series in order.
func (h AssetHistory) Assets() []float64 {
	out := make([]float64, len(h))
	for i, p := range h {
		out[i] = p.TotalAssets
	}
	return out
}

// CompanyData is what a data provider delivers for one ticker.
type CompanyData struct {
	Ticker   string
	Name     string
	Industry string
	Snapshot FinancialSnapshot
	History  AssetHistory
	// Warnings carries provider-side annotations such as field substitutions.
	Warnings []Warning
}

// Category is the company-type bucket derived from the industry label.
type Category string

const (
	CategoryManufacturing    Category = "manufacturing"
	CategoryNonManufacturing Category = "non_manufacturing"
	CategoryFinancial        Category = "financial"
	CategoryUnclassified     Category = "unclassified"
)

// Variant selects the Altman Z-Score formula.
type Variant string

const (
	VariantZ            Variant = "Z"
	VariantZDoublePrime Variant = "Z''"
)

// Label is the display name used in reasoning strings.
func (v Variant) Label() string {
	if v == VariantZ {
		return "Z-Score"
	}
	return "Z''-Score"
}

// CompanyProfile is the classifier's output.
type CompanyProfile struct {
	IndustryLabel    string   `json:"industry"`
	Category         Category `json:"category"`
	Variant          Variant  `json:"variant"`
	MertonApplicable bool     `json:"merton_applicable"`
	MertonReason     string   `json:"merton_reason,omitempty"`
	// Caveat is set when the category is a fallback or has limited meaning.
	Caveat string `json:"caveat,omitempty"`
}

// Zone is the band a score falls into.
type Zone string

const (
	ZoneSafe     Zone = "SAFE"
	ZoneGrey     Zone = "GREY ZONE"
	ZoneDistress Zone = "DISTRESS"
)

// ZScoreResult holds the Altman ratios and the weighted score.
type ZScoreResult struct {
	Variant Variant `json:"variant"`
	X1      float64 `json:"x1"`
	X2      float64 `json:"x2"`
	X3      float64 `json:"x3"`
	X4      float64 `json:"x4"`
	// X5 is only computed for variant Z.
	X5    *float64 `json:"x5,omitempty"`
	Score float64  `json:"score"`
	Zone  Zone     `json:"zone,omitempty"`
}

// MertonResult holds the balance-sheet Merton outputs.
type MertonResult struct {
	AssetValue           float64 `json:"asset_value"`
	Debt                 float64 `json:"debt"`
	Mu                   float64 `json:"mu"`
	Sigma                float64 `json:"sigma"`
	RiskFreeRate         float64 `json:"risk_free_rate"`
	Horizon              float64 `json:"horizon"`
	DistanceToDefault    float64 `json:"distance_to_default"`
	ProbabilityOfDefault float64 `json:"probability_of_default"`
	// Observations is the number of year-over-year changes used.
	Observations int `json:"observations"`
}

// Verdict is a credit decision. Values are ordered by rank: a higher rank is
// a better verdict. The zero value is Denied so an unset verdict never reads
// as an approval.
type Verdict int

const (
	Denied Verdict = iota
	ApprovedWithWarning
	Approved
)

// Rank returns the verdict's position in the total order.
func (v Verdict) Rank() int { return int(v) }

func (v Verdict) String() string {
	switch v {
	case Approved:
		return "APPROVED"
	case ApprovedWithWarning:
		return "APPROVED_WITH_WARNING"
	case Denied:
		return "DENIED"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// ParseVerdict accepts the names produced by String, case-sensitively, plus
// the short forms "approved", "warning" and "denied".
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "APPROVED", "approved":
		return Approved, nil
	case "APPROVED_WITH_WARNING", "warning":
		return ApprovedWithWarning, nil
	case "DENIED", "denied":
		return Denied, nil
	}
	return Denied, fmt.Errorf("unknown verdict %q", s)
}

// Worst returns the lower-ranked of two verdicts.
func Worst(a, b Verdict) Verdict {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// Model identifies which model produced a decision.
type Model string

const (
	ModelZScore Model = "zscore"
	ModelMerton Model = "merton"
)

// Decision is one model's verdict.
type Decision struct {
	Model   Model   `json:"model"`
	Verdict Verdict `json:"verdict"`
	Zone    Zone    `json:"zone"`
	Reason  string  `json:"reason"`
}

// CombinedDecision merges both models' verdicts.
type CombinedDecision struct {
	Verdict Verdict `json:"verdict"`
	Basis   string  `json:"basis"`
	// SingleModel is true when only the Z-Score contributed.
	SingleModel bool   `json:"single_model"`
	Reason      string `json:"reason,omitempty"`
}

// WarningKind classifies report annotations.
type WarningKind string

const (
	WarnFieldSubstituted     WarningKind = "field_substituted"
	WarnMertonNotApplicable  WarningKind = "merton_not_applicable"
	WarnMertonNotComputable  WarningKind = "merton_not_computable"
	WarnClassificationCaveat WarningKind = "classification_caveat"
	WarnShortHistory         WarningKind = "short_history"
	WarnRiskFreeRateFallback WarningKind = "risk_free_fallback"
)

// Warning is a structured, non-fatal annotation.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Field, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// AnalysisReport is the full result for one ticker.
type AnalysisReport struct {
	RunID          string            `json:"run_id,omitempty"`
	Ticker         string            `json:"ticker"`
	CompanyName    string            `json:"company_name"`
	Profile        CompanyProfile    `json:"profile"`
	Snapshot       FinancialSnapshot `json:"snapshot"`
	ZScore         ZScoreResult      `json:"zscore"`
	ZScoreDecision Decision          `json:"zscore_decision"`
	Merton         *MertonResult     `json:"merton"`
	MertonDecision *Decision         `json:"merton_decision"`
	Combined       CombinedDecision  `json:"combined"`
	Warnings       []Warning         `json:"warnings"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// Outcome is one entry of a batch result: exactly one of Report and Err is set.
type Outcome struct {
	Ticker string
	Report *AnalysisReport
	Err    *AnalysisError
}

// OK reports whether the ticker was analyzed successfully.
func (o Outcome) OK() bool { return o.Err == nil && o.Report != nil }

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
