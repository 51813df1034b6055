package columns

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Resolver converts an outcome into the cell value for a column.
type Resolver func(o types.Outcome) string

// Def describes one summary column.
type Def struct {
	Key     string
	Header  string
	Numeric bool
	Resolve Resolver
}

// Default is the comparative summary layout.
var Default = []string{"ticker", "name", "model", "zscore", "pd", "verdict"}

// Registry maps column keys to definitions.
var Registry = map[string]Def{}

var aliases = map[string]string{
	"sym":      "ticker",
	"z":        "zscore",
	"pd%":      "pd",
	"decision": "verdict",
	"variant":  "model",
}

func register(key, header string, numeric bool, r Resolver) {
	Registry[key] = Def{Key: key, Header: header, Numeric: numeric, Resolve: r}
}

// report returns the report of a successful outcome.
func report(o types.Outcome) (*types.AnalysisReport, bool) {
	return o.Report, o.OK()
}

func fromReport(f func(r *types.AnalysisReport) string) Resolver {
	return func(o types.Outcome) string {
		r, ok := report(o)
		if !ok {
			return ""
		}
		return f(r)
	}
}

func fromMerton(f func(m *types.MertonResult) string) Resolver {
	return fromReport(func(r *types.AnalysisReport) string {
		if r.Merton == nil {
			return "n/a"
		}
		return f(r.Merton)
	})
}

func init() {
	register("ticker", "TICKER", false, func(o types.Outcome) string { return o.Ticker })
	register("name", "NAME", false, fromReport(func(r *types.AnalysisReport) string { return r.CompanyName }))
	register("industry", "INDUSTRY", false, fromReport(func(r *types.AnalysisReport) string { return r.Profile.IndustryLabel }))
	register("category", "CATEGORY", false, fromReport(func(r *types.AnalysisReport) string { return string(r.Profile.Category) }))
	register("model", "MODEL", false, fromReport(func(r *types.AnalysisReport) string { return string(r.ZScore.Variant) }))

	ratio := func(pick func(z types.ZScoreResult) *float64) Resolver {
		return fromReport(func(r *types.AnalysisReport) string {
			if v := pick(r.ZScore); v != nil {
				return FormatFloat(*v, 4)
			}
			return ""
		})
	}
	register("x1", "X1", true, ratio(func(z types.ZScoreResult) *float64 { return &z.X1 }))
	register("x2", "X2", true, ratio(func(z types.ZScoreResult) *float64 { return &z.X2 }))
	register("x3", "X3", true, ratio(func(z types.ZScoreResult) *float64 { return &z.X3 }))
	register("x4", "X4", true, ratio(func(z types.ZScoreResult) *float64 { return &z.X4 }))
	register("x5", "X5", true, ratio(func(z types.ZScoreResult) *float64 { return z.X5 }))

	register("zscore", "Z-SCORE", true, fromReport(func(r *types.AnalysisReport) string { return FormatFloat(r.ZScore.Score, 2) }))
	register("zone", "ZONE", false, fromReport(func(r *types.AnalysisReport) string { return string(r.ZScoreDecision.Zone) }))
	register("z_verdict", "Z VERDICT", false, fromReport(func(r *types.AnalysisReport) string { return r.ZScoreDecision.Verdict.String() }))

	register("pd", "PD %", true, fromMerton(func(m *types.MertonResult) string { return FormatPercent(m.ProbabilityOfDefault, 4) }))
	register("dd", "DD", true, fromMerton(func(m *types.MertonResult) string { return FormatFloat(m.DistanceToDefault, 4) }))
	register("mu", "MU", true, fromMerton(func(m *types.MertonResult) string { return FormatFloat(m.Mu, 4) }))
	register("sigma", "SIGMA", true, fromMerton(func(m *types.MertonResult) string { return FormatFloat(m.Sigma, 4) }))
	register("rf", "RF %", true, fromMerton(func(m *types.MertonResult) string { return FormatPercent(m.RiskFreeRate, 2) }))
	register("merton_verdict", "MERTON VERDICT", false, fromReport(func(r *types.AnalysisReport) string {
		if r.MertonDecision == nil {
			return "n/a"
		}
		return r.MertonDecision.Verdict.String()
	}))

	register("verdict", "DECISION", false, func(o types.Outcome) string {
		if o.Err != nil {
			return "ERROR"
		}
		if o.Report == nil {
			return ""
		}
		return o.Report.Combined.Verdict.String()
	})
	register("basis", "BASIS", false, fromReport(func(r *types.AnalysisReport) string { return r.Combined.Basis }))
	register("single_model", "SINGLE", false, fromReport(func(r *types.AnalysisReport) string {
		if r.Combined.SingleModel {
			return "yes"
		}
		return ""
	}))

	money := func(pick func(s types.FinancialSnapshot) types.Field) Resolver {
		return fromReport(func(r *types.AnalysisReport) string {
			f := pick(r.Snapshot)
			if !f.Valid {
				return ""
			}
			return FormatMoney(f.Value)
		})
	}
	register("market_cap", "MKT CAP", true, money(func(s types.FinancialSnapshot) types.Field { return s.MarketCap }))
	register("total_assets", "ASSETS", true, money(func(s types.FinancialSnapshot) types.Field { return s.TotalAssets }))
	register("total_liabilities", "LIABILITIES", true, money(func(s types.FinancialSnapshot) types.Field { return s.TotalLiabilities }))
	register("ebit", "EBIT", true, money(func(s types.FinancialSnapshot) types.Field { return s.EBIT }))
	register("revenue", "REVENUE", true, money(func(s types.FinancialSnapshot) types.Field { return s.TotalRevenue }))

	register("warnings", "WARNINGS", true, fromReport(func(r *types.AnalysisReport) string {
		if len(r.Warnings) == 0 {
			return ""
		}
		return fmt.Sprint(len(r.Warnings))
	}))
	register("error", "ERROR", false, func(o types.Outcome) string {
		if o.Err == nil {
			return ""
		}
		if o.Err.Field != "" {
			return fmt.Sprintf("%s (%s): %s", o.Err.Kind, o.Err.Field, o.Err.Message)
		}
		return fmt.Sprintf("%s: %s", o.Err.Kind, o.Err.Message)
	})
}

// Canonical resolves aliases; ok is false for unknown keys.
func Canonical(key string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if a, ok := aliases[key]; ok {
		key = a
	}
	_, ok := Registry[key]
	return key, ok
}

// GetDef returns the definition for key or an alias of it.
func GetDef(key string) (Def, bool) {
	k, ok := Canonical(key)
	if !ok {
		return Def{}, false
	}
	return Registry[k], true
}

// Compute determines the final column order. An explicit list (columns or
// set names) is honored in order with duplicates dropped; otherwise Default.
func Compute(explicit []string) ([]Def, error) {
	if len(explicit) == 0 {
		explicit = Default
	}
	keys, err := Expand(explicit)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := make([]Def, 0, len(keys))
	for _, k := range keys {
		c, ok := Canonical(k)
		if !ok {
			return nil, &UnknownColumnError{Name: k, Available: Available()}
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, Registry[c])
	}
	return out, nil
}

// Available lists column keys alphabetically.
func Available() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnknownColumnError reports an unknown column key.
type UnknownColumnError struct {
	Name      string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

// FormatFloat formats v with a fixed number of decimals and comma separators.
func FormatFloat(v float64, decimals int) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	return groupThousands(decimal.NewFromFloat(v).StringFixed(int32(decimals)))
}

// FormatPercent formats a decimal fraction as a percentage.
func FormatPercent(v float64, decimals int) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(int32(decimals)) + "%"
}

var moneyUnits = []struct {
	exp    int32
	suffix string
}{
	{12, "T"},
	{9, "B"},
	{6, "M"},
	{3, "K"},
}

// FormatMoney abbreviates large amounts: 1234567890 -> 1.23B.
func FormatMoney(v float64) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	d := decimal.NewFromFloat(v)
	abs := d.Abs()
	for _, u := range moneyUnits {
		if abs.GreaterThanOrEqual(decimal.New(1, u.exp)) {
			return d.Shift(-u.exp).StringFixed(2) + u.suffix
		}
	}
	return d.StringFixed(0)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// groupThousands inserts comma separators into the integer part of a
// formatted number.
func groupThousands(s string) string {
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	if n <= 3 {
		return sign + intPart + fracPart
	}
	out := make([]byte, 0, n+n/3)
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	out = append(out, intPart[:rem]...)
	for i := rem; i < n; i += 3 {
		out = append(out, ',')
		out = append(out, intPart[i:i+3]...)
	}
	return sign + string(out) + fracPart
}
