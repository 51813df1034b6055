package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Matcher matches a name such as a ticker or portfolio.
type Matcher interface {
	Match(name string) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(name string) bool

func (f MatcherFunc) Match(name string) bool { return f(name) }

// Any matches every name.
var Any Matcher = MatcherFunc(func(string) bool { return true })

// ParseMatcher builds a matcher from an expression. All forms except the
// regex ignore case:
//
//	AAPL,MSFT   one of the listed names
//	7*.T        glob
//	/^BRK/      regular expression
//	tech        substring
func ParseMatcher(expr string) (Matcher, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return Any, nil
	case len(expr) > 2 && strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/"):
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, err
		}
		return MatcherFunc(re.MatchString), nil
	case strings.Contains(expr, ","):
		names := map[string]bool{}
		for _, p := range strings.Split(expr, ",") {
			if p = strings.TrimSpace(p); p != "" {
				names[strings.ToUpper(p)] = true
			}
		}
		return MatcherFunc(func(name string) bool { return names[strings.ToUpper(name)] }), nil
	case strings.ContainsAny(expr, "*?["):
		pattern := strings.ToUpper(expr)
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, err
		}
		return MatcherFunc(func(name string) bool {
			ok, _ := filepath.Match(pattern, strings.ToUpper(name))
			return ok
		}), nil
	}
	needle := strings.ToLower(expr)
	return MatcherFunc(func(name string) bool {
		return strings.Contains(strings.ToLower(name), needle)
	}), nil
}

// Expr filters portfolios and outcomes. Terms are space-separated and all
// must match:
//
//	AAPL,MSFT            tickers (any matcher form)
//	portfolio:Tech*      portfolio names
//	verdict:denied,warning
//	status:ok | status:error
type Expr struct {
	Portfolio Matcher
	Ticker    Matcher
	Verdicts  map[types.Verdict]bool
	Status    string
}

// Parse builds an Expr. An empty expression matches everything.
func Parse(expr string) (Expr, error) {
	e := Expr{Portfolio: Any, Ticker: Any}
	for _, term := range strings.Fields(expr) {
		key, val, ok := strings.Cut(term, ":")
		if !ok {
			m, err := ParseMatcher(term)
			if err != nil {
				return Expr{}, fmt.Errorf("filter %q: %w", term, err)
			}
			e.Ticker = m
			continue
		}
		switch strings.ToLower(key) {
		case "portfolio":
			m, err := ParseMatcher(val)
			if err != nil {
				return Expr{}, fmt.Errorf("filter %q: %w", term, err)
			}
			e.Portfolio = m
		case "ticker":
			m, err := ParseMatcher(val)
			if err != nil {
				return Expr{}, fmt.Errorf("filter %q: %w", term, err)
			}
			e.Ticker = m
		case "verdict":
			e.Verdicts = map[types.Verdict]bool{}
			for _, name := range strings.Split(val, ",") {
				v, err := types.ParseVerdict(strings.TrimSpace(name))
				if err != nil {
					v, err = types.ParseVerdict(strings.ToLower(strings.TrimSpace(name)))
				}
				if err != nil {
					return Expr{}, fmt.Errorf("filter %q: %w", term, err)
				}
				e.Verdicts[v] = true
			}
		case "status":
			switch s := strings.ToLower(val); s {
			case "ok", "error":
				e.Status = s
			default:
				return Expr{}, fmt.Errorf("filter %q: status must be ok or error", term)
			}
		default:
			return Expr{}, fmt.Errorf("filter %q: unknown key %q", term, key)
		}
	}
	return e, nil
}

// MatchPortfolio reports whether a portfolio name passes.
func (e Expr) MatchPortfolio(name string) bool {
	return e.Portfolio == nil || e.Portfolio.Match(name)
}

// Match reports whether an outcome passes. Verdict terms never match a
// failed ticker.
func (e Expr) Match(o types.Outcome) bool {
	if e.Ticker != nil && !e.Ticker.Match(o.Ticker) {
		return false
	}
	switch e.Status {
	case "ok":
		if !o.OK() {
			return false
		}
	case "error":
		if o.OK() {
			return false
		}
	}
	if e.Verdicts != nil {
		if !o.OK() || !e.Verdicts[o.Report.Combined.Verdict] {
			return false
		}
	}
	return true
}

// Apply keeps the matching outcomes in order.
func (e Expr) Apply(outs []types.Outcome) []types.Outcome {
	kept := make([]types.Outcome, 0, len(outs))
	for _, o := range outs {
		if e.Match(o) {
			kept = append(kept, o)
		}
	}
	return kept
}
