package columns

import (
	"fmt"
	"sort"
	"strings"
)

// Sets are named column groups. On the command line a set is written as
// @name; a bare name that is not a column also resolves to its set.
var Sets = map[string][]string{
	"profile":    {"ticker", "name", "industry", "category"},
	"altman":     {"model", "x1", "x2", "x3", "x4", "x5", "zscore", "zone", "z_verdict"},
	"merton":     {"dd", "pd", "mu", "sigma", "rf", "merton_verdict"},
	"verdicts":   {"verdict", "basis", "single_model", "warnings"},
	"financials": {"market_cap", "total_assets", "total_liabilities", "ebit", "revenue"},
	"summary":    Default,
}

// Expand replaces set references in names with their columns. Order is
// kept; de-duplication is left to Compute.
func Expand(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		set, isRef := strings.CutPrefix(name, "@")
		switch {
		case name == "":
			continue
		case isRef:
			cols, ok := Sets[set]
			if !ok {
				return nil, &UnknownSetError{Name: set}
			}
			out = append(out, cols...)
		default:
			if _, isCol := Canonical(name); !isCol {
				if cols, ok := Sets[name]; ok {
					out = append(out, cols...)
					continue
				}
			}
			out = append(out, name)
		}
	}
	return out, nil
}

// UnknownSetError reports an @name that is not a set.
type UnknownSetError struct {
	Name string
}

func (e *UnknownSetError) Error() string {
	return fmt.Sprintf("unknown column set %q; available: %s", e.Name, strings.Join(AvailableSets(), ", "))
}

// AvailableSets lists set names alphabetically.
func AvailableSets() []string {
	names := make([]string, 0, len(Sets))
	for name := range Sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
