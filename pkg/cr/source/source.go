// Package source loads the tickers to analyze.
package source

import (
	"context"
	"strings"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Portfolio is a named group of tickers. Columns, when set, override the
// summary columns for this group.
type Portfolio struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
	Tickers []string `json:"tickers"`
}

// Source loads portfolios from a specification (e.g., filepath).
type Source interface {
	Load(ctx context.Context, spec any) ([]Portfolio, error)
}

// ParseList splits a comma- or whitespace-separated ticker list, normalizing
// each symbol and dropping empties. Order and duplicates are kept.
func ParseList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := types.NormalizeTicker(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Tickers flattens portfolios in order.
func Tickers(ps []Portfolio) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Tickers...)
	}
	return out
}
