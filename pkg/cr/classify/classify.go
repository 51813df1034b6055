// Package classify maps a free-text industry label to a company category and
// decides which Z-Score variant applies and whether Merton is meaningful.
package classify

import (
	"strings"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Keywords are matched as case-insensitive substrings of the industry label.
type Keywords struct {
	Financial        []string `mapstructure:"financial"`
	Manufacturing    []string `mapstructure:"manufacturing"`
	NonManufacturing []string `mapstructure:"non_manufacturing"`
}

// DefaultKeywords returns the built-in tables.
func DefaultKeywords() Keywords {
	return Keywords{
		Financial: []string{
			"bank", "insurance", "financial", "asset management", "investment",
			"credit", "mortgage", "reit", "fund", "brokerage", "capital markets",
		},
		Manufacturing: []string{
			"manufactur", "auto", "aerospace", "defense", "steel", "chemical",
			"semiconductor", "electronic", "machinery", "equipment", "textile",
			"paper", "packaging", "rubber", "plastic", "metal", "mining",
			"oil", "gas", "energy", "pharmaceutical", "drug", "food", "beverage",
			"tobacco", "furniture", "appliance", "vehicle", "aircraft", "ship",
		},
		NonManufacturing: []string{
			"software", "internet", "retail", "service", "telecom", "communication",
			"media", "entertainment", "restaurant", "utilit", "real estate",
			"health", "consulting", "education", "lodging", "travel", "airline",
			"trucking", "railroad", "transport", "logistics", "advertising",
			"broadcasting", "publishing", "staffing", "waste", "gambling",
			"leisure", "resort", "distribution", "information technology",
		},
	}
}

// Classifier holds lower-cased keyword tables. It is safe for concurrent use.
type Classifier struct {
	financial        []string
	manufacturing    []string
	nonManufacturing []string
}

// New builds a classifier. An empty table falls back to its default.
func New(kw Keywords) *Classifier {
	def := DefaultKeywords()
	return &Classifier{
		financial:        normalize(kw.Financial, def.Financial),
		manufacturing:    normalize(kw.Manufacturing, def.Manufacturing),
		nonManufacturing: normalize(kw.NonManufacturing, def.NonManufacturing),
	}
}

func normalize(words, fallback []string) []string {
	if len(words) == 0 {
		words = fallback
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Category returns the category for industry and the keyword that matched.
// Financial keywords win over manufacturing, which win over non-manufacturing.
func (c *Classifier) Category(industry string) (types.Category, string) {
	label := strings.ToLower(strings.TrimSpace(industry))
	if label == "" {
		return types.CategoryNonManufacturing, ""
	}
	if kw, ok := firstMatch(label, c.financial); ok {
		return types.CategoryFinancial, kw
	}
	if kw, ok := firstMatch(label, c.manufacturing); ok {
		return types.CategoryManufacturing, kw
	}
	if kw, ok := firstMatch(label, c.nonManufacturing); ok {
		return types.CategoryNonManufacturing, kw
	}
	return types.CategoryUnclassified, ""
}

func firstMatch(label string, words []string) (string, bool) {
	for _, w := range words {
		if strings.Contains(label, w) {
			return w, true
		}
	}
	return "", false
}

// Classify never fails: an unmatched label is a valid outcome with a caveat.
func (c *Classifier) Classify(industry string, totalLiabilities types.Field) types.CompanyProfile {
	cat, _ := c.Category(industry)
	p := types.CompanyProfile{
		IndustryLabel: industry,
		Category:      cat,
		Variant:       VariantFor(cat),
	}
	switch {
	case strings.TrimSpace(industry) == "":
		p.Caveat = "industry not reported; defaulting to non-manufacturing (Z'')"
	case cat == types.CategoryFinancial:
		p.Caveat = "financial sector; Z-Score has limited interpretability, using Z''"
	case cat == types.CategoryUnclassified:
		p.Caveat = "industry '" + industry + "' not recognized; defaulting to Z''"
	}
	p.MertonApplicable, p.MertonReason = MertonApplicability(totalLiabilities)
	return p
}

// VariantFor returns VariantZ for manufacturing and VariantZDoublePrime for
// everything else.
func VariantFor(cat types.Category) types.Variant {
	if cat == types.CategoryManufacturing {
		return types.VariantZ
	}
	return types.VariantZDoublePrime
}

// MertonApplicability requires positive total liabilities: with no debt there
// is no default boundary to measure a distance to.
func MertonApplicability(totalLiabilities types.Field) (bool, string) {
	switch {
	case !totalLiabilities.Valid:
		return false, "total liabilities not reported"
	case totalLiabilities.Value <= 0:
		return false, "no liabilities reported; there is no default boundary"
	}
	return true, ""
}
