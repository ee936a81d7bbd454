// Package classify maps bank-side transaction attributes (merchant category
// codes, free-text statement labels) to system category ids. Everything here
// is a pure lookup: the same input always yields the same category.
package classify

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/domain"
)

// labelToCategory is the curated mapping from bank statement labels (as the
// fixed-layout XLSX export spells them) to system categories. Extended over
// time from the unmapped-label diagnostics.
var labelToCategory = map[string]string{
	"products":           domain.CategoryGroceries,
	"groceries":          domain.CategoryGroceries,
	"supermarket":        domain.CategoryGroceries,
	"продукти":           domain.CategoryGroceries,
	"продукти та супермаркети": domain.CategoryGroceries,
	"cafe":               domain.CategoryCafe,
	"restaurants":        domain.CategoryCafe,
	"кафе та ресторани":  domain.CategoryCafe,
	"taxi":               domain.CategoryTransport,
	"transport":          domain.CategoryTransport,
	"подорожі":           domain.CategoryTravel,
	"транспорт":          domain.CategoryTransport,
	"fuel":               domain.CategoryFuel,
	"азс":                domain.CategoryFuel,
	"pharmacy":           domain.CategoryHealth,
	"medicine":           domain.CategoryHealth,
	"краса та медицина":  domain.CategoryHealth,
	"shopping":           domain.CategoryShopping,
	"clothes":            domain.CategoryShopping,
	"одяг і взуття":      domain.CategoryShopping,
	"cinema":             domain.CategoryEntertainment,
	"entertainment":      domain.CategoryEntertainment,
	"розваги та спорт":   domain.CategoryEntertainment,
	"utilities":          domain.CategoryUtilities,
	"internet":           domain.CategoryUtilities,
	"комуналка та зв'язок": domain.CategoryUtilities,
	"travel":             domain.CategoryTravel,
	"hotels":             domain.CategoryTravel,
}

// ByLabel maps a free-text statement label to a category id:
// exact match against the curated label map, then exact match against system
// category names, then substring match in either direction, then the "Other"
// fallback. Unmapped labels are logged so the curated map can be extended.
func ByLabel(label string, categories []domain.Category, log zerolog.Logger) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return domain.CategoryOther
	}

	if id, ok := labelToCategory[normalized]; ok {
		return id
	}

	for _, c := range categories {
		if strings.EqualFold(c.Name, normalized) {
			return c.ID
		}
	}

	for _, c := range categories {
		name := strings.ToLower(c.Name)
		if name == "" {
			continue
		}
		if strings.Contains(normalized, name) || strings.Contains(name, normalized) {
			return c.ID
		}
	}

	log.Debug().Str("label", label).Msg("Unmapped statement label, falling back to Other")
	return domain.CategoryOther
}

// transferKeywords classify a label as a money movement between the user's
// own accounts. Matching is case-insensitive substring, amount sign is
// irrelevant.
var transferKeywords = []string{
	"transfer",
	"to card",
	"from card",
	"enrollment",
	"переказ",
	"на картку",
	"з картки",
	"зарахування",
}

// IsTransfer reports whether a statement label describes a transfer. A
// transfer match takes precedence over any category-derived type.
func IsTransfer(label string) bool {
	normalized := strings.ToLower(label)
	for _, kw := range transferKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}
