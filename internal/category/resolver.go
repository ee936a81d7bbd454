// Package category resolves raw category identifiers to effective per-user
// category records. Per-user customization is a sparse overlay merged onto
// the global table at read time; nothing here mutates the base list.
package category

import (
	"github.com/ohalushko/moneta/internal/domain"
)

// fallback is returned when an identifier resolves to nothing. Resolution
// degrades instead of failing so display code never has to handle a missing
// category.
var fallback = domain.Category{
	ID:       domain.CategoryOther,
	Name:     "Other",
	Icon:     "more-horizontal",
	Color:    "#9e9e9e",
	IsActive: true,
}

// Fallback returns the designated "Other" category.
func Fallback() domain.Category {
	return fallback
}

// Resolve maps a transaction's category id to its effective category record,
// applying the user's override when one exists. Unknown ids resolve to the
// fallback category.
func Resolve(id string, overrides map[string]domain.CategoryOverride, categories []domain.Category) domain.Category {
	var base *domain.Category
	for i := range categories {
		if categories[i].ID == id {
			base = &categories[i]
			break
		}
	}
	if base == nil {
		return fallback
	}

	resolved := *base
	if ov, ok := overrides[id]; ok {
		if ov.CustomName != nil && *ov.CustomName != "" {
			resolved.Name = *ov.CustomName
		}
		if ov.IsActive != nil {
			resolved.IsActive = *ov.IsActive
		}
	}
	return resolved
}

// Merge produces the effective category list for a user: every base record
// with its override applied. Overrides referencing unknown categories are
// ignored.
func Merge(categories []domain.Category, overrides map[string]domain.CategoryOverride) []domain.Category {
	merged := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		merged = append(merged, Resolve(c.ID, overrides, categories))
	}
	return merged
}

// OverrideMap indexes a list of overrides by category id.
func OverrideMap(overrides []domain.CategoryOverride) map[string]domain.CategoryOverride {
	m := make(map[string]domain.CategoryOverride, len(overrides))
	for _, ov := range overrides {
		m[ov.CategoryID] = ov
	}
	return m
}
