package category

import (
	"testing"

	"github.com/ohalushko/moneta/internal/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestResolve(t *testing.T) {
	categories := []domain.Category{
		{ID: domain.CategoryGroceries, Name: "Groceries", IsActive: true},
		{ID: domain.CategoryCafe, Name: "Cafe", IsActive: true},
	}

	tests := []struct {
		name       string
		id         string
		overrides  map[string]domain.CategoryOverride
		wantID     string
		wantName   string
		wantActive bool
	}{
		{
			name:       "base record without override",
			id:         domain.CategoryGroceries,
			wantID:     domain.CategoryGroceries,
			wantName:   "Groceries",
			wantActive: true,
		},
		{
			name: "custom name applied",
			id:   domain.CategoryGroceries,
			overrides: map[string]domain.CategoryOverride{
				domain.CategoryGroceries: {CategoryID: domain.CategoryGroceries, CustomName: strPtr("Food shopping")},
			},
			wantID:     domain.CategoryGroceries,
			wantName:   "Food shopping",
			wantActive: true,
		},
		{
			name: "deactivated by override",
			id:   domain.CategoryCafe,
			overrides: map[string]domain.CategoryOverride{
				domain.CategoryCafe: {CategoryID: domain.CategoryCafe, IsActive: boolPtr(false)},
			},
			wantID:     domain.CategoryCafe,
			wantName:   "Cafe",
			wantActive: false,
		},
		{
			name: "empty custom name keeps base name",
			id:   domain.CategoryCafe,
			overrides: map[string]domain.CategoryOverride{
				domain.CategoryCafe: {CategoryID: domain.CategoryCafe, CustomName: strPtr("")},
			},
			wantID:     domain.CategoryCafe,
			wantName:   "Cafe",
			wantActive: true,
		},
		{
			name:       "unknown id degrades to fallback",
			id:         "not-a-category",
			wantID:     domain.CategoryOther,
			wantName:   "Other",
			wantActive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.id, tt.overrides, categories)
			if got.ID != tt.wantID {
				t.Errorf("Resolve() id = %q, want %q", got.ID, tt.wantID)
			}
			if got.Name != tt.wantName {
				t.Errorf("Resolve() name = %q, want %q", got.Name, tt.wantName)
			}
			if got.IsActive != tt.wantActive {
				t.Errorf("Resolve() active = %v, want %v", got.IsActive, tt.wantActive)
			}
		})
	}
}

func TestResolveDoesNotMutateBase(t *testing.T) {
	categories := []domain.Category{
		{ID: domain.CategoryGroceries, Name: "Groceries", IsActive: true},
	}
	overrides := map[string]domain.CategoryOverride{
		domain.CategoryGroceries: {CategoryID: domain.CategoryGroceries, CustomName: strPtr("Renamed")},
	}

	_ = Resolve(domain.CategoryGroceries, overrides, categories)

	if categories[0].Name != "Groceries" {
		t.Errorf("base category list mutated: name = %q", categories[0].Name)
	}
}

func TestMerge(t *testing.T) {
	categories := []domain.Category{
		{ID: domain.CategoryGroceries, Name: "Groceries", IsActive: true},
		{ID: domain.CategoryCafe, Name: "Cafe", IsActive: true},
		{ID: domain.CategoryOther, Name: "Other", IsActive: true},
	}
	overrides := OverrideMap([]domain.CategoryOverride{
		{CategoryID: domain.CategoryCafe, CustomName: strPtr("Eating out")},
		{CategoryID: "unknown", CustomName: strPtr("Ignored")},
	})

	merged := Merge(categories, overrides)
	if len(merged) != len(categories) {
		t.Fatalf("Merge() returned %d categories, want %d", len(merged), len(categories))
	}
	if merged[1].Name != "Eating out" {
		t.Errorf("Merge() cafe name = %q, want %q", merged[1].Name, "Eating out")
	}
	if merged[0].Name != "Groceries" {
		t.Errorf("Merge() groceries name = %q, want %q", merged[0].Name, "Groceries")
	}
}
