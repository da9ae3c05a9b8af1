package models

// RunConfig holds the per-invocation options of a digest run
type RunConfig struct {
	Recipient           string   `json:"recipient" validate:"omitempty,email"`
	CategoriesFilter    []string `json:"categories_filter" validate:"omitempty,dive,required"`
	MinImportanceScore  float64  `json:"min_importance_score" validate:"gte=0,lte=100"`
	MaxItemsPerCategory int      `json:"max_items_per_category" validate:"gte=0"`
	IncludeSummary      bool     `json:"include_summary"`
	IncludeImages       bool     `json:"include_images"`
}

// WantsCategory reports whether the category passes CategoriesFilter.
// An empty filter accepts everything.
func (r RunConfig) WantsCategory(id string) bool {
	if len(r.CategoriesFilter) == 0 {
		return true
	}
	for _, c := range r.CategoriesFilter {
		if c == id {
			return true
		}
	}
	return false
}
