package models

// DefaultCategoryID is used for items without a known category
const DefaultCategoryID = "other"

// Category is an entry of the static category lookup table
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// Categories is ordered: digest sections follow this order.
var Categories = []Category{
	{ID: "international", Name: "international", DisplayName: "International", Description: "World news and diplomacy", Color: "#1f6feb", Icon: "globe"},
	{ID: "technology", Name: "technology", DisplayName: "Technology", Description: "Tech industry, science and research", Color: "#8957e5", Icon: "cpu"},
	{ID: "business", Name: "business", DisplayName: "Business", Description: "Markets, economy and companies", Color: "#2da44e", Icon: "briefcase"},
	{ID: "politics", Name: "politics", DisplayName: "Politics", Description: "Government and policy", Color: "#cf222e", Icon: "landmark"},
	{ID: "science", Name: "science", DisplayName: "Science", Description: "Scientific discoveries", Color: "#0969da", Icon: "flask"},
	{ID: "health", Name: "health", DisplayName: "Health", Description: "Medicine and public health", Color: "#bf3989", Icon: "heart"},
	{ID: "entertainment", Name: "entertainment", DisplayName: "Entertainment", Description: "Culture, film and music", Color: "#fb8500", Icon: "film"},
	{ID: "sports", Name: "sports", DisplayName: "Sports", Description: "Sports results and events", Color: "#bc4c00", Icon: "trophy"},
	{ID: DefaultCategoryID, Name: DefaultCategoryID, DisplayName: "Other", Description: "Everything else", Color: "#6e7781", Icon: "newspaper"},
}

// LookupCategory returns the category for id, or the "other" category
func LookupCategory(id string) Category {
	for _, c := range Categories {
		if c.ID == id {
			return c
		}
	}
	return Categories[len(Categories)-1]
}

// CategoryRank returns the position of id in the category table, -1 when unknown
func CategoryRank(id string) int {
	for i, c := range Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}
