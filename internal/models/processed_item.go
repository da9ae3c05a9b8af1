package models

import "time"

// ProcessedItem represents a unique, translated and scored news item
type ProcessedItem struct {
	ID                string    `json:"id"`
	OriginalTitle     string    `json:"original_title"`
	TranslatedTitle   string    `json:"translated_title"`
	OriginalContent   string    `json:"original_content"`
	TranslatedContent string    `json:"translated_content"`
	Summary           string    `json:"summary"`
	URL               string    `json:"url"`
	PublishedAt       time.Time `json:"published_at"`
	SourceName        string    `json:"source_name"`
	Author            string    `json:"author,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	OriginalLanguage  string    `json:"original_language"`
	Categories        []string  `json:"categories"`
	Tags              []string  `json:"tags"`
	ImportanceScore   float64   `json:"importance_score"`
	IsDuplicate       bool      `json:"is_duplicate"`
	CreatedAt         time.Time `json:"created_at"`
}

// PrimaryCategory returns the category used for digest grouping
func (p ProcessedItem) PrimaryCategory() string {
	for _, c := range p.Categories {
		if c != "" {
			return c
		}
	}
	return DefaultCategoryID
}
