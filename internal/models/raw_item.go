package models

import "time"

// RawItem is a normalized feed entry as produced by the collector.
// It lives only for the duration of one pipeline run.
type RawItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	SourceName  string    `json:"source_name"`
	Author      string    `json:"author,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Language    string    `json:"language"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
}
