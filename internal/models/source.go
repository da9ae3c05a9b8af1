package models

import "time"

// Source describes one syndication feed endpoint
type Source struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	EndpointURL   string     `json:"endpoint_url" yaml:"url"`
	Category      string     `json:"category" yaml:"category"`
	Language      string     `json:"language" yaml:"language"`
	CountryCode   string     `json:"country_code" yaml:"country"`
	IsActive      bool       `json:"is_active" yaml:"active"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty" yaml:"-"`
}
