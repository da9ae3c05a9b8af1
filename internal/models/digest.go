package models

import "time"

// DigestSection groups the items of one category
type DigestSection struct {
	Category Category        `json:"category"`
	Items    []ProcessedItem `json:"items"`
}

// Digest is the categorized output of one pipeline run
type Digest struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	Title          string          `json:"title"`
	Sections       []DigestSection `json:"sections"`
	TotalItemCount int             `json:"total_item_count"`
	CreatedAt      time.Time       `json:"created_at"`
	FilePath       string          `json:"file_path,omitempty"`
}

// CountItems sums the items of all sections
func (d *Digest) CountItems() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Items)
	}
	return n
}
