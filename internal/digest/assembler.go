package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bilgisen/newsdigest/internal/models"
)

const titleDateLayout = "2006-01-02"

// NewID returns a date-prefixed digest id that is unique within the day
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("digest-%s-%s", now.UTC().Format("20060102"), suffix)
}

// Title returns the digest headline for a date
func Title(now time.Time) string {
	return "Daily Digest – " + now.UTC().Format(titleDateLayout)
}

// Assemble groups ranked items into category sections and applies the run filters.
// Items are kept in score order inside each section and truncated afterwards.
func Assemble(items []models.ProcessedItem, cfg models.RunConfig, now time.Time) models.Digest {
	ranked := make([]models.ProcessedItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ImportanceScore > ranked[j].ImportanceScore
	})

	groups := make(map[string][]models.ProcessedItem)
	var order []string
	for _, item := range ranked {
		id := item.PrimaryCategory()
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], item)
	}
	sortCategoryIDs(order)

	d := models.Digest{
		ID:        NewID(now),
		Date:      now.UTC(),
		Title:     Title(now),
		Sections:  []models.DigestSection{},
		CreatedAt: now.UTC(),
	}

	for _, id := range order {
		if !cfg.WantsCategory(id) {
			continue
		}
		kept := make([]models.ProcessedItem, 0, len(groups[id]))
		for _, item := range groups[id] {
			if cfg.MinImportanceScore > 0 && item.ImportanceScore < cfg.MinImportanceScore {
				continue
			}
			kept = append(kept, item)
		}
		if cfg.MaxItemsPerCategory > 0 && len(kept) > cfg.MaxItemsPerCategory {
			kept = kept[:cfg.MaxItemsPerCategory]
		}
		if len(kept) == 0 {
			continue
		}
		d.Sections = append(d.Sections, models.DigestSection{
			Category: categoryFor(id),
			Items:    kept,
		})
	}

	d.TotalItemCount = d.CountItems()
	return d
}

// known categories first in table order, then the rest alphabetically
func sortCategoryIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ri, rj := models.CategoryRank(ids[i]), models.CategoryRank(ids[j])
		switch {
		case ri >= 0 && rj >= 0:
			return ri < rj
		case ri >= 0:
			return true
		case rj >= 0:
			return false
		}
		return ids[i] < ids[j]
	})
}

func categoryFor(id string) models.Category {
	if models.CategoryRank(id) >= 0 {
		return models.LookupCategory(id)
	}
	other := models.LookupCategory(models.DefaultCategoryID)
	return models.Category{
		ID:          id,
		Name:        id,
		DisplayName: capitalize(id),
		Color:       other.Color,
		Icon:        other.Icon,
	}
}

// capitalize upper-cases the first rune of s
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
