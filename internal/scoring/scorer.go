// Package scoring ranks processed items by a bounded importance score.
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bilgisen/newsdigest/internal/models"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Scorer computes importance scores relative to a fixed reference time,
// so the same item always gets the same score.
type Scorer struct {
	weights Weights
	asOf    time.Time
	major   []matcher
	tech    []matcher
}

type matcher struct {
	word    *regexp.Regexp
	literal string
}

func (m matcher) match(folded string) bool {
	if m.word != nil {
		return m.word.MatchString(folded)
	}
	return strings.Contains(folded, m.literal)
}

// NewScorer builds a scorer for one run
func NewScorer(w Weights, asOf time.Time) *Scorer {
	return &Scorer{
		weights: w,
		asOf:    asOf,
		major:   compileKeywords(w.Keywords.Major),
		tech:    compileKeywords(w.Keywords.Tech),
	}
}

// ASCII keywords match on word boundaries so "ai" does not hit "said"
func compileKeywords(words []string) []matcher {
	out := make([]matcher, 0, len(words))
	seen := map[string]bool{}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		if isASCII(w) {
			out = append(out, matcher{word: regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)})
		} else {
			out = append(out, matcher{literal: w})
		}
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Score returns the importance of item clamped to [0, 100]
func (s *Scorer) Score(item models.ProcessedItem) float64 {
	w := s.weights
	score := w.BaseScore
	score += s.sourceWeight(item.SourceName)
	score += s.categoryWeight(item.PrimaryCategory())
	score += s.qualityBonus(item)
	score += s.recencyBonus(item.PublishedAt)
	score += s.keywordBoost(item)
	return clamp(score)
}

func (s *Scorer) sourceWeight(name string) float64 {
	if v, ok := s.weights.Sources[name]; ok {
		return v
	}
	return s.weights.DefaultSource
}

func (s *Scorer) categoryWeight(id string) float64 {
	if v, ok := s.weights.Categories[id]; ok {
		return v
	}
	return s.weights.DefaultCategory
}

func (s *Scorer) qualityBonus(item models.ProcessedItem) float64 {
	q := s.weights.Quality
	bonus := 0.0

	content := item.TranslatedContent
	if content == "" {
		content = item.OriginalContent
	}
	length := utf8.RuneCountInString(content)
	best := 0.0
	for _, tier := range q.LengthTiers {
		if length >= tier.MinRunes && tier.Bonus > best {
			best = tier.Bonus
		}
	}
	bonus += best

	if item.ImageURL != "" {
		bonus += q.ImageBonus
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(item.Summary)); n > 0 && n >= q.SummaryMinRunes {
		bonus += q.SummaryBonus
	}
	return bonus
}

func (s *Scorer) recencyBonus(published time.Time) float64 {
	r := s.weights.Recency
	if published.IsZero() {
		return 0
	}
	hours := s.asOf.Sub(published).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Max(0, r.MaxBonus-hours*r.PerHour)
}

func (s *Scorer) keywordBoost(item models.ProcessedItem) float64 {
	title := item.TranslatedTitle
	if title == "" {
		title = item.OriginalTitle
	}
	content := item.TranslatedContent
	if content == "" {
		content = item.OriginalContent
	}
	folded := strings.ToLower(title + " " + content)

	boost := 0.0
	for _, m := range s.major {
		if m.match(folded) {
			boost += s.weights.Keywords.MajorBoost
		}
	}
	for _, m := range s.tech {
		if m.match(folded) {
			boost += s.weights.Keywords.TechBoost
		}
	}
	return boost
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	v = math.Round(v*100) / 100
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Rank scores every item and returns them sorted by score, highest first.
// Ties are broken by publication time, newest first, then by id.
func (s *Scorer) Rank(items []models.ProcessedItem) []models.ProcessedItem {
	ranked := make([]models.ProcessedItem, len(items))
	copy(ranked, items)
	for i := range ranked {
		ranked[i].ImportanceScore = s.Score(ranked[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ImportanceScore != b.ImportanceScore {
			return a.ImportanceScore > b.ImportanceScore
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	return ranked
}
