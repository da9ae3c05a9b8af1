package scoring

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
)

var asOf = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func testWeights() Weights {
	return Weights{
		BaseScore:       50,
		DefaultSource:   1,
		Sources:         map[string]float64{"Reuters": 10},
		DefaultCategory: 0,
		Categories:      map[string]float64{"technology": 9, "sports": 2},
		Quality: Quality{
			LengthTiers:     []LengthTier{{MinRunes: 100, Bonus: 6}, {MinRunes: 20, Bonus: 3}},
			ImageBonus:      3,
			SummaryMinRunes: 10,
			SummaryBonus:    2,
		},
		Recency:  Recency{MaxBonus: 12, PerHour: 1},
		Keywords: Keywords{Major: []string{"breaking", "危机"}, Tech: []string{"ai"}, MajorBoost: 5, TechBoost: 3},
	}
}

func TestScoreComponents(t *testing.T) {
	s := NewScorer(testWeights(), asOf)

	item := models.ProcessedItem{
		ID:                "a",
		TranslatedTitle:   "Breaking: new AI model",
		TranslatedContent: strings.Repeat("x", 120),
		Summary:           "a real summary",
		ImageURL:          "https://img.example/1.jpg",
		SourceName:        "Reuters",
		Categories:        []string{"technology"},
		PublishedAt:       asOf.Add(-2 * time.Hour),
	}
	// 50 + 10 source + 9 category + 6 length + 3 image + 2 summary + 10 recency + 5 major + 3 tech
	want := 98.0
	if got := s.Score(item); got != want {
		t.Errorf("Score() = %v; want %v", got, want)
	}
}

func TestScoreKeywordWordBoundary(t *testing.T) {
	s := NewScorer(testWeights(), asOf)
	base := models.ProcessedItem{SourceName: "Unknown", Categories: []string{"sports"}}

	plain := base
	plain.TranslatedTitle = "Officials said nothing"
	tagged := base
	tagged.TranslatedTitle = "Officials said AI is here"
	cjk := base
	cjk.TranslatedTitle = "能源危机加剧"

	if got, want := s.Score(tagged)-s.Score(plain), 3.0; got != want {
		t.Errorf("tech boost = %v; want %v", got, want)
	}
	if got, want := s.Score(cjk)-s.Score(plain), 5.0; got != want {
		t.Errorf("cjk major boost = %v; want %v", got, want)
	}
}

func TestScoreKeywordsFallBackToOriginalText(t *testing.T) {
	s := NewScorer(testWeights(), asOf)
	base := models.ProcessedItem{SourceName: "Unknown", Categories: []string{"sports"}}

	untranslated := base
	untranslated.OriginalTitle = "Officials said nothing"
	untranslated.OriginalContent = "Breaking news on AI chips"

	translated := base
	translated.TranslatedTitle = "Officials said nothing"
	translated.TranslatedContent = "Breaking news on AI chips"

	// only the keyword boost differs from the same item without keywords
	plain := base
	plain.OriginalTitle = "Officials said nothing"
	plain.OriginalContent = "Quiet news on new chips"

	if got, want := s.Score(untranslated), s.Score(translated); got != want {
		t.Errorf("untranslated score = %v; want %v", got, want)
	}
	if diff := s.Score(untranslated) - s.Score(plain); diff != 8 {
		t.Errorf("keyword boost from original content = %v; want 8", diff)
	}
}

func TestScoreBounds(t *testing.T) {
	w, err := DefaultWeights()
	if err != nil {
		t.Fatalf("DefaultWeights() error = %v", err)
	}
	s := NewScorer(w, asOf)

	everything := strings.Join(append(append([]string{}, w.Keywords.Major...), w.Keywords.Tech...), " ")
	tests := []struct {
		name string
		item models.ProcessedItem
	}{
		{"all keywords", models.ProcessedItem{
			TranslatedTitle:   everything,
			TranslatedContent: strings.Repeat(everything+" ", 50),
			Summary:           everything,
			ImageURL:          "x",
			SourceName:        "Reuters",
			Categories:        []string{"international"},
			PublishedAt:       asOf,
		}},
		{"zero content", models.ProcessedItem{}},
		{"far future", models.ProcessedItem{PublishedAt: asOf.AddDate(100, 0, 0)}},
		{"far past", models.ProcessedItem{PublishedAt: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.item)
			if got < MinScore || got > MaxScore {
				t.Errorf("Score() = %v; out of [0,100]", got)
			}
		})
	}

	hostile := testWeights()
	hostile.BaseScore = -500
	if got := NewScorer(hostile, asOf).Score(models.ProcessedItem{}); got != MinScore {
		t.Errorf("negative base: Score() = %v; want 0", got)
	}
	hostile.BaseScore = math.Inf(1)
	if got := NewScorer(hostile, asOf).Score(models.ProcessedItem{}); got != MaxScore {
		t.Errorf("infinite base: Score() = %v; want 100", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	w, err := DefaultWeights()
	if err != nil {
		t.Fatal(err)
	}
	s := NewScorer(w, asOf)
	item := models.ProcessedItem{
		TranslatedTitle: "Quantum breakthrough announced",
		SourceName:      "Nature",
		Categories:      []string{"science"},
		PublishedAt:     asOf.Add(-90 * time.Minute),
	}
	first := s.Score(item)
	for i := 0; i < 10; i++ {
		if got := s.Score(item); got != first {
			t.Fatalf("Score() changed between calls: %v != %v", got, first)
		}
	}
}

func TestRecencyDecayFloorsAtZero(t *testing.T) {
	s := NewScorer(testWeights(), asOf)
	fresh := models.ProcessedItem{PublishedAt: asOf}
	stale := models.ProcessedItem{PublishedAt: asOf.Add(-48 * time.Hour)}
	undated := models.ProcessedItem{}

	if got := s.Score(fresh) - s.Score(stale); got != 12 {
		t.Errorf("fresh - stale = %v; want 12", got)
	}
	if s.Score(stale) != s.Score(undated) {
		t.Errorf("stale item should get no recency bonus")
	}
}

func TestRankOrdersByScoreThenRecency(t *testing.T) {
	s := NewScorer(testWeights(), asOf)
	items := []models.ProcessedItem{
		{ID: "low", SourceName: "Unknown", PublishedAt: asOf.Add(-24 * time.Hour)},
		{ID: "high", SourceName: "Reuters", PublishedAt: asOf},
		{ID: "tie-old", SourceName: "Reuters", PublishedAt: asOf.Add(-30 * time.Hour)},
		{ID: "tie-new", SourceName: "Reuters", PublishedAt: asOf.Add(-20 * time.Hour)},
	}
	ranked := s.Rank(items)

	var ids []string
	for _, it := range ranked {
		ids = append(ids, it.ID)
	}
	want := []string{"high", "tie-new", "tie-old", "low"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("Rank() order = %v; want %v", ids, want)
	}
	if items[0].ImportanceScore != 0 {
		t.Errorf("Rank() must not mutate its input")
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].ImportanceScore > ranked[i-1].ImportanceScore {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestLoadWeightsOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	data := []byte("base_score: 40\nsources:\n  Local Paper: 4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights() error = %v", err)
	}
	if w.BaseScore != 40 {
		t.Errorf("BaseScore = %v; want 40", w.BaseScore)
	}
	if w.Sources["Local Paper"] != 4 || w.Sources["Reuters"] != 10 {
		t.Errorf("Sources not merged: %v", w.Sources)
	}
	if len(w.Keywords.Major) == 0 {
		t.Errorf("keywords should keep defaults")
	}

	if _, err := LoadWeights(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
