package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
)

func testRegistry() *Registry {
	return New([]models.Source{
		{ID: "a", Name: "A", EndpointURL: "https://a.example/rss", Category: "technology", Language: "en", IsActive: true},
		{ID: "b", Name: "B", EndpointURL: "https://b.example/rss", Category: "business", Language: "en", IsActive: false},
		{ID: "c", Name: "C", EndpointURL: "https://c.example/rss", Category: "technology", Language: "ja", IsActive: true},
	})
}

func ids(list []models.Source) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilters(t *testing.T) {
	t.Parallel()
	r := testRegistry()

	cases := []struct {
		name string
		got  []models.Source
		want []string
	}{
		{"active", r.ListActive(), []string{"a", "c"}},
		{"category", r.ListByCategory("technology"), []string{"a", "c"}},
		{"language", r.ListByLanguage("JA"), []string{"c"}},
		{"unknown category", r.ListByCategory("sports"), []string{}},
	}
	for _, c := range cases {
		if !equal(ids(c.got), c.want) {
			t.Errorf("%s: got %v; want %v", c.name, ids(c.got), c.want)
		}
	}
}

func TestListReturnsCopies(t *testing.T) {
	t.Parallel()
	r := testRegistry()
	list := r.ListActive()
	list[0].Name = "mutated"

	s, _ := r.Get("a")
	if s.Name != "A" {
		t.Fatalf("registry was mutated through a returned slice")
	}
}

func TestBookkeeping(t *testing.T) {
	t.Parallel()
	r := testRegistry()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if !r.MarkFetched("a", at) {
		t.Fatal("MarkFetched returned false for a known source")
	}
	s, _ := r.Get("a")
	if s.LastFetchedAt == nil || !s.LastFetchedAt.Equal(at) {
		t.Fatalf("LastFetchedAt = %v; want %v", s.LastFetchedAt, at)
	}

	r.SetActive("b", true)
	if got := ids(r.ListActive()); !equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("after SetActive got %v", got)
	}
	if r.SetActive("missing", true) {
		t.Fatal("SetActive should report unknown ids")
	}
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if len(r.ListActive()) == 0 {
		t.Fatal("default catalog has no active sources")
	}
	for _, s := range r.All() {
		if s.Category == "" || s.Language == "" {
			t.Errorf("source %s lacks category or language", s.ID)
		}
	}
}

func TestLoadFileRejectsDuplicates(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := []byte(`sources:
  - {id: x, url: "https://x.example/rss"}
  - {id: x, url: "https://y.example/rss"}
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestLoadFileDefaultsCategory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := []byte(`sources:
  - {id: x, name: X, url: "https://x.example/rss", language: EN, active: true}
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	s, ok := r.Get("x")
	if !ok || s.Category != models.DefaultCategoryID || s.Language != "en" {
		t.Fatalf("unexpected source: %+v", s)
	}
}
