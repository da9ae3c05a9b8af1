package sources

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/sources.yaml
var defaultCatalog []byte

type catalog struct {
	Version int             `yaml:"version"`
	Sources []models.Source `yaml:"sources"`
}

// Registry is the static catalog of feed sources.
// Only IsActive and LastFetchedAt change, and only between runs.
type Registry struct {
	mu      sync.RWMutex
	sources []models.Source
}

// New builds a registry from the given sources, preserving their order
func New(list []models.Source) *Registry {
	sources := make([]models.Source, len(list))
	copy(sources, list)
	return &Registry{sources: sources}
}

// Default returns the registry built from the embedded catalog
func Default() (*Registry, error) {
	return parse(defaultCatalog)
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Registry, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse sources catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" || s.EndpointURL == "" {
			return nil, fmt.Errorf("source #%d: id and url are required", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Category == "" {
			c.Sources[i].Category = models.DefaultCategoryID
		}
		c.Sources[i].Language = strings.ToLower(s.Language)
	}
	return New(c.Sources), nil
}

// ListActive returns every active source
func (r *Registry) ListActive() []models.Source {
	return r.filter(func(s models.Source) bool { return s.IsActive })
}

// ListByCategory returns the sources whose category is id
func (r *Registry) ListByCategory(id string) []models.Source {
	return r.filter(func(s models.Source) bool { return s.Category == id })
}

// ListByLanguage returns the sources publishing in lang
func (r *Registry) ListByLanguage(lang string) []models.Source {
	lang = strings.ToLower(lang)
	return r.filter(func(s models.Source) bool { return s.Language == lang })
}

// All returns a copy of the whole catalog
func (r *Registry) All() []models.Source {
	return r.filter(func(models.Source) bool { return true })
}

// Get looks a source up by id
func (r *Registry) Get(id string) (models.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sources {
		if s.ID == id {
			return s, true
		}
	}
	return models.Source{}, false
}

// MarkFetched records the time of the last successful fetch
func (r *Registry) MarkFetched(id string, at time.Time) bool {
	return r.update(id, func(s *models.Source) {
		t := at
		s.LastFetchedAt = &t
	})
}

// SetActive toggles a source on or off
func (r *Registry) SetActive(id string, active bool) bool {
	return r.update(id, func(s *models.Source) { s.IsActive = active })
}

func (r *Registry) update(id string, fn func(*models.Source)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sources {
		if r.sources[i].ID == id {
			fn(&r.sources[i])
			return true
		}
	}
	return false
}

func (r *Registry) filter(keep func(models.Source) bool) []models.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Source, 0, len(r.sources))
	for _, s := range r.sources {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
