package feed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/taxonomy.yaml
var defaultTaxonomy []byte

// Taxonomy holds the tagging keywords and the alias table that maps feed
// category terms onto category ids
type Taxonomy struct {
	Version int               `yaml:"version" json:"version"`
	Tags    []string          `yaml:"tags" json:"tags"`
	Aliases map[string]string `yaml:"aliases" json:"aliases"`
}

// DefaultTaxonomy returns the embedded taxonomy
func DefaultTaxonomy() (Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(defaultTaxonomy, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parse default taxonomy: %w", err)
	}
	return t.normalize()
}

// LoadTaxonomy reads a taxonomy file. A tags list in the file replaces the default
// list; aliases are merged over the defaults.
func LoadTaxonomy(path string) (Taxonomy, error) {
	t, err := DefaultTaxonomy()
	if err != nil {
		return Taxonomy{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}
	return t.normalize()
}

func (t Taxonomy) normalize() (Taxonomy, error) {
	tags := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}
	aliases := make(map[string]string, len(t.Aliases))
	for term, id := range t.Aliases {
		term = strings.ToLower(strings.Join(strings.Fields(term), " "))
		id = strings.ToLower(strings.TrimSpace(id))
		if term == "" {
			continue
		}
		if id == "" {
			return Taxonomy{}, fmt.Errorf("taxonomy alias %q has no category id", term)
		}
		aliases[term] = id
	}
	return Taxonomy{Version: t.Version, Tags: tags, Aliases: aliases}, nil
}
