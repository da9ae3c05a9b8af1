package translate

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/glossary.yaml
var defaultGlossary []byte

// Glossary is the keyword table used when no provider can translate
type Glossary struct {
	terms map[string]map[string]string
	match map[string]*regexp.Regexp
}

// DefaultGlossary returns the embedded glossary
func DefaultGlossary() (*Glossary, error) {
	return ParseGlossary(defaultGlossary)
}

// LoadGlossary reads a glossary YAML file
func LoadGlossary(path string) (*Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glossary: %w", err)
	}
	return ParseGlossary(data)
}

// ParseGlossary decodes a glossary keyed by target language
func ParseGlossary(data []byte) (*Glossary, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse glossary: %w", err)
	}

	g := &Glossary{
		terms: make(map[string]map[string]string),
		match: make(map[string]*regexp.Regexp),
	}
	for lang, v := range raw {
		entries, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		table := make(map[string]string, len(entries))
		for term, tr := range entries {
			if s, ok := tr.(string); ok && term != "" {
				table[strings.ToLower(term)] = s
			}
		}
		g.add(normalizeLang(lang), table)
	}
	return g, nil
}

// NewGlossary builds a glossary from an in-memory table
func NewGlossary(tables map[string]map[string]string) *Glossary {
	g := &Glossary{
		terms: make(map[string]map[string]string),
		match: make(map[string]*regexp.Regexp),
	}
	for lang, table := range tables {
		lower := make(map[string]string, len(table))
		for k, v := range table {
			lower[strings.ToLower(k)] = v
		}
		g.add(normalizeLang(lang), lower)
	}
	return g
}

func (g *Glossary) add(lang string, table map[string]string) {
	if len(table) == 0 {
		return
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	// longest first so multi-word terms win over their parts
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	g.terms[lang] = table
	g.match[lang] = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Lookup returns the glossary terms found in text with their target-language form
func (g *Glossary) Lookup(text, lang string) map[string]string {
	if g == nil {
		return nil
	}
	lang = normalizeLang(lang)
	re, ok := g.match[lang]
	if !ok {
		return nil
	}
	found := map[string]string{}
	for _, m := range re.FindAllString(text, -1) {
		term := strings.ToLower(m)
		found[term] = g.terms[lang][term]
	}
	return found
}
