package scoring

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/weights.yaml
var defaultWeights []byte

// Weights holds every table the scorer reads
type Weights struct {
	Version         int                `yaml:"version" json:"version"`
	BaseScore       float64            `yaml:"base_score" json:"base_score"`
	DefaultSource   float64            `yaml:"default_source" json:"default_source"`
	Sources         map[string]float64 `yaml:"sources" json:"sources"`
	DefaultCategory float64            `yaml:"default_category" json:"default_category"`
	Categories      map[string]float64 `yaml:"categories" json:"categories"`
	Quality         Quality            `yaml:"quality" json:"quality"`
	Recency         Recency            `yaml:"recency" json:"recency"`
	Keywords        Keywords           `yaml:"keywords" json:"keywords"`
}

// LengthTier awards Bonus to content of at least MinRunes
type LengthTier struct {
	MinRunes int     `yaml:"min_runes" json:"min_runes"`
	Bonus    float64 `yaml:"bonus" json:"bonus"`
}

// Quality holds the content quality bonuses
type Quality struct {
	LengthTiers     []LengthTier `yaml:"length_tiers" json:"length_tiers"`
	ImageBonus      float64      `yaml:"image_bonus" json:"image_bonus"`
	SummaryMinRunes int          `yaml:"summary_min_runes" json:"summary_min_runes"`
	SummaryBonus    float64      `yaml:"summary_bonus" json:"summary_bonus"`
}

// Recency decays linearly from MaxBonus by PerHour
type Recency struct {
	MaxBonus float64 `yaml:"max_bonus" json:"max_bonus"`
	PerHour  float64 `yaml:"per_hour" json:"per_hour"`
}

// Keywords are matched case-insensitively against translated title and content
type Keywords struct {
	Major      []string `yaml:"major" json:"major"`
	Tech       []string `yaml:"tech" json:"tech"`
	MajorBoost float64  `yaml:"major_boost" json:"major_boost"`
	TechBoost  float64  `yaml:"tech_boost" json:"tech_boost"`
}

// DefaultWeights returns the embedded weight tables
func DefaultWeights() (Weights, error) {
	var w Weights
	if err := yaml.Unmarshal(defaultWeights, &w); err != nil {
		return Weights{}, fmt.Errorf("parse default weights: %w", err)
	}
	return w, nil
}

// LoadWeights reads a weights file. Fields absent from the file keep their default values.
func LoadWeights(path string) (Weights, error) {
	w, err := DefaultWeights()
	if err != nil {
		return Weights{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parse weights file %s: %w", path, err)
	}
	if w.Recency.PerHour < 0 {
		return Weights{}, fmt.Errorf("recency.per_hour must not be negative")
	}
	return w, nil
}
