package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bilgisen/newsdigest/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		TargetLanguage:   "en",
		FeedMaxItems:     20,
		CollectWorkers:   2,
		TranslateWorkers: 2,
		ProcessedPath:    t.TempDir(),
	}
}

func TestBuildLoadsTaxonomyFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.TagsFile = filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(cfg.TagsFile, []byte("version: 3\ntags: [quantum]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	taxonomy, err := loadTaxonomy(cfg)
	if err != nil {
		t.Fatalf("loadTaxonomy() error = %v", err)
	}
	if taxonomy.Version != 3 || len(taxonomy.Tags) != 1 || taxonomy.Tags[0] != "quantum" {
		t.Errorf("taxonomy = %+v", taxonomy)
	}

	components, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer components.Close()
	if components.Pipeline == nil || components.Storage == nil {
		t.Fatal("Build() returned incomplete components")
	}
}

func TestBuildRejectsMissingTaxonomyFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.TagsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing TAGS_FILE")
	}
}
