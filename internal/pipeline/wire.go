package pipeline

import (
	"context"
	"fmt"

	"github.com/bilgisen/newsdigest/internal/cache"
	"github.com/bilgisen/newsdigest/internal/config"
	"github.com/bilgisen/newsdigest/internal/delivery"
	"github.com/bilgisen/newsdigest/internal/feed"
	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/scoring"
	"github.com/bilgisen/newsdigest/internal/sources"
	"github.com/bilgisen/newsdigest/internal/storage"
	"github.com/bilgisen/newsdigest/internal/translate"
)

// Components are the long-lived pieces built from configuration
type Components struct {
	Pipeline *Pipeline
	Registry *sources.Registry
	Storage  *storage.Storage
	History  cache.History
}

// Close releases external connections
func (c *Components) Close() error {
	if c.History != nil {
		return c.History.Close()
	}
	return nil
}

// Build wires a pipeline from configuration
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	log := logger.Get()

	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	weights, err := loadWeights(cfg)
	if err != nil {
		return nil, err
	}

	taxonomy, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, err
	}

	glossary, err := loadGlossary(cfg)
	if err != nil {
		return nil, fmt.Errorf("load glossary: %w", err)
	}
	translator := translate.NewTranslator(cfg.TargetLanguage, glossary,
		translate.NewDeepLProvider(cfg.DeepLAPIKey, cfg.DeepLAPIURL, cfg.DeepLTimeout),
		translate.NewGeminiProvider(cfg.AIApiKey, cfg.AIModel, cfg.AITimeout),
	)

	store, err := storage.NewStorage(cfg.ProcessedPath)
	if err != nil {
		return nil, err
	}

	sinks := []delivery.Sink{delivery.LogSink{}}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, delivery.NewWebhookSink(cfg.WebhookURL, cfg.WebhookToken, cfg.HTTPTimeout))
	}
	if cfg.ArchiveEnabled() {
		archive, err := delivery.NewArchiveSink(ctx, delivery.ArchiveConfig{
			Endpoint:  cfg.R2Endpoint,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, archive)
	}
	sink := delivery.NewMulti(sinks...)

	var history cache.History
	if cfg.HistoryEnabled {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, keeping delivery history in memory")
			history = cache.NewMemoryClient()
		} else {
			history = redisClient
		}
	}

	log.Info().
		Int("sources", len(registry.ListActive())).
		Int("taxonomy_version", taxonomy.Version).
		Int("weights_version", weights.Version).
		Str("target_language", translator.Target()).
		Strs("sinks", sink.Sinks()).
		Bool("history", history != nil).
		Msg("Pipeline configured")

	p := New(Options{
		Registry:         registry,
		Collector:        feed.NewCollector(feed.NewFetcher(cfg.FeedTimeout), feed.NewParser(cfg.FeedMaxItems, taxonomy), cfg.CollectWorkers),
		Translator:       translator,
		Weights:          weights,
		Store:            store,
		Sink:             sink,
		History:          history,
		HistoryTTL:       cfg.CacheTTL,
		TranslateWorkers: cfg.TranslateWorkers,
	})

	return &Components{
		Pipeline: p,
		Registry: registry,
		Storage:  store,
		History:  history,
	}, nil
}

func loadRegistry(cfg *config.Config) (*sources.Registry, error) {
	if cfg.SourcesFile != "" {
		return sources.LoadFile(cfg.SourcesFile)
	}
	return sources.Default()
}

func loadWeights(cfg *config.Config) (scoring.Weights, error) {
	if cfg.WeightsFile != "" {
		return scoring.LoadWeights(cfg.WeightsFile)
	}
	return scoring.DefaultWeights()
}

func loadTaxonomy(cfg *config.Config) (feed.Taxonomy, error) {
	if cfg.TagsFile != "" {
		return feed.LoadTaxonomy(cfg.TagsFile)
	}
	return feed.DefaultTaxonomy()
}

func loadGlossary(cfg *config.Config) (*translate.Glossary, error) {
	if cfg.GlossaryFile != "" {
		return translate.LoadGlossary(cfg.GlossaryFile)
	}
	return translate.DefaultGlossary()
}
