package feed

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/models"
)

// Getter is the part of Fetcher the collector depends on
type Getter interface {
	FetchFeed(ctx context.Context, url string) ([]byte, error)
}

// SourceReport describes the outcome of collecting one source
type SourceReport struct {
	SourceID string        `json:"source_id"`
	Source   string        `json:"source"`
	Items    int           `json:"items"`
	Skipped  int           `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Collector fetches and normalizes feeds, isolating failures per source
type Collector struct {
	fetcher Getter
	parser  *Parser
	workers int
}

// NewCollector creates a collector that fetches at most workers sources at a time
func NewCollector(fetcher Getter, parser *Parser, workers int) *Collector {
	if workers <= 0 {
		workers = 1
	}
	return &Collector{
		fetcher: fetcher,
		parser:  parser,
		workers: workers,
	}
}

// Fetch collects one source. Any failure yields an empty result.
func (c *Collector) Fetch(ctx context.Context, source models.Source) []models.RawItem {
	items, _ := c.collect(ctx, source)
	return items
}

func (c *Collector) collect(ctx context.Context, source models.Source) ([]models.RawItem, SourceReport) {
	log := logger.Component("collector")
	start := time.Now()
	report := SourceReport{SourceID: source.ID, Source: source.Name}

	log.Debug().
		Str("source", source.ID).
		Str("url", source.EndpointURL).
		Msg("Collecting source")

	data, err := c.fetcher.FetchFeed(ctx, source.EndpointURL)
	if err == nil {
		var items []models.RawItem
		items, report.Skipped, err = c.parser.Parse(data, source)
		if err == nil {
			report.Items = len(items)
			report.Duration = time.Since(start)
			log.Info().
				Str("source", source.ID).
				Int("items", report.Items).
				Int("skipped", report.Skipped).
				Dur("duration", report.Duration).
				Msg("Collected source")
			return items, report
		}
	}

	report.Error = err.Error()
	report.Duration = time.Since(start)
	log.Warn().
		Err(err).
		Str("source", source.ID).
		Str("url", source.EndpointURL).
		Dur("duration", report.Duration).
		Msg("Source failed, continuing without it")
	return []models.RawItem{}, report
}

// CollectMany fetches all sources with bounded concurrency and returns once every
// fetch has finished. Items keep the order of sources.
func (c *Collector) CollectMany(ctx context.Context, sources []models.Source) ([]models.RawItem, []SourceReport) {
	log := logger.Component("collector")
	start := time.Now()
	log.Info().
		Int("sources", len(sources)).
		Int("workers", c.workers).
		Msg("Starting collection")

	results := make([][]models.RawItem, len(sources))
	reports := make([]SourceReport, len(sources))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.workers)

	for i, source := range sources {
		select {
		case <-ctx.Done():
			reports[i] = SourceReport{SourceID: source.ID, Source: source.Name, Error: ctx.Err().Error()}
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, source models.Source) {
			defer wg.Done()
			defer func() { <-semaphore }()
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("source", source.ID).
						Msg("Recovered from panic while collecting source")
					results[i] = nil
					reports[i] = SourceReport{SourceID: source.ID, Source: source.Name, Error: "panic during collection"}
				}
			}()
			results[i], reports[i] = c.collect(ctx, source)
		}(i, source)
	}

	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]models.RawItem, 0, total)
	failed := 0
	for i, r := range results {
		all = append(all, r...)
		if reports[i].Error != "" {
			failed++
		}
	}

	log.Info().
		Int("sources", len(sources)).
		Int("failed_sources", failed).
		Int("items", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Finished collection")

	return all, reports
}
