// Package pipeline runs one digest: collect, dedupe, translate, score, assemble and deliver.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bilgisen/newsdigest/internal/cache"
	"github.com/bilgisen/newsdigest/internal/dedup"
	"github.com/bilgisen/newsdigest/internal/delivery"
	"github.com/bilgisen/newsdigest/internal/digest"
	"github.com/bilgisen/newsdigest/internal/feed"
	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/bilgisen/newsdigest/internal/scoring"
	"github.com/bilgisen/newsdigest/internal/sources"
	"github.com/bilgisen/newsdigest/internal/translate"
)

const summaryRunes = 280

// ErrRunInProgress is returned when Run is called while another run is active
var ErrRunInProgress = errors.New("a digest run is already in progress")

// DigestStore persists assembled digests
type DigestStore interface {
	SaveDigest(ctx context.Context, d *models.Digest) error
}

// Report summarizes one run
type Report struct {
	Digest    *models.Digest      `json:"digest"`
	Sources   []feed.SourceReport `json:"sources"`
	Collected int                 `json:"collected"`
	Unique    int                 `json:"unique"`
	Dropped   int                 `json:"dropped"`
	Seen      int                 `json:"seen"`
	Processed int                 `json:"processed"`
	Failed    int                 `json:"failed"`
	Fallbacks int                 `json:"fallbacks"`
	Delivered bool                `json:"delivered"`
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration"`
	Error     string              `json:"error,omitempty"`
}

// Options wires the stages of a pipeline
type Options struct {
	Registry         *sources.Registry
	Collector        *feed.Collector
	Translator       *translate.Translator
	Weights          scoring.Weights
	Store            DigestStore
	Renderer         *delivery.Renderer
	Sink             delivery.Sink
	History          cache.History
	HistoryTTL       time.Duration
	TranslateWorkers int
	Now              func() time.Time
}

// Pipeline runs digests. Only one run is active at a time.
type Pipeline struct {
	registry   *sources.Registry
	collector  *feed.Collector
	translator *translate.Translator
	weights    scoring.Weights
	store      DigestStore
	renderer   *delivery.Renderer
	sink       delivery.Sink
	history    cache.History
	historyTTL time.Duration
	workers    int
	now        func() time.Time

	running sync.Mutex
	active  atomic.Bool

	mu   sync.RWMutex
	last *Report
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		registry:   opts.Registry,
		collector:  opts.Collector,
		translator: opts.Translator,
		weights:    opts.Weights,
		store:      opts.Store,
		renderer:   opts.Renderer,
		sink:       opts.Sink,
		history:    opts.History,
		historyTTL: opts.HistoryTTL,
		workers:    opts.TranslateWorkers,
		now:        opts.Now,
	}
	if p.workers <= 0 {
		p.workers = 1
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.renderer == nil {
		p.renderer = delivery.NewRenderer()
	}
	if p.sink == nil {
		p.sink = delivery.LogSink{}
	}
	return p
}

// Registry returns the source registry used by the pipeline
func (p *Pipeline) Registry() *sources.Registry {
	return p.registry
}

// Running reports whether a run is active
func (p *Pipeline) Running() bool {
	return p.active.Load()
}

// LastReport returns the report of the most recent finished run, or nil
func (p *Pipeline) LastReport() *Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Run executes one digest run. The returned report is non-nil whenever
// the run got past collection, including when delivery fails.
func (p *Pipeline) Run(ctx context.Context, cfg models.RunConfig) (*Report, error) {
	if !p.acquire() {
		return nil, ErrRunInProgress
	}
	return p.execute(ctx, cfg)
}

// Start claims the run slot and executes the run in the background with the given
// timeout. It returns ErrRunInProgress without starting anything when a run is active.
// done, if set, receives the outcome.
func (p *Pipeline) Start(cfg models.RunConfig, timeout time.Duration, done func(*Report, error)) error {
	if !p.acquire() {
		return ErrRunInProgress
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		report, err := p.execute(ctx, cfg)
		if done != nil {
			done(report, err)
		}
	}()
	return nil
}

func (p *Pipeline) acquire() bool {
	if !p.running.TryLock() {
		return false
	}
	p.active.Store(true)
	return true
}

// execute runs with the slot already held and releases it when done
func (p *Pipeline) execute(ctx context.Context, cfg models.RunConfig) (*Report, error) {
	defer p.running.Unlock()
	defer p.active.Store(false)

	report, err := p.run(ctx, cfg)
	if report != nil {
		if err != nil {
			report.Error = err.Error()
		}
		p.mu.Lock()
		p.last = report
		p.mu.Unlock()
	}
	return report, err
}

func (p *Pipeline) run(ctx context.Context, cfg models.RunConfig) (report *Report, err error) {
	log := logger.Get()
	began := time.Now()
	start := p.now()
	report = &Report{StartedAt: start}
	defer func() { report.Duration = time.Since(began) }()

	selected := p.selectSources(cfg)
	log.Info().
		Int("sources", len(selected)).
		Strs("categories", cfg.CategoriesFilter).
		Msg("Starting digest run")

	raw, reports := p.collector.CollectMany(ctx, selected)
	report.Sources = reports
	report.Collected = len(raw)
	for _, r := range reports {
		if r.Error == "" {
			p.registry.MarkFetched(r.SourceID, start)
		}
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled after collection: %w", err)
	}

	unique, dropped := dedup.Dedupe(raw)
	report.Dropped = dropped
	unique, report.Seen = p.filterSeen(ctx, unique)
	report.Unique = len(unique)
	log.Info().
		Int("collected", report.Collected).
		Int("unique", report.Unique).
		Int("duplicates", dropped).
		Int("seen", report.Seen).
		Msg("Deduplicated items")
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled after dedup: %w", err)
	}

	processed, failed, fallbacks := p.process(ctx, unique, start)
	report.Processed = len(processed)
	report.Failed = failed
	report.Fallbacks = fallbacks
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled after translation: %w", err)
	}

	ranked := scoring.NewScorer(p.weights, start).Rank(processed)
	d := digest.Assemble(ranked, cfg, start)
	report.Digest = &d
	log.Info().
		Str("digest_id", d.ID).
		Int("sections", len(d.Sections)).
		Int("items", d.TotalItemCount).
		Msg("Assembled digest")

	if p.store != nil {
		if err := p.store.SaveDigest(ctx, &d); err != nil {
			log.Error().Err(err).Str("digest_id", d.ID).Msg("Failed to save digest")
		}
	}

	out, err := p.renderer.NewDelivery(d, cfg)
	if err == nil {
		err = p.sink.Deliver(ctx, out)
	}
	if err != nil {
		return report, fmt.Errorf("deliver digest: %w", err)
	}
	report.Delivered = true

	p.markSeen(ctx, d)
	log.Info().
		Str("digest_id", d.ID).
		Int("items", d.TotalItemCount).
		Dur("duration", time.Since(began)).
		Msg("Digest run finished")
	return report, nil
}

func (p *Pipeline) selectSources(cfg models.RunConfig) []models.Source {
	active := p.registry.ListActive()
	if len(cfg.CategoriesFilter) == 0 {
		return active
	}
	selected := make([]models.Source, 0, len(active))
	for _, s := range active {
		if cfg.WantsCategory(s.Category) {
			selected = append(selected, s)
		}
	}
	return selected
}

// filterSeen drops items delivered by an earlier run. History errors keep the item.
func (p *Pipeline) filterSeen(ctx context.Context, items []models.RawItem) ([]models.RawItem, int) {
	if p.history == nil {
		return items, 0
	}
	log := logger.Get()
	kept := items[:0:0]
	seen := 0
	for _, item := range items {
		ok, err := p.history.IsProcessed(ctx, dedup.URLFingerprint(item.URL))
		if err != nil {
			log.Warn().Err(err).Str("url", item.URL).Msg("History lookup failed, keeping item")
		}
		if ok {
			seen++
			continue
		}
		kept = append(kept, item)
	}
	return kept, seen
}

func (p *Pipeline) markSeen(ctx context.Context, d models.Digest) {
	if p.history == nil {
		return
	}
	log := logger.Get()
	for _, s := range d.Sections {
		for _, item := range s.Items {
			if err := p.history.MarkProcessed(ctx, item.ID, p.historyTTL); err != nil {
				log.Warn().Err(err).Str("id", item.ID).Msg("Failed to record delivered item")
			}
		}
	}
}

// process translates items with a bounded pool. Output keeps input order.
func (p *Pipeline) process(ctx context.Context, items []models.RawItem, createdAt time.Time) ([]models.ProcessedItem, int, int) {
	log := logger.Get()

	type outcome struct {
		item     models.ProcessedItem
		ok       bool
		fallback bool
	}
	results := make([]outcome, len(items))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.workers)

	for i, raw := range items {
		select {
		case <-ctx.Done():
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, raw models.RawItem) {
			defer wg.Done()
			defer func() { <-semaphore }()
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("title", raw.Title).
						Str("source", raw.SourceName).
						Msg("Recovered from panic while processing item")
					results[i] = outcome{}
				}
			}()

			item, fallback, err := p.buildItem(ctx, raw, createdAt)
			if err != nil {
				log.Warn().
					Err(err).
					Str("title", raw.Title).
					Str("source", raw.SourceName).
					Msg("Dropping item")
				return
			}
			results[i] = outcome{item: item, ok: true, fallback: fallback}
		}(i, raw)
	}

	wg.Wait()

	processed := make([]models.ProcessedItem, 0, len(items))
	failed, fallbacks := 0, 0
	for _, r := range results {
		if !r.ok {
			failed++
			continue
		}
		if r.fallback {
			fallbacks++
		}
		processed = append(processed, r.item)
	}
	return processed, failed, fallbacks
}

func (p *Pipeline) buildItem(ctx context.Context, raw models.RawItem, createdAt time.Time) (models.ProcessedItem, bool, error) {
	if strings.TrimSpace(raw.Title) == "" || strings.TrimSpace(raw.URL) == "" {
		return models.ProcessedItem{}, false, errors.New("missing title or url")
	}

	title, content := p.translator.TranslateItem(ctx, raw)
	summary := p.summarize(ctx, raw, content)

	lang := title.DetectedLanguage
	if lang == "" || lang == "und" {
		lang = raw.Language
	}
	categories := raw.Categories
	if len(categories) == 0 {
		categories = []string{models.DefaultCategoryID}
	}

	item := models.ProcessedItem{
		ID:                dedup.URLFingerprint(raw.URL),
		OriginalTitle:     raw.Title,
		TranslatedTitle:   title.TranslatedText,
		OriginalContent:   firstNonEmpty(raw.Content, raw.Description),
		TranslatedContent: content.TranslatedText,
		Summary:           summary,
		URL:               raw.URL,
		PublishedAt:       raw.PublishedAt,
		SourceName:        raw.SourceName,
		Author:            raw.Author,
		ImageURL:          raw.ImageURL,
		OriginalLanguage:  lang,
		Categories:        categories,
		Tags:              raw.Tags,
		CreatedAt:         createdAt,
	}
	fallback := title.Confidence < translate.LowConfidenceThreshold
	return item, fallback, nil
}

// summarize prefers a distinct feed description over a clipped body
func (p *Pipeline) summarize(ctx context.Context, raw models.RawItem, content translate.Result) string {
	desc := strings.TrimSpace(raw.Description)
	body := strings.TrimSpace(raw.Content)
	if desc != "" && body != "" && desc != body && !strings.HasPrefix(body, desc) {
		res := p.translator.Translate(ctx, translate.Clip(desc, summaryRunes), raw.Language)
		return res.TranslatedText
	}
	return translate.Clip(strings.TrimSpace(content.TranslatedText), summaryRunes)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
