package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bilgisen/newsdigest/internal/config"
	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/middleware"
	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/bilgisen/newsdigest/internal/pipeline"
)

func main() {
	cfg := config.Load()

	var (
		recipient  = flag.String("recipient", cfg.DefaultRecipient, "email address the digest is addressed to")
		categories = flag.String("categories", "", "comma separated category ids to include (default all)")
		minScore   = flag.Float64("min-score", 0, "drop items scoring below this value (0-100)")
		maxItems   = flag.Int("max-items", 10, "maximum items per category, 0 for no limit")
		summary    = flag.Bool("summary", true, "include item summaries")
		images     = flag.Bool("images", false, "include item images")
	)
	flag.Parse()

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.LogPretty,
	}); err != nil {
		panic(err)
	}
	log := logger.Get()

	runCfg := models.RunConfig{
		Recipient:           *recipient,
		CategoriesFilter:    splitList(*categories),
		MinImportanceScore:  *minScore,
		MaxItemsPerCategory: *maxItems,
		IncludeSummary:      *summary,
		IncludeImages:       *images,
	}
	if err := middleware.Validator().Struct(runCfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", middleware.FieldErrors(err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := pipeline.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	defer components.Close()

	report, err := components.Pipeline.Run(ctx, runCfg)
	if report != nil {
		failed := 0
		for _, s := range report.Sources {
			if s.Error != "" {
				failed++
			}
		}
		event := log.Info().
			Int("sources", len(report.Sources)).
			Int("failed_sources", failed).
			Int("collected", report.Collected).
			Int("unique", report.Unique).
			Int("duplicates", report.Dropped).
			Int("translation_fallbacks", report.Fallbacks).
			Dur("duration", report.Duration)
		if report.Digest != nil {
			event = event.Str("digest_id", report.Digest.ID).
				Int("items", report.Digest.TotalItemCount).
				Str("file", report.Digest.FilePath)
		}
		event.Msg("Run report")
	}
	if err != nil {
		log.Error().Err(err).Msg("Digest run failed")
		components.Close()
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
