// Package delivery renders assembled digests and hands them to outbound channels.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/models"
)

// ErrNoSinks is returned by Multi when it has nothing to deliver to
var ErrNoSinks = errors.New("no delivery sinks configured")

// Delivery is a rendered digest plus the per-run directives
type Delivery struct {
	Digest         models.Digest
	Recipient      string
	Subject        string
	IncludeSummary bool
	IncludeImages  bool
	HTML           string
	Text           string
}

// Sink transmits a rendered digest
type Sink interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// Multi delivers to every sink and joins their errors
type Multi struct {
	sinks []Sink
}

// NewMulti drops nil sinks
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) Name() string { return "multi" }

// Sinks returns the configured sink names
func (m *Multi) Sinks() []string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return names
}

func (m *Multi) Deliver(ctx context.Context, d Delivery) error {
	if len(m.sinks) == 0 {
		return ErrNoSinks
	}
	log := logger.Get()

	var errs []error
	for _, s := range m.sinks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.Deliver(ctx, d); err != nil {
			log.Error().
				Err(err).
				Str("sink", s.Name()).
				Str("digest_id", d.Digest.ID).
				Msg("Digest delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		log.Info().
			Str("sink", s.Name()).
			Str("digest_id", d.Digest.ID).
			Int("items", d.Digest.TotalItemCount).
			Msg("Digest delivered")
	}
	return errors.Join(errs...)
}

// LogSink writes a digest summary to the operational log
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(ctx context.Context, d Delivery) error {
	log := logger.Get()
	for _, s := range d.Digest.Sections {
		log.Info().
			Str("digest_id", d.Digest.ID).
			Str("category", s.Category.ID).
			Int("items", len(s.Items)).
			Msg("Digest section")
	}
	log.Info().
		Str("digest_id", d.Digest.ID).
		Str("recipient", d.Recipient).
		Int("total_items", d.Digest.TotalItemCount).
		Int("html_bytes", len(d.HTML)).
		Msg("Digest ready")
	return nil
}
