package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/models"
)

const defaultProviderTimeout = 20 * time.Second

// MaxContentRunes bounds the body text sent to providers
const MaxContentRunes = 5000

// Translator walks an ordered provider chain and never fails: when every
// provider is exhausted it returns the source text with low confidence.
type Translator struct {
	target    string
	providers []Provider
	glossary  *Glossary
}

// NewTranslator builds a translator into target using providers in order
func NewTranslator(target string, glossary *Glossary, providers ...Provider) *Translator {
	chain := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return &Translator{
		target:    normalizeLang(target),
		providers: chain,
		glossary:  glossary,
	}
}

// Target returns the target language code
func (t *Translator) Target() string {
	return t.target
}

// Translate converts text into the target language
func (t *Translator) Translate(ctx context.Context, text, sourceLang string) Result {
	log := logger.Component("translator")
	sourceLang = normalizeLang(sourceLang)

	if strings.TrimSpace(text) == "" {
		return Result{TranslatedText: text, DetectedLanguage: sourceLang, Confidence: ConfidenceExact, ProviderUsed: ProviderNone}
	}
	if sourceLang == t.target || MatchesTargetScript(text, t.target) {
		return Result{TranslatedText: text, DetectedLanguage: t.target, Confidence: ConfidenceExact, ProviderUsed: ProviderNone}
	}

	detected := sourceLang
	if detected == "" || detected == "und" {
		detected = DetectLanguage(text)
	}
	req := Request{Text: text, SourceLang: sourceLang, TargetLang: t.target}

	for _, p := range t.providers {
		if ctx.Err() != nil {
			break
		}
		res, err := t.attempt(ctx, p, req)
		if errors.Is(err, ErrUnavailable) {
			log.Debug().Str("provider", p.Name()).Msg("Translation provider not configured, skipping")
			continue
		}
		if err != nil {
			log.Warn().
				Err(err).
				Str("provider", p.Name()).
				Str("text", preview(text)).
				Msg("Translation provider failed, falling back")
			continue
		}
		if res.DetectedLanguage == "" {
			res.DetectedLanguage = detected
		}
		res.ProviderUsed = p.Name()
		return res
	}

	res := Result{
		TranslatedText:   text,
		DetectedLanguage: detected,
		Confidence:       ConfidenceNone,
		ProviderUsed:     ProviderFallback,
	}
	if matches := t.glossary.Lookup(text, t.target); len(matches) > 0 {
		res.Glossary = matches
		res.Confidence = ConfidenceGlossary
	}
	log.Warn().
		Str("provider", ProviderFallback).
		Int("glossary_terms", len(res.Glossary)).
		Str("text", preview(text)).
		Msg("All translation providers exhausted, keeping source text")
	return res
}

// TranslateItem translates the title and body of a raw item.
// The body is the content when present, otherwise the description.
func (t *Translator) TranslateItem(ctx context.Context, item models.RawItem) (title, content Result) {
	title = t.Translate(ctx, item.Title, item.Language)
	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	content = t.Translate(ctx, Clip(body, MaxContentRunes), item.Language)
	return title, content
}

func (t *Translator) attempt(ctx context.Context, p Provider, req Request) (res Result, err error) {
	timeout := p.Timeout()
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", p.Name(), r)
		}
	}()

	res, err = p.Attempt(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(res.TranslatedText) == "" {
		return Result{}, fmt.Errorf("provider %s returned empty text", p.Name())
	}
	return res, nil
}

// Clip shortens text to at most n runes, cutting at a word boundary when possible
func Clip(text string, n int) string {
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexAny(cut, " \n\t"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}

func preview(text string) string {
	return Clip(text, 60)
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
