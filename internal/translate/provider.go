package translate

import (
	"context"
	"errors"
	"time"
)

// Provider names reported in Result.ProviderUsed
const (
	ProviderNone     = "none"
	ProviderDeepL    = "deepl"
	ProviderGemini   = "gemini"
	ProviderFallback = "fallback"
)

// Confidence levels attached to results
const (
	ConfidenceExact    = 1.0
	ConfidenceDeepL    = 0.95
	ConfidenceLLM      = 0.9
	ConfidenceGlossary = 0.3
	ConfidenceNone     = 0.1

	// LowConfidenceThreshold separates real translations from the fallback path
	LowConfidenceThreshold = 0.5
)

// ErrUnavailable means the provider is not configured and should be skipped
// without being counted as a failure.
var ErrUnavailable = errors.New("translation provider unavailable")

// Request is one unit of text to translate
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Result is the outcome of a translation
type Result struct {
	TranslatedText   string            `json:"translated_text"`
	DetectedLanguage string            `json:"detected_language"`
	Confidence       float64           `json:"confidence"`
	ProviderUsed     string            `json:"provider_used"`
	Glossary         map[string]string `json:"glossary,omitempty"`
}

// Provider is one strategy of the fallback chain
type Provider interface {
	Name() string
	Timeout() time.Duration
	Attempt(ctx context.Context, req Request) (Result, error)
}
