package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DeepLProvider calls the DeepL translation API
type DeepLProvider struct {
	client   *resty.Client
	apiKey   string
	endpoint string
	timeout  time.Duration
}

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

// NewDeepLProvider returns a DeepL provider. An empty apiKey makes it unavailable.
func NewDeepLProvider(apiKey, endpoint string, timeout time.Duration) *DeepLProvider {
	return &DeepLProvider{
		client:   resty.New().SetTimeout(timeout),
		apiKey:   apiKey,
		endpoint: endpoint,
		timeout:  timeout,
	}
}

func (d *DeepLProvider) Name() string           { return ProviderDeepL }
func (d *DeepLProvider) Timeout() time.Duration { return d.timeout }

// Attempt translates req.Text through DeepL
func (d *DeepLProvider) Attempt(ctx context.Context, req Request) (Result, error) {
	if d.apiKey == "" || d.endpoint == "" {
		return Result{}, ErrUnavailable
	}

	body := deeplRequest{
		Text:       []string{req.Text},
		TargetLang: deeplTarget(req.TargetLang),
	}
	if src := normalizeLang(req.SourceLang); src != "" && src != "und" {
		body.SourceLang = strings.ToUpper(src)
	}

	var out deeplResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "DeepL-Auth-Key "+d.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(d.endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("deepl request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusUnauthorized:
		return Result{}, fmt.Errorf("deepl rejected credentials: %s", resp.Status())
	case 456:
		return Result{}, fmt.Errorf("deepl quota exceeded")
	default:
		return Result{}, fmt.Errorf("deepl error %s: %s", resp.Status(), out.Message)
	}

	if len(out.Translations) == 0 {
		return Result{}, fmt.Errorf("deepl returned no translations")
	}

	return Result{
		TranslatedText:   out.Translations[0].Text,
		DetectedLanguage: strings.ToLower(out.Translations[0].DetectedSourceLanguage),
		Confidence:       ConfidenceDeepL,
	}, nil
}

func deeplTarget(lang string) string {
	switch normalizeLang(lang) {
	case "en":
		return "EN-US"
	case "pt":
		return "PT-PT"
	case "zh":
		return "ZH-HANS"
	default:
		return strings.ToUpper(normalizeLang(lang))
	}
}
