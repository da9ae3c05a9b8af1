package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GeminiProvider translates through a general-purpose completion model
type GeminiProvider struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewGeminiProvider returns a completion provider. An empty apiKey makes it unavailable.
func NewGeminiProvider(apiKey, model string, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		timeout: timeout,
	}
}

// WithBaseURL points the provider at another endpoint
func (g *GeminiProvider) WithBaseURL(baseURL string) *GeminiProvider {
	g.baseURL = baseURL
	return g
}

func (g *GeminiProvider) Name() string           { return ProviderGemini }
func (g *GeminiProvider) Timeout() time.Duration { return g.timeout }

// Attempt asks the model for a translation and uses the completion verbatim
func (g *GeminiProvider) Attempt(ctx context.Context, req Request) (Result, error) {
	if g.apiKey == "" {
		return Result{}, ErrUnavailable
	}

	prompt := BuildTranslationPrompt(req.Text, req.SourceLang, req.TargetLang)
	text, err := g.callGeminiAPI(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("error calling Gemini API: %w", err)
	}

	return Result{
		TranslatedText: CleanCompletion(text),
		Confidence:     ConfidenceLLM,
	}, nil
}

func (g *GeminiProvider) callGeminiAPI(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: generationConfig{Temperature: 0.2},
	}

	var resp geminiResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", g.apiKey).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if httpResp.IsError() {
		return "", fmt.Errorf("API error: %s", httpResp.Status())
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
