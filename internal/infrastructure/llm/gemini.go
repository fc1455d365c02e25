package llm

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const geminiMaxOutputTokens = 3000

type GeminiProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens  int    `json:"maxOutputTokens"`
	ResponseMimeType string `json:"response_mime_type"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

func NewGeminiProvider(baseURL, apiKey, model string, client *http.Client) *GeminiProvider {
	return &GeminiProvider{baseURL: baseURL, apiKey: apiKey, model: model, client: client}
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is not set")
	}

	endpoint := p.baseURL + p.model + ":generateContent?key=" + url.QueryEscape(p.apiKey)
	raw, err := postJSON(ctx, p.client, "gemini", endpoint, nil, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens:  geminiMaxOutputTokens,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	text := gjson.GetBytes(raw, "candidates.0.content.parts.0.text")
	if !text.Exists() {
		return nil, errors.New("gemini: response has no candidate text")
	}
	return []byte(text.String()), nil
}
