package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

const openAIMaxCompletionTokens = 2000

type OpenAIProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model               string               `json:"model"`
	Messages            []openAIMessage      `json:"messages"`
	MaxCompletionTokens int                  `json:"max_completion_tokens"`
	ResponseFormat      openAIResponseFormat `json:"response_format"`
}

func NewOpenAIProvider(endpoint, apiKey, model string, client *http.Client) *OpenAIProvider {
	return &OpenAIProvider{endpoint: endpoint, apiKey: apiKey, model: model, client: client}
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is not set")
	}

	raw, err := postJSON(ctx, p.client, "openai", p.endpoint,
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		openAIRequest{
			Model:               p.model,
			Messages:            []openAIMessage{{Role: "system", Content: prompt}},
			MaxCompletionTokens: openAIMaxCompletionTokens,
			ResponseFormat:      openAIResponseFormat{Type: "json_object"},
		})
	if err != nil {
		return nil, err
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return nil, errors.New("openai: response has no message content")
	}
	return []byte(content.String()), nil
}
