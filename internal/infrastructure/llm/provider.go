package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 4 << 20

// Provider sends one prompt to a model and returns the JSON object text it
// answered with.
type Provider interface {
	Complete(ctx context.Context, prompt string) ([]byte, error)
}

type Config struct {
	// Provider is one of "openai", "gemini" or "static".
	Provider       string
	Model          string
	OpenAIEndpoint string
	GeminiBaseURL  string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	RequestTimeout time.Duration
}

// APIError is a non-2xx answer from a model API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
}

func NewProvider(cfg Config, httpClient *http.Client) (Provider, error) {
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.RequestTimeout)
	}

	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.Model, httpClient), nil
	case "gemini":
		return NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.Model, httpClient), nil
	case "static":
		return NewStaticProvider(), nil
	}

	return nil, fmt.Errorf("llm provider not supported: %q: supported providers: [openai, gemini, static]", cfg.Provider)
}

// NewHTTPClient returns a client whose requests are traced.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		// The request URL may carry an API key.
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = provider + " API error"
		}
		return nil, &APIError{Provider: provider, StatusCode: resp.StatusCode, Message: msg}
	}

	return raw, nil
}
