package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIGenerator calls the chat completions endpoint.
type OpenAIGenerator struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIGenerator(model, apiKey, baseURL string, timeout time.Duration) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIGenerator{
		model:   model,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY: %w", ErrMissingCredential)
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model: g.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI request: %w", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error (status %d): %s", res.StatusCode, truncate(string(respBody), 500))
	}

	var resp openAIResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%s: %w", ProviderOpenAI, ErrMissingContent)
	}
	return finish(ProviderOpenAI, *resp.Choices[0].Message.Content)
}
