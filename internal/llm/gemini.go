package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	model   string
	apiKey  string
	timeout time.Duration
}

func NewGeminiGenerator(model, apiKey string, timeout time.Duration) *GeminiGenerator {
	return &GeminiGenerator{
		model:   resolve(geminiModels, model, "gemini-flash"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY: %w", ErrMissingCredential)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%s: %w", ProviderGemini, ErrMissingContent)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return finish(ProviderGemini, sb.String())
}
