package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var claudeModels = map[string]string{
	"haiku":  "claude-haiku-4-5-20251001",
	"sonnet": "claude-sonnet-4-5-20250929",
}

// ClaudeGenerator calls the Anthropic Messages API.
type ClaudeGenerator struct {
	model   string
	apiKey  string
	timeout time.Duration
}

func NewClaudeGenerator(model, apiKey string, timeout time.Duration) *ClaudeGenerator {
	return &ClaudeGenerator{
		model:   resolve(claudeModels, model, "haiku"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (g *ClaudeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY: %w", ErrMissingCredential)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(g.apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(g.timeout),
	)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	return finish(ProviderClaude, extractText(message))
}

func extractText(msg *anthropic.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "")
}
