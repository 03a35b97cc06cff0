// Package llm turns a (system, user) prompt pair into generated text using
// one of several hosted model providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrMissingCredential means the provider's API key is not configured.
	ErrMissingCredential = errors.New("missing API key")

	// ErrMissingContent means the provider answered without usable text.
	ErrMissingContent = errors.New("missing content in model response")
)

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

const (
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 120 * time.Second

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	maxTokens = 2048

	tracerName = "github.com/fbmac/flarumbot/internal/llm"
)

// Provider names a model backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
	ProviderNova   Provider = "nova"
)

// Keys carries the API keys of the key-based providers. Nova authenticates
// through the AWS credential chain instead.
type Keys struct {
	OpenAI    string
	Anthropic string
	Gemini    string
}

// Options configures New.
type Options struct {
	Model   string
	Keys    Keys
	Timeout time.Duration

	// OpenAIBaseURL overrides the chat completions endpoint root.
	OpenAIBaseURL string

	// AWS is the configuration used for Bedrock. When nil it is loaded from
	// the default chain on first use.
	AWS *aws.Config
}

// ProviderFor maps a model name to its backend. Short aliases and native
// model ids are recognized; anything else is treated as an OpenAI model id.
func ProviderFor(model string) Provider {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case claudeModels[m] != "" || strings.HasPrefix(m, "claude-"):
		return ProviderClaude
	case geminiModels[m] != "" || strings.HasPrefix(m, "gemini-"):
		return ProviderGemini
	case novaModels[m] != "" || strings.Contains(m, "amazon.nova"):
		return ProviderNova
	default:
		return ProviderOpenAI
	}
}

// Aliases lists the short model names accepted besides raw model ids.
func Aliases() []string {
	var names []string
	for _, m := range []map[string]string{claudeModels, geminiModels, novaModels} {
		for alias := range m {
			names = append(names, alias)
		}
	}
	sort.Strings(names)
	return names
}

// New builds the generator for opts.Model.
func New(ctx context.Context, opts Options) (Generator, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var g Generator
	provider := ProviderFor(model)
	switch provider {
	case ProviderClaude:
		g = NewClaudeGenerator(model, opts.Keys.Anthropic, timeout)
	case ProviderGemini:
		g = NewGeminiGenerator(model, opts.Keys.Gemini, timeout)
	case ProviderNova:
		nova, err := NewNovaGenerator(ctx, model, opts.AWS, timeout)
		if err != nil {
			return nil, err
		}
		g = nova
	default:
		g = NewOpenAIGenerator(model, opts.Keys.OpenAI, opts.OpenAIBaseURL, timeout)
	}
	return &tracedGenerator{
		next:     g,
		provider: provider,
		model:    model,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// tracedGenerator records one span per generation.
type tracedGenerator struct {
	next     Generator
	provider Provider
	model    string
	tracer   trace.Tracer
}

func (t *tracedGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "llm.Generate", trace.WithAttributes(
		attribute.String("llm.provider", string(t.provider)),
		attribute.String("llm.model", t.model),
		attribute.Int("llm.prompt_chars", len(system)+len(user)),
	))
	defer span.End()

	text, err := t.next.Generate(ctx, system, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(text)))
	return text, nil
}

// resolve maps an alias through table, passing native ids through.
func resolve(table map[string]string, model, fallback string) string {
	if id := table[strings.ToLower(strings.TrimSpace(model))]; id != "" {
		return id
	}
	if model = strings.TrimSpace(model); model != "" {
		return model
	}
	return table[fallback]
}

// finish normalizes a provider answer: blank text is ErrMissingContent.
func finish(provider Provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", provider, ErrMissingContent)
	}
	return text, nil
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
