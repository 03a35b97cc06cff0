package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

var novaModels = map[string]string{
	"nova-lite": "us.amazon.nova-2-lite-v1:0",
}

// NovaGenerator calls Amazon Nova through Bedrock Converse.
type NovaGenerator struct {
	model   string
	client  *bedrockruntime.Client
	timeout time.Duration
}

// NewNovaGenerator uses cfg when given, otherwise the default AWS chain.
func NewNovaGenerator(ctx context.Context, model string, cfg *aws.Config, timeout time.Duration) (*NovaGenerator, error) {
	if cfg == nil {
		loaded, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		otelaws.AppendMiddlewares(&loaded.APIOptions)
		cfg = &loaded
	}
	return &NovaGenerator{
		model: resolve(novaModels, model, "nova-lite"),
		client: bedrockruntime.NewFromConfig(*cfg, func(o *bedrockruntime.Options) {
			o.RetryMaxAttempts = 1
		}),
		timeout: timeout,
	}, nil
}

func (g *NovaGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(g.model),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: user},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens: aws.Int32(maxTokens),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Bedrock Converse error: %w", err)
	}

	return finish(ProviderNova, extractNovaText(resp))
}

func extractNovaText(resp *bedrockruntime.ConverseOutput) string {
	if resp.Output == nil {
		return ""
	}
	msg, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			return tb.Value
		}
	}
	return ""
}
