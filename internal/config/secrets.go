package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

// secretGetter is the slice of the Secrets Manager client config uses.
type secretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type secretsFactory func(ctx context.Context, region string) (secretGetter, error)

func newSecretsClient(ctx context.Context, region string) (secretGetter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	return secretsmanager.NewFromConfig(awsCfg), nil
}

// secretSlots maps secret names (after the prefix) to the fields they fill.
func (c *Config) secretSlots() map[string]*string {
	return map[string]*string{
		"FLARUM_API_KEY":    &c.ForumAPIKey,
		"OPENAI_API_KEY":    &c.Keys.OpenAI,
		"ANTHROPIC_API_KEY": &c.Keys.Anthropic,
		"GEMINI_API_KEY":    &c.Keys.Gemini,
	}
}

func (c *Config) missingKeys() bool {
	for _, slot := range c.secretSlots() {
		if *slot == "" {
			return true
		}
	}
	return false
}

// loadSecrets fills keys that are still empty from Secrets Manager, reading
// <prefix><NAME> for each. A secret that cannot be read is skipped.
func (c *Config) loadSecrets(ctx context.Context, factory secretsFactory, logger *slog.Logger) error {
	client, err := factory(ctx, c.AWSRegion)
	if err != nil {
		return err
	}

	for name, slot := range c.secretSlots() {
		if *slot != "" {
			continue
		}
		secretID := c.SecretPrefix + name
		result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretID),
		})
		if err != nil {
			logger.Info("secret not found", "secret_id", secretID, "error", err)
			continue
		}
		if result.SecretString != nil {
			*slot = *result.SecretString
			logger.Info("loaded secret", "secret_id", secretID)
		}
	}
	return nil
}
