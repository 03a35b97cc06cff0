// Package config assembles the settings of one run from a .env file, an
// optional YAML file, the environment, command-line overrides and, for
// missing keys, AWS Secrets Manager.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fbmac/flarumbot/internal/forum"
	"github.com/fbmac/flarumbot/internal/interact"
	"github.com/fbmac/flarumbot/internal/llm"
	"github.com/fbmac/flarumbot/internal/persona"
)

// ErrMissingCredential reports that the forum API key could not be found.
var ErrMissingCredential = errors.New("missing credential")

// Config is built once per run and not modified afterwards.
type Config struct {
	Language     persona.Language
	ForumBaseURL string
	ForumAPIKey  string
	Model        string
	Keys         llm.Keys
	OpenAIURL    string
	CreateChance int
	TagID        string
	LLMTimeout   time.Duration
	SecretPrefix string
	AWSRegion    string
}

// Overrides carries command-line values. Zero values leave the setting alone.
type Overrides struct {
	ConfigFile   string
	Language     string
	ForumBaseURL string
	Model        string
	CreateChance *int
}

// fileConfig mirrors the YAML file.
type fileConfig struct {
	Language     string `yaml:"language"`
	ForumBaseURL string `yaml:"forum_base_url"`
	Model        string `yaml:"model"`
	CreateChance *int   `yaml:"create_chance"`
	TagID        string `yaml:"tag_id"`
	LLMTimeout   string `yaml:"llm_timeout"`
	SecretPrefix string `yaml:"secret_prefix"`
}

// DefaultPath is where the YAML file is looked up when FLARUMBOT_CONFIG is
// not set.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "flarumbot", "config.yaml")
}

// Load builds the Config for this process.
func Load(ctx context.Context, ov Overrides, logger *slog.Logger) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, ov, os.Getenv, newSecretsClient, logger)
}

// load is Load with its environment and Secrets Manager injected.
func load(ctx context.Context, ov Overrides, getenv func(string) string, secrets secretsFactory, logger *slog.Logger) (*Config, error) {
	cfg := &Config{
		Language:     persona.English,
		CreateChance: interact.DefaultCreateChance,
		TagID:        forum.DefaultTagID,
		LLMTimeout:   llm.DefaultTimeout,
	}

	path, explicit := ov.ConfigFile, ov.ConfigFile != ""
	if !explicit {
		if path = getenv("FLARUMBOT_CONFIG"); path != "" {
			explicit = true
		} else {
			path = DefaultPath()
		}
	}
	if err := cfg.applyFile(path, explicit); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.applyOverrides(ov)

	if !persona.IsValidLanguage(string(cfg.Language)) {
		logger.Warn("unknown language, using English", "language", cfg.Language)
		cfg.Language = persona.English
	}
	if cfg.ForumBaseURL == "" {
		cfg.ForumBaseURL = persona.LocaleFor(string(cfg.Language)).ForumBaseURL
	}

	if cfg.SecretPrefix != "" && cfg.missingKeys() {
		if err := cfg.loadSecrets(ctx, secrets, logger); err != nil {
			logger.Warn("failed to load secrets from Secrets Manager, falling back to env vars", "error", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&c.ForumBaseURL, fc.ForumBaseURL)
	setString(&c.Model, fc.Model)
	setString(&c.TagID, fc.TagID)
	setString(&c.SecretPrefix, fc.SecretPrefix)
	if fc.Language != "" {
		c.Language = persona.Language(strings.ToLower(strings.TrimSpace(fc.Language)))
	}
	if fc.CreateChance != nil {
		c.CreateChance = *fc.CreateChance
	}
	if fc.LLMTimeout != "" {
		d, err := time.ParseDuration(fc.LLMTimeout)
		if err != nil {
			return fmt.Errorf("parse config %s: llm_timeout: %w", path, err)
		}
		c.LLMTimeout = d
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString(&c.ForumAPIKey, getenv("FLARUM_API_KEY"))
	setString(&c.ForumBaseURL, getenv("FLARUM_BASE_URL"))
	setString(&c.Model, getenv("AI_MODEL"))
	setString(&c.Keys.OpenAI, getenv("OPENAI_API_KEY"))
	setString(&c.OpenAIURL, getenv("OPENAI_BASE_URL"))
	setString(&c.Keys.Anthropic, getenv("ANTHROPIC_API_KEY"))
	setString(&c.Keys.Gemini, getenv("GEMINI_API_KEY"))
	setString(&c.SecretPrefix, getenv("FLARUMBOT_SECRET_PREFIX"))
	setString(&c.AWSRegion, getenv("AWS_REGION"))
	if v := getenv("FLARUMBOT_CREATE_CHANCE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FLARUMBOT_CREATE_CHANCE: %w", err)
		}
		c.CreateChance = n
	}
	return nil
}

func (c *Config) applyOverrides(ov Overrides) {
	if ov.Language != "" {
		c.Language = persona.Language(strings.ToLower(strings.TrimSpace(ov.Language)))
	}
	setString(&c.ForumBaseURL, ov.ForumBaseURL)
	setString(&c.Model, ov.Model)
	if ov.CreateChance != nil {
		c.CreateChance = *ov.CreateChance
	}
}

// Validate checks the settings a run cannot do without. Model API keys are
// checked by the generator at call time since only one provider is used.
func (c *Config) Validate() error {
	if c.ForumAPIKey == "" {
		return fmt.Errorf("FLARUM_API_KEY: %w", ErrMissingCredential)
	}
	if c.CreateChance < 0 || c.CreateChance > 100 {
		return fmt.Errorf("create chance must be between 0 and 100 (got %d)", c.CreateChance)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm timeout must be positive (got %s)", c.LLMTimeout)
	}
	if !strings.HasPrefix(c.ForumBaseURL, "http://") && !strings.HasPrefix(c.ForumBaseURL, "https://") {
		return fmt.Errorf("forum base URL must be http(s) (got %q)", c.ForumBaseURL)
	}
	return nil
}

// ForumCredentials returns what forum.New needs.
func (c *Config) ForumCredentials() forum.Credentials {
	return forum.Credentials{BaseURL: c.ForumBaseURL, APIKey: c.ForumAPIKey}
}

// LLMOptions returns what llm.New needs.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{Model: c.Model, Keys: c.Keys, Timeout: c.LLMTimeout, OpenAIBaseURL: c.OpenAIURL}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
