// Package pipeline assembles one interaction from configuration and runs it.
// It is shared by the command line and the scheduled entry point.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fbmac/flarumbot/internal/config"
	"github.com/fbmac/flarumbot/internal/forum"
	"github.com/fbmac/flarumbot/internal/ingest"
	"github.com/fbmac/flarumbot/internal/interact"
	"github.com/fbmac/flarumbot/internal/llm"
	"github.com/fbmac/flarumbot/internal/persona"
	"github.com/fbmac/flarumbot/internal/progress"
)

// Options are the inputs of one invocation.
type Options struct {
	// Settings forwarded to config.Load as overrides.
	ConfigFile   string
	Language     string
	ForumBaseURL string
	Model        string
	CreateChance *int

	UserID       int    // 0 picks a random persona
	DiscussionID int    // reply to this discussion when > 0
	CreateNew    bool   // always open a new discussion
	Inspire      string // URL or text file seeding a new discussion title

	Logger     *slog.Logger
	OnProgress progress.Callback
}

// SetupError reports a failure before the interaction started.
type SetupError struct {
	Stage   string
	Message string
	Err     error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Request maps the invocation flags onto an interaction request.
func (o Options) Request() (interact.Request, error) {
	switch {
	case o.UserID < 0:
		return interact.Request{}, fmt.Errorf("%w: user id must not be negative (got %d)", interact.ErrInvalidRequest, o.UserID)
	case o.DiscussionID < 0:
		return interact.Request{}, fmt.Errorf("%w: discussion id must be positive (got %d)", interact.ErrInvalidRequest, o.DiscussionID)
	case o.DiscussionID > 0 && o.CreateNew:
		return interact.Request{}, fmt.Errorf("%w: a discussion id and a new topic are mutually exclusive", interact.ErrInvalidRequest)
	case o.Inspire != "" && !o.CreateNew:
		return interact.Request{}, fmt.Errorf("%w: inspiration is only used when creating a new topic", interact.ErrInvalidRequest)
	case o.DiscussionID > 0:
		return interact.Request{Mode: interact.ModeReply, DiscussionID: o.DiscussionID}, nil
	case o.CreateNew:
		return interact.Request{Mode: interact.ModeCreate}, nil
	default:
		return interact.Request{Mode: interact.ModeAuto}, nil
	}
}

// Run loads the configuration, builds the collaborators and performs one
// interaction.
func Run(ctx context.Context, opts Options) (interact.Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	onProgress := opts.OnProgress
	if onProgress == nil {
		onProgress = progress.NopCallback
	}

	req, err := opts.Request()
	if err != nil {
		return interact.Outcome{}, err
	}

	cfg, err := config.Load(ctx, config.Overrides{
		ConfigFile:   opts.ConfigFile,
		Language:     opts.Language,
		ForumBaseURL: opts.ForumBaseURL,
		Model:        opts.Model,
		CreateChance: opts.CreateChance,
	}, logger)
	if err != nil {
		return interact.Outcome{}, &SetupError{Stage: "config", Message: "failed to load configuration", Err: err}
	}

	locale := persona.LocaleFor(string(cfg.Language))
	p, err := locale.Select(opts.UserID)
	if err != nil {
		return interact.Outcome{}, &SetupError{Stage: "persona", Message: "failed to select persona", Err: err}
	}
	logger.InfoContext(ctx, "persona selected", "persona_id", p.ID, "persona", p.Name, "language", locale.Language)

	if opts.Inspire != "" {
		article, err := ingest.Ingest(ctx, opts.Inspire)
		if err != nil {
			return interact.Outcome{}, &SetupError{Stage: "inspire", Message: "failed to read inspiration", Err: err}
		}
		logger.InfoContext(ctx, "inspiration loaded", "title", article.Title, "words", article.WordCount, "source", article.Source)
		req.Inspiration = article
	}

	gen, err := llm.New(ctx, cfg.LLMOptions())
	if err != nil {
		return interact.Outcome{}, &SetupError{Stage: "model", Message: "failed to set up text generation", Err: err}
	}

	fc := forum.New(cfg.ForumCredentials(), forum.WithTagID(cfg.TagID))
	orch := interact.New(fc, gen, locale, p,
		interact.WithCreateChance(cfg.CreateChance),
		interact.WithLogger(logger),
		interact.WithProgress(onProgress),
	)
	return orch.Run(ctx, req)
}

// Trigger is the JSON payload of a scheduled invocation. An empty payload
// runs in auto mode as a random persona.
type Trigger struct {
	UserID       int    `json:"user_id,omitempty"`
	DiscussionID int    `json:"discussion_id,omitempty"`
	CreateNew    bool   `json:"create_new_topic,omitempty"`
	Language     string `json:"language,omitempty"`
	Model        string `json:"model,omitempty"`
	CreateChance *int   `json:"create_chance,omitempty"`
	Inspire      string `json:"inspire,omitempty"`
}

// Options converts the payload into run options.
func (t Trigger) Options() Options {
	return Options{
		Language:     t.Language,
		Model:        t.Model,
		CreateChance: t.CreateChance,
		UserID:       t.UserID,
		DiscussionID: t.DiscussionID,
		CreateNew:    t.CreateNew,
		Inspire:      t.Inspire,
	}
}
