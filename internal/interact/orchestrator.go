// Package interact drives one forum interaction for a persona: decide
// whether to reply or open a discussion, generate the text, and publish it.
package interact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fbmac/flarumbot/internal/forum"
	"github.com/fbmac/flarumbot/internal/ingest"
	"github.com/fbmac/flarumbot/internal/llm"
	"github.com/fbmac/flarumbot/internal/persona"
	"github.com/fbmac/flarumbot/internal/progress"
)

const tracerName = "github.com/fbmac/flarumbot/internal/interact"

// Forum is the part of the forum client an interaction needs.
type Forum interface {
	PickRandomOpenDiscussion(ctx context.Context, personaID int) (*forum.DiscussionRef, error)
	FetchDiscussion(ctx context.Context, discussionID int) (*forum.Discussion, error)
	CreateDiscussion(ctx context.Context, personaID int, title, content string) (*forum.Created, error)
	WritePost(ctx context.Context, personaID, discussionID int, content string) (*forum.Created, error)
}

// Kind says which action an interaction takes.
type Kind string

const (
	KindReply     Kind = "reply"
	KindCreateNew Kind = "create"
)

// Decision is the outcome of Decide. Discussion is set only for KindReply.
type Decision struct {
	Kind       Kind
	Discussion *forum.DiscussionRef
}

// Mode selects how Run chooses its action.
type Mode string

const (
	// ModeAuto rolls the dice and looks for a discussion to reply to.
	ModeAuto Mode = "auto"
	// ModeCreate always opens a new discussion.
	ModeCreate Mode = "create"
	// ModeReply replies to Request.DiscussionID without discovery.
	ModeReply Mode = "reply"
)

// Request is one invocation.
type Request struct {
	Mode         Mode
	DiscussionID int
	// Inspiration, when set, seeds the title prompt of a new discussion.
	Inspiration *ingest.Article
}

// Outcome describes what was published.
type Outcome struct {
	Kind         Kind
	DiscussionID int
	PostID       int
	Title        string
	Content      string
}

// Orchestrator runs interactions for a single persona.
type Orchestrator struct {
	forum        Forum
	gen          llm.Generator
	locale       *persona.Locale
	persona      persona.Persona
	createChance int
	roll         Roller
	logger       *slog.Logger
	onProgress   progress.Callback
	tracer       trace.Tracer
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithCreateChance sets the percent chance of a new discussion in ModeAuto.
func WithCreateChance(chance int) Option {
	return func(o *Orchestrator) { o.createChance = chance }
}

func WithRoller(r Roller) Option {
	return func(o *Orchestrator) { o.roll = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithProgress(cb progress.Callback) Option {
	return func(o *Orchestrator) { o.onProgress = cb }
}

func New(f Forum, gen llm.Generator, locale *persona.Locale, p persona.Persona, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		forum:        f,
		gen:          gen,
		locale:       locale,
		persona:      p,
		createChance: DefaultCreateChance,
		roll:         DiceRoll,
		logger:       slog.Default(),
		onProgress:   progress.NopCallback,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Decide picks the action for ModeAuto. Finding nothing to reply to is not
// an error: it falls back to KindCreateNew.
func (o *Orchestrator) Decide(ctx context.Context, forceCreate bool) (_ Decision, err error) {
	ctx, span := o.tracer.Start(ctx, "interact.Decide")
	defer func() { endSpan(span, err) }()

	if forceCreate {
		return Decision{Kind: KindCreateNew}, nil
	}
	if o.roll(o.createChance) {
		o.logger.InfoContext(ctx, "dice chose a new discussion", "chance", o.createChance)
		return Decision{Kind: KindCreateNew}, nil
	}

	o.emit(progress.StageDiscover, "Looking for an open discussion", 0.1)
	ref, err := o.forum.PickRandomOpenDiscussion(ctx, o.persona.ID)
	if err != nil {
		return Decision{}, &StageError{Stage: progress.StageDiscover, Message: "failed to find a discussion", Err: err}
	}
	if ref == nil {
		o.logger.InfoContext(ctx, "no open discussion found, creating a new one", "persona_id", o.persona.ID)
		return Decision{Kind: KindCreateNew}, nil
	}

	o.logger.InfoContext(ctx, "picked discussion", "discussion_id", ref.ID, "title", ref.Title)
	span.SetAttributes(attribute.Int("discussion.id", ref.ID))
	return Decision{Kind: KindReply, Discussion: ref}, nil
}

// CreateNew generates a title and a body, then opens the discussion. Nothing
// is written unless both generations succeed.
func (o *Orchestrator) CreateNew(ctx context.Context, inspiration *ingest.Article) (_ Outcome, err error) {
	ctx, span := o.tracer.Start(ctx, "interact.CreateNew")
	defer func() { endSpan(span, err) }()

	titlePrompt := o.locale.TitlePrompt()
	if inspiration != nil {
		titlePrompt = o.locale.InspiredTitlePrompt(inspiration.Title, inspiration.Excerpt)
		o.logger.InfoContext(ctx, "using inspiration", "source", inspiration.Source)
	}

	o.emit(progress.StageGenerate, "Writing a title", 0.3)
	title, err := o.gen.Generate(ctx, o.persona.SystemInstruction, titlePrompt)
	if err != nil {
		return Outcome{}, &StageError{Stage: progress.StageGenerate, Message: "failed to generate title", Err: err}
	}
	title = cleanTitle(title)

	o.emit(progress.StageGenerate, "Writing the first post", 0.6)
	body, err := o.gen.Generate(ctx, o.persona.SystemInstruction, o.locale.BodyPrompt(title))
	if err != nil {
		return Outcome{}, &StageError{Stage: progress.StageGenerate, Message: "failed to generate body", Err: err}
	}

	o.emit(progress.StagePublish, "Creating the discussion", 0.9)
	created, err := o.forum.CreateDiscussion(ctx, o.persona.ID, title, body)
	if err != nil {
		return Outcome{}, &StageError{Stage: progress.StagePublish, Message: "failed to create discussion", Err: err}
	}

	o.logger.InfoContext(ctx, "created discussion", "discussion_id", created.ID, "title", title, "body_chars", len(body))
	return Outcome{Kind: KindCreateNew, DiscussionID: created.ID, Title: title, Content: body}, nil
}

// Reply answers the last post of a discussion, giving the model the whole
// history oldest first.
func (o *Orchestrator) Reply(ctx context.Context, discussionID int) (_ Outcome, err error) {
	ctx, span := o.tracer.Start(ctx, "interact.Reply", trace.WithAttributes(attribute.Int("discussion.id", discussionID)))
	defer func() { endSpan(span, err) }()

	o.emit(progress.StageFetch, fmt.Sprintf("Reading discussion %d", discussionID), 0.2)
	d, err := o.forum.FetchDiscussion(ctx, discussionID)
	if err != nil {
		return Outcome{}, &StageError{Stage: progress.StageFetch, Message: "failed to fetch discussion", Err: err}
	}
	history := strings.Join(d.Posts, "\n\n")
	o.logger.InfoContext(ctx, "fetched discussion", "discussion_id", discussionID, "title", d.Title, "posts", len(d.Posts))

	o.emit(progress.StageGenerate, "Writing a reply", 0.5)
	reply, err := o.gen.Generate(ctx, o.persona.SystemInstruction, o.locale.ReplyPrompt(d.Title, history))
	if err != nil {
		return Outcome{}, &StageError{Stage: progress.StageGenerate, Message: "failed to generate reply", Err: err}
	}

	o.emit(progress.StagePublish, "Posting the reply", 0.9)
	created, err := o.forum.WritePost(ctx, o.persona.ID, discussionID, reply)
	if err != nil {
		return Outcome{}, &StageError{Stage: progress.StagePublish, Message: "failed to write post", Err: err}
	}

	o.logger.InfoContext(ctx, "posted reply", "discussion_id", discussionID, "post_id", created.ID, "chars", len(reply))
	return Outcome{Kind: KindReply, DiscussionID: discussionID, PostID: created.ID, Title: d.Title, Content: reply}, nil
}

// Run executes one interaction. Any failure aborts it; no step is retried
// and nothing already written is undone.
func (o *Orchestrator) Run(ctx context.Context, req Request) (_ Outcome, err error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "interact.Run", trace.WithAttributes(
		attribute.String("mode", string(req.Mode)),
		attribute.Int("persona.id", o.persona.ID),
		attribute.String("language", string(o.locale.Language)),
	))
	defer func() { endSpan(span, err) }()

	o.logger.InfoContext(ctx, "interaction starting", "mode", req.Mode, "persona_id", o.persona.ID, "persona", o.persona.Name)

	var out Outcome
	switch req.Mode {
	case ModeReply:
		if req.DiscussionID <= 0 {
			return Outcome{}, fmt.Errorf("%w: reply mode needs a discussion id, got %d", ErrInvalidRequest, req.DiscussionID)
		}
		out, err = o.Reply(ctx, req.DiscussionID)
	case ModeCreate:
		out, err = o.CreateNew(ctx, req.Inspiration)
	case ModeAuto, "":
		var d Decision
		d, err = o.Decide(ctx, false)
		if err != nil {
			break
		}
		if d.Kind == KindReply {
			out, err = o.Reply(ctx, d.Discussion.ID)
		} else {
			out, err = o.CreateNew(ctx, req.Inspiration)
		}
	default:
		return Outcome{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}

	if err != nil {
		e := progress.NewEvent(stageOf(err), "Interaction failed", 0, start)
		e.Error = err
		o.onProgress(e)
		return Outcome{}, err
	}

	msg := "Replied"
	if out.Kind == KindCreateNew {
		msg = "Created discussion"
	}
	done := progress.NewEvent(progress.StageComplete, msg, 1, start)
	done.DiscussionID = out.DiscussionID
	done.Title = out.Title
	o.onProgress(done)
	o.logger.InfoContext(ctx, "interaction complete", "kind", out.Kind, "discussion_id", out.DiscussionID, "elapsed", time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (o *Orchestrator) emit(stage progress.Stage, msg string, pct float64) {
	o.onProgress(progress.Event{Stage: stage, Message: msg, Percent: pct})
}

// cleanTitle strips whitespace and the quotes models like to wrap titles in.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}} {
		open, closing := q[0], q[1]
		if len(s) > len(open)+len(closing) && strings.HasPrefix(s, open) && strings.HasSuffix(s, closing) {
			s = strings.TrimSpace(s[len(open) : len(s)-len(closing)])
		}
	}
	return s
}

func stageOf(err error) progress.Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
