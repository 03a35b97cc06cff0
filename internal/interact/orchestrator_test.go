package interact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbmac/flarumbot/internal/forum"
	"github.com/fbmac/flarumbot/internal/ingest"
	"github.com/fbmac/flarumbot/internal/llm"
	"github.com/fbmac/flarumbot/internal/persona"
	"github.com/fbmac/flarumbot/internal/progress"
)

type createCall struct {
	PersonaID int
	Title     string
	Content   string
}

type postCall struct {
	PersonaID    int
	DiscussionID int
	Content      string
}

// fakeForum records every call and answers from its fields.
type fakeForum struct {
	mu sync.Mutex

	pick       *forum.DiscussionRef
	pickErr    error
	discussion *forum.Discussion
	fetchErr   error
	createErr  error
	postErr    error

	picks   []int
	fetches []int
	creates []createCall
	posts   []postCall
}

func (f *fakeForum) PickRandomOpenDiscussion(_ context.Context, personaID int) (*forum.DiscussionRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.picks = append(f.picks, personaID)
	return f.pick, f.pickErr
}

func (f *fakeForum) FetchDiscussion(_ context.Context, discussionID int) (*forum.Discussion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, discussionID)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.discussion, nil
}

func (f *fakeForum) CreateDiscussion(_ context.Context, personaID int, title, content string) (*forum.Created, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{PersonaID: personaID, Title: title, Content: content})
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &forum.Created{ID: 900}, nil
}

func (f *fakeForum) WritePost(_ context.Context, personaID, discussionID int, content string) (*forum.Created, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, postCall{PersonaID: personaID, DiscussionID: discussionID, Content: content})
	if f.postErr != nil {
		return nil, f.postErr
	}
	return &forum.Created{ID: 501}, nil
}

type prompt struct {
	System string
	User   string
}

// scriptedGenerator answers with replies in order and fails on call failAt
// (1-based) when set.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	failAt  int
	failErr error
	prompts []prompt
}

func (g *scriptedGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt{System: system, User: user})
	n := len(g.prompts)
	if n == g.failAt {
		return "", g.failErr
	}
	if n > len(g.replies) {
		return "", fmt.Errorf("unexpected generation #%d", n)
	}
	return g.replies[n-1], nil
}

var _ llm.Generator = (*scriptedGenerator)(nil)

func testPersona(t *testing.T, locale *persona.Locale) persona.Persona {
	t.Helper()
	p, err := locale.Find(7)
	require.NoError(t, err)
	return p
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func rollAlways(result bool) Roller {
	return func(int) bool { return result }
}

func newTestOrchestrator(t *testing.T, f Forum, g llm.Generator, opts ...Option) (*Orchestrator, *persona.Locale, persona.Persona) {
	t.Helper()
	locale := persona.LocaleFor("en")
	p := testPersona(t, locale)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(f, g, locale, p, opts...), locale, p
}

func TestAutoFallsBackToNewDiscussion(t *testing.T) {
	f := &fakeForum{}
	g := &scriptedGenerator{replies: []string{"Smurfs Rule", "Blue is the best color."}}
	o, locale, p := newTestOrchestrator(t, f, g, WithRoller(rollAlways(false)))

	out, err := o.Run(context.Background(), Request{Mode: ModeAuto})
	require.NoError(t, err)

	assert.Equal(t, []int{p.ID}, f.picks)
	assert.Empty(t, f.fetches)
	assert.Empty(t, f.posts)
	assert.Equal(t, []prompt{
		{System: p.SystemInstruction, User: locale.TitlePrompt()},
		{System: p.SystemInstruction, User: locale.BodyPrompt("Smurfs Rule")},
	}, g.prompts)
	assert.Equal(t, []createCall{{PersonaID: p.ID, Title: "Smurfs Rule", Content: "Blue is the best color."}}, f.creates)
	assert.Equal(t, Outcome{Kind: KindCreateNew, DiscussionID: 900, Title: "Smurfs Rule", Content: "Blue is the best color."}, out)
}

func TestAutoRepliesToPickedDiscussion(t *testing.T) {
	f := &fakeForum{
		pick:       &forum.DiscussionRef{ID: 42, Title: "Cats"},
		discussion: &forum.Discussion{ID: 42, Title: "Cats", Posts: []string{"a", "b"}},
	}
	g := &scriptedGenerator{replies: []string{"Dogs are better."}}
	o, locale, p := newTestOrchestrator(t, f, g, WithRoller(rollAlways(false)))

	out, err := o.Run(context.Background(), Request{Mode: ModeAuto})
	require.NoError(t, err)

	assert.Equal(t, []int{42}, f.fetches)
	assert.Equal(t, []prompt{{System: p.SystemInstruction, User: locale.ReplyPrompt("Cats", "a\n\nb")}}, g.prompts)
	assert.Equal(t, []postCall{{PersonaID: p.ID, DiscussionID: 42, Content: "Dogs are better."}}, f.posts)
	assert.Empty(t, f.creates)
	assert.Equal(t, KindReply, out.Kind)
	assert.Equal(t, 501, out.PostID)
}

func TestCreateModeNeverDiscovers(t *testing.T) {
	f := &fakeForum{pick: &forum.DiscussionRef{ID: 1, Title: "unused"}}
	g := &scriptedGenerator{replies: []string{"Title", "Body"}}
	rolled := false
	o, _, _ := newTestOrchestrator(t, f, g, WithRoller(func(int) bool {
		rolled = true
		return false
	}))

	out, err := o.Run(context.Background(), Request{Mode: ModeCreate})
	require.NoError(t, err)
	assert.Equal(t, KindCreateNew, out.Kind)
	assert.False(t, rolled)
	assert.Empty(t, f.picks)
	assert.Len(t, f.creates, 1)
}

func TestDecideForcedCreate(t *testing.T) {
	f := &fakeForum{}
	o, _, _ := newTestOrchestrator(t, f, &scriptedGenerator{}, WithRoller(rollAlways(false)))

	d, err := o.Decide(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, Decision{Kind: KindCreateNew}, d)
	assert.Empty(t, f.picks)
}

func TestDecideDiceChoosesCreate(t *testing.T) {
	f := &fakeForum{pick: &forum.DiscussionRef{ID: 1, Title: "x"}}
	var gotChance int
	o, _, _ := newTestOrchestrator(t, f, &scriptedGenerator{}, WithCreateChance(35), WithRoller(func(chance int) bool {
		gotChance = chance
		return true
	}))

	d, err := o.Decide(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, KindCreateNew, d.Kind)
	assert.Equal(t, 35, gotChance)
	assert.Empty(t, f.picks)
}

func TestDecideDefaultChance(t *testing.T) {
	var gotChance int
	o, _, _ := newTestOrchestrator(t, &fakeForum{}, &scriptedGenerator{}, WithRoller(func(chance int) bool {
		gotChance = chance
		return true
	}))

	_, err := o.Decide(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, DefaultCreateChance, gotChance)
}

func TestDecideReply(t *testing.T) {
	ref := &forum.DiscussionRef{ID: 42, Title: "Cats"}
	o, _, _ := newTestOrchestrator(t, &fakeForum{pick: ref}, &scriptedGenerator{}, WithRoller(rollAlways(false)))

	d, err := o.Decide(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, Decision{Kind: KindReply, Discussion: ref}, d)
}

func TestDiscoveryFailureAborts(t *testing.T) {
	cause := &forum.RemoteCallError{Op: "list discussions", StatusCode: 502, Err: errors.New("bad gateway")}
	f := &fakeForum{pickErr: cause}
	g := &scriptedGenerator{}
	o, _, _ := newTestOrchestrator(t, f, g, WithRoller(rollAlways(false)))

	_, err := o.Run(context.Background(), Request{Mode: ModeAuto})
	require.Error(t, err)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, progress.StageDiscover, se.Stage)
	assert.True(t, errors.Is(err, forum.ErrRemoteCall))
	assert.Empty(t, g.prompts)
	assert.Empty(t, f.creates)
}

func TestBodyFailureSkipsCreate(t *testing.T) {
	f := &fakeForum{}
	g := &scriptedGenerator{replies: []string{"Title"}, failAt: 2, failErr: fmt.Errorf("openai: %w", llm.ErrMissingContent)}
	o, _, _ := newTestOrchestrator(t, f, g)

	_, err := o.Run(context.Background(), Request{Mode: ModeCreate})
	require.Error(t, err)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, progress.StageGenerate, se.Stage)
	assert.Equal(t, "failed to generate body", se.Message)
	assert.True(t, errors.Is(err, llm.ErrMissingContent))
	assert.Empty(t, f.creates)
}

func TestTitleFailureSkipsBody(t *testing.T) {
	f := &fakeForum{}
	g := &scriptedGenerator{failAt: 1, failErr: fmt.Errorf("OPENAI_API_KEY: %w", llm.ErrMissingCredential)}
	o, _, _ := newTestOrchestrator(t, f, g)

	_, err := o.Run(context.Background(), Request{Mode: ModeCreate})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrMissingCredential))
	assert.Len(t, g.prompts, 1)
	assert.Empty(t, f.creates)
}

func TestReplyModeSkipsDiscovery(t *testing.T) {
	f := &fakeForum{discussion: &forum.Discussion{ID: 42, Title: "Cats", Posts: []string{"only"}}}
	g := &scriptedGenerator{replies: []string{"reply"}}
	o, _, _ := newTestOrchestrator(t, f, g, WithRoller(func(int) bool {
		t.Fatal("reply mode must not roll")
		return false
	}))

	out, err := o.Run(context.Background(), Request{Mode: ModeReply, DiscussionID: 42})
	require.NoError(t, err)
	assert.Empty(t, f.picks)
	assert.Equal(t, []int{42}, f.fetches)
	assert.Equal(t, 42, out.DiscussionID)
}

func TestReplyModeNeedsDiscussion(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, &fakeForum{}, &scriptedGenerator{})

	_, err := o.Run(context.Background(), Request{Mode: ModeReply})
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = o.Run(context.Background(), Request{Mode: "sideways"})
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestFetchFailureSkipsGeneration(t *testing.T) {
	f := &fakeForum{fetchErr: &forum.MalformedResponseError{Op: "fetch discussion", Detail: "missing included array"}}
	g := &scriptedGenerator{}
	o, _, _ := newTestOrchestrator(t, f, g)

	_, err := o.Reply(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, forum.ErrMalformedResponse))
	assert.Empty(t, g.prompts)
	assert.Empty(t, f.posts)
}

func TestPublishFailure(t *testing.T) {
	f := &fakeForum{
		discussion: &forum.Discussion{ID: 42, Title: "Cats", Posts: []string{"a"}},
		postErr:    &forum.RemoteCallError{Op: "write post", StatusCode: 403, Err: errors.New("forbidden")},
	}
	o, _, _ := newTestOrchestrator(t, f, &scriptedGenerator{replies: []string{"hi"}})

	_, err := o.Reply(context.Background(), 42)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, progress.StagePublish, se.Stage)
	assert.Len(t, f.posts, 1)
}

func TestInspirationSeedsTitlePrompt(t *testing.T) {
	f := &fakeForum{}
	g := &scriptedGenerator{replies: []string{`"Mars, again"`, "body"}}
	o, locale, _ := newTestOrchestrator(t, f, g)

	article := &ingest.Article{Title: "Mars news", Excerpt: "Colonies soon.", Source: "https://example.com"}
	out, err := o.CreateNew(context.Background(), article)
	require.NoError(t, err)

	require.Len(t, g.prompts, 2)
	assert.Equal(t, locale.InspiredTitlePrompt("Mars news", "Colonies soon."), g.prompts[0].User)
	assert.Equal(t, locale.BodyPrompt("Mars, again"), g.prompts[1].User)
	assert.Equal(t, "Mars, again", out.Title)
}

func TestProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var stages []progress.Stage
	record := func(e progress.Event) {
		mu.Lock()
		defer mu.Unlock()
		stages = append(stages, e.Stage)
	}

	f := &fakeForum{
		pick:       &forum.DiscussionRef{ID: 42, Title: "Cats"},
		discussion: &forum.Discussion{ID: 42, Title: "Cats"},
	}
	o, _, _ := newTestOrchestrator(t, f, &scriptedGenerator{replies: []string{"hi"}},
		WithRoller(rollAlways(false)), WithProgress(record))

	_, err := o.Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []progress.Stage{
		progress.StageDiscover,
		progress.StageFetch,
		progress.StageGenerate,
		progress.StagePublish,
		progress.StageComplete,
	}, stages)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Hello", cleanTitle("  Hello \n"))
	assert.Equal(t, "Hello", cleanTitle(`"Hello"`))
	assert.Equal(t, "Hello", cleanTitle("“Hello”"))
	assert.Equal(t, `"`, cleanTitle(`"`))
	assert.Equal(t, `Say "hi"`, cleanTitle(`Say "hi"`))
}

func TestDiceRollBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		assert.False(t, DiceRoll(0))
		assert.True(t, DiceRoll(100))
	}
}
