package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbmac/flarumbot/internal/interact"
	"github.com/fbmac/flarumbot/internal/pipeline"
)

func resetFlags() {
	flagUserID = 0
	flagDiscussionID = 0
	flagCreateNew = false
	flagLanguage = ""
	flagModel = ""
	flagInspire = ""
	flagConfig = ""
	flagCreateChance = 0
	rootCmd.Flags().Lookup("create-chance").Changed = false
	flagListLanguage = "en"
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tuiModel, keys ...tea.KeyMsg) tuiModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(tuiModel)
	}
	return m
}

func repeat(k tea.KeyMsg, n int) []tea.KeyMsg {
	out := make([]tea.KeyMsg, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestListPersonas(t *testing.T) {
	resetFlags()
	out, err := execute(t, "list-personas", "-l", "pt")
	require.NoError(t, err)
	assert.Contains(t, out, "PORTUGUÊS")
	assert.Contains(t, out, "forumbr.fbmac.net")
	assert.Contains(t, out, "Luke Skywalker")
}

func TestListPersonasRejectsUnknownLanguage(t *testing.T) {
	resetFlags()
	_, err := execute(t, "list-personas", "-l", "fr")
	assert.ErrorContains(t, err, "invalid language")
}

func TestListModels(t *testing.T) {
	out, err := execute(t, "list-models")
	require.NoError(t, err)
	assert.Contains(t, out, "haiku")
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "gpt-4o-mini")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "flarumbot dev\n", out)
}

func TestConflictingFlagsFailBeforeAnyCall(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	_, err := execute(t, "-d", "3", "-c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interact.ErrInvalidRequest))
}

func TestCreateChanceRangeReportedByConfig(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("tag_id: \"4\"\n"), 0o644))
	t.Setenv("FLARUM_API_KEY", "secret")
	t.Setenv("FLARUM_BASE_URL", "")
	t.Setenv("FLARUMBOT_CREATE_CHANCE", "")
	t.Setenv("FLARUMBOT_SECRET_PREFIX", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	_, err := execute(t, "--config", cfgPath, "--create-chance", "150")
	var se *pipeline.SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "config", se.Stage)
	assert.ErrorContains(t, err, "create chance must be between 0 and 100 (got 150)")
}

func TestRenderPostKeepsText(t *testing.T) {
	out := renderPost("Hello **forum**")
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "forum")
}

func TestWizardDefaultsRunAuto(t *testing.T) {
	resetFlags()
	m := initialTUIModel()
	assert.Equal(t, "en", m.items[idxLanguage].value)
	assert.Equal(t, modeAuto, m.items[idxMode].value)

	m = press(m, repeat(keyDown, idxRun)...)
	m = press(m, keyEnter)
	require.NoError(t, m.err)
	assert.True(t, m.confirmed)

	applySelections(m)
	assert.Equal(t, 0, flagUserID)
	assert.False(t, flagCreateNew)
	assert.Equal(t, 0, flagDiscussionID)
}

func TestWizardReplyNeedsDiscussion(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	m := initialTUIModel()

	// Mode: pick "reply" (third option).
	m = press(m, keyDown, keyDown, keyEnter, keyDown, keyDown, keyEnter)
	assert.Equal(t, modeReply, m.items[idxMode].value)
	assert.Equal(t, idxDiscussion, m.cursor)

	m = press(m, repeat(keyDown, idxRun-idxDiscussion)...)
	m = press(m, keyEnter)
	require.Error(t, m.err)
	assert.False(t, m.confirmed)

	m = press(m, repeat(keyUp, idxRun-idxDiscussion)...)
	m = press(m, keyEnter, typed("42"), keyEnter)
	assert.Equal(t, "42", m.items[idxDiscussion].value)

	m = press(m, repeat(keyDown, idxRun-m.cursor)...)
	m = press(m, keyEnter)
	require.NoError(t, m.err)
	require.True(t, m.confirmed)

	applySelections(m)
	assert.Equal(t, 42, flagDiscussionID)
	assert.False(t, flagCreateNew)
}

func TestWizardLanguageRefreshesPersonas(t *testing.T) {
	resetFlags()
	m := initialTUIModel()

	m = press(m, keyEnter, keyDown, keyEnter)
	assert.Equal(t, "pt", m.items[idxLanguage].value)
	assert.Equal(t, personaOptions("pt"), m.items[idxPersona].options)
	assert.Equal(t, "0", m.items[idxPersona].value)
}

func TestWizardStartsFromFlags(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	flagCreateNew = true
	flagUserID = 7
	flagInspire = "https://example.com/post"

	m := initialTUIModel()
	assert.Equal(t, modeCreate, m.items[idxMode].value)
	assert.Equal(t, "7", m.items[idxPersona].value)
	assert.Equal(t, optionIndex(m.items[idxPersona].options, "7"), m.items[idxPersona].cursor)
	assert.Contains(t, m.View(), "Flarumbot")

	applySelections(m)
	assert.True(t, flagCreateNew)
	assert.Equal(t, "https://example.com/post", flagInspire)
}

func TestWizardQuit(t *testing.T) {
	resetFlags()
	m := press(initialTUIModel(), typed("q"))
	assert.True(t, m.cancelled)
}
