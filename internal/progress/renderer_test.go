package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainRendererPrintsEachStage(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false, 80)

	r.Handle(NewEvent(StageDiscover, "Looking for a discussion", 0.1, time.Now()))
	r.Handle(NewEvent(StageGenerate, "Writing reply", 0.5, time.Now()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"[0:00] Looking for a discussion", "[0:00] Writing reply"}, lines)
}

func TestFinishSummary(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false, 80)

	r.Handle(Event{Stage: StageComplete, Message: "Replied", DiscussionID: 42, Title: "Cats"})
	buf.Reset()
	r.Finish()

	assert.Equal(t, "\n  Replied: #42 \"Cats\" (0:00)\n", buf.String())
}

func TestFinishError(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, true, 80)

	r.Handle(Event{Stage: StagePublish, Message: "Posting", Error: errors.New("forum down")})
	r.Finish()

	assert.Contains(t, buf.String(), "Error: forum down")
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "[##########..........]", renderBar(0.5, 20))
	assert.Equal(t, "[....................]", renderBar(-1, 20))
	assert.Equal(t, "[####################]", renderBar(2, 20))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:05", formatElapsed(5*time.Second))
	assert.Equal(t, "2:03", formatElapsed(123*time.Second))
}
