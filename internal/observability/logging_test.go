package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	runID := NewRunID()
	ctx := WithRunID(context.Background(), runID)
	logger.InfoContext(ctx, "posted", "discussion_id", 42)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "posted", line["msg"])
	assert.Equal(t, runID, line["run_id"])
	assert.EqualValues(t, 42, line["discussion_id"])
	assert.NotContains(t, line, "trace_id")
}

func TestLoggerQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestRunIDFromEmptyContext(t *testing.T) {
	assert.Equal(t, "", RunIDFrom(context.Background()))
	assert.Len(t, NewRunID(), 26)
}
