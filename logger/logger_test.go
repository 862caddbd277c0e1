package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithFields(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]interface{}{"generation_id": "abc"})
	ctx = ContextWithFields(ctx, map[string]interface{}{"stage": "invoke"})

	fields := FieldsFromContext(ctx)
	assert.Equal(t, "abc", fields["generation_id"])
	assert.Equal(t, "invoke", fields["stage"])
	assert.Nil(t, FieldsFromContext(context.Background()))
}

func TestTestLogger_MergesContextAndChildFields(t *testing.T) {
	log := NewTestLogger()
	child := log.WithField("component", "orchestrator")

	ctx := ContextWithFields(context.Background(), map[string]interface{}{"generation_id": "g1"})
	child.Warn(ctx, "artifact write failed", map[string]interface{}{"error": "disk full"})

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0].Level)
	assert.Equal(t, "artifact write failed", entries[0].Message)
	assert.Equal(t, "orchestrator", entries[0].Fields["component"])
	assert.Equal(t, "g1", entries[0].Fields["generation_id"])
	assert.Equal(t, "disk full", entries[0].Fields["error"])

	assert.Len(t, log.EntriesAt("warn"), 1)
	assert.Empty(t, log.EntriesAt("error"))

	log.Reset()
	assert.Empty(t, log.Entries())
}

func TestLogrusLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogrusLoggerWithOptions(Options{Level: "debug", Output: &buf})

	ctx := ContextWithFields(context.Background(), map[string]interface{}{"generation_id": "g2"})
	log.Info(ctx, "generation completed", map[string]interface{}{"files": 3})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "generation completed", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "g2", line["generation_id"])
	assert.Equal(t, float64(3), line["files"])
}

func TestLogrusLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogrusLoggerWithOptions(Options{Level: "chatty", Output: &buf, Format: "text"})

	log.Debug(context.Background(), "hidden", nil)
	assert.Empty(t, buf.String())

	log.Info(context.Background(), "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}
