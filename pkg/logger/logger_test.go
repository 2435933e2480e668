package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestBusinessErrorLogsAtWarnWithErr(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")

	log.BusinessError("rsvp.submit: invalid submission", errors.New("bad meal"), "party_id", "p1")

	record := decodeLine(t, &buf)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "bad meal", record["err"])
	assert.Equal(t, "p1", record["party_id"])
}

func TestCriticalLevelIsRenamed(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, "json").Critical("db: unreachable")

	assert.Equal(t, "CRITICAL", decodeLine(t, &buf)["level"])
}

func TestDebugIsFilteredBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, "text").Debug("noise")

	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("", "development"))
	assert.Equal(t, slog.LevelInfo, parseLevel("", "production"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARN ", "development"))
	assert.Equal(t, slog.LevelError, parseLevel("error", "production"))
}
