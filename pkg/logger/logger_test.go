package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestContextFieldsFlowIntoEntries(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: zerolog.DebugLevel, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithFields(ctx, map[string]any{"store_id": "s-1", "items": 3})
	log.Error(log.WithRole(ctx, "vendor"), "checkout.failed", errors.New("boom"))
	log.Info(ctx, "checkout.retry")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "api", first["service"])
	assert.Equal(t, "req-123", first["request_id"])
	assert.Equal(t, "vendor", first["role"])
	assert.Equal(t, "s-1", first["store_id"])
	assert.Equal(t, "boom", first["error"])
	assert.Contains(t, first, "stack")

	// the role was added to a derived context only
	assert.NotContains(t, entries[1], "role")
	assert.Equal(t, "req-123", entries[1]["request_id"])
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{Output: buf, WarnStack: true}).Warn(context.Background(), "slow")
	assert.Contains(t, buf.String(), `"stack"`)

	buf.Reset()
	New(Options{Output: buf}).Warn(context.Background(), "slow")
	assert.NotContains(t, buf.String(), `"stack"`)
}

func TestDefaultLevelDropsDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{Output: buf}).Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{Output: buf, Format: "CONSOLE"}).Info(context.Background(), "hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
}
