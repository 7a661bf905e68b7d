package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJSONRedacts(t *testing.T) {
	var buf bytes.Buffer
	logger := Build(&buf, "debug", "json").With("component", "test")
	logger.Debug(context.Background(), "signup", Redacted("signup_token"), "homeserver", "hs")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "signup", rec["msg"])
	assert.Equal(t, Placeholder(), rec["signup_token"])
	assert.Equal(t, "test", rec["component"])
}

func TestBuildLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := Build(&buf, "", "text")
	logger.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
	logger.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(" info "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("verbose"))
}
