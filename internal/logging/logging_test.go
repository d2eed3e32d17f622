package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRequest(NewLogger(&buf), "/tmp/a.mp4", "alice")
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/tmp/a.mp4", entry["video"])
	assert.Equal(t, "alice", entry["user_id"])
}

func TestWithRequestOmitsEmptyUser(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRequest(NewLogger(&buf), "/tmp/b.mp4", "")
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry["user_id"]
	assert.False(t, ok)
}

func TestWithComponentTagsGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = NewLogger(&buf)
	defer func() { log.Logger = prev }()

	logger := WithComponent("cli")
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cli", entry["component"])
}
