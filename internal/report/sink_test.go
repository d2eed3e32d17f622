package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWritesSessionDir(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(zerolog.Nop(), root)
	sink.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

	path, err := sink.Save(context.Background(), map[string]any{"video_file": "a.mp4", "score": 91.5})
	require.NoError(t, err)

	rel, err := filepath.Rel(root, path)
	require.NoError(t, err)
	parts := strings.Split(rel, string(filepath.Separator))
	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[0], "session_20250301-093000_"))
	assert.Equal(t, "result.json", parts[1])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"score\": 91.5")

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "a.mp4", got["video_file"])
}

func TestFileSinkUniqueSessions(t *testing.T) {
	sink := NewFileSink(zerolog.Nop(), t.TempDir())

	a, err := sink.Save(context.Background(), 1)
	require.NoError(t, err)
	b, err := sink.Save(context.Background(), 2)
	require.NoError(t, err)
	assert.NotEqual(t, filepath.Dir(a), filepath.Dir(b))
}

func TestFileSinkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSink(zerolog.Nop(), t.TempDir()).Save(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
