package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink receives finished analysis results. It returns a reference the
// caller can hand back to the user, such as a file path or record id.
type Sink interface {
	Save(ctx context.Context, v any) (string, error)
}

// FileSink writes each result as result.json in its own session directory.
type FileSink struct {
	logger zerolog.Logger
	root   string
	now    func() time.Time
}

// NewFileSink creates a sink rooted at root.
func NewFileSink(logger zerolog.Logger, root string) *FileSink {
	return &FileSink{
		logger: logger.With().Str("component", "report").Logger(),
		root:   root,
		now:    time.Now,
	}
}

// Save writes v as indented JSON and returns the file path.
func (s *FileSink) Save(ctx context.Context, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sid, dir, err := s.mkSessionDir()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "result.json")
	if err := writeJSON(path, v); err != nil {
		return "", err
	}

	s.logger.Info().Str("session", sid).Str("path", path).Msg("result saved")
	return path, nil
}

func (s *FileSink) mkSessionDir() (string, string, error) {
	ts := s.now().Format("20060102-150405")
	sid := "session_" + ts + "_" + uuid.NewString()[:8]
	dir := filepath.Join(s.root, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
