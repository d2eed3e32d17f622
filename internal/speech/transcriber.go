package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keagan/interviewlens/internal/clients"
	"github.com/keagan/interviewlens/internal/config"
	"github.com/rs/zerolog"
)

// Segment is a time-bounded span of transcribed speech. WPM and F0Std are
// filled in by the analyzer when they can be measured.
type Segment struct {
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Text  string   `json:"text"`
	WPM   *float64 `json:"wpm,omitempty"`
	F0Std *float64 `json:"f0_std,omitempty"`
}

// Duration returns End-Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Transcript is the text of a recording and its timed segments in ascending
// order.
type Transcript struct {
	Text     string
	Segments []Segment
}

// Transcriber turns a 16 kHz mono WAV file into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (*Transcript, error)
}

// Whisper transcribes through an OpenAI-compatible Whisper server. When the
// configured model fails it retries once with the fallback model.
type Whisper struct {
	logger zerolog.Logger
	http   *clients.HTTP
	cfg    config.WhisperConfig
}

// NewWhisper creates a Whisper transcriber with the given request timeout.
func NewWhisper(logger zerolog.Logger, cfg config.WhisperConfig, timeout time.Duration) *Whisper {
	return &Whisper{
		logger: logger.With().Str("component", "whisper").Logger(),
		http:   clients.NewHTTP(timeout),
		cfg:    cfg,
	}
}

// Model returns the primary model name.
func (w *Whisper) Model() string {
	return w.cfg.Model
}

func (w *Whisper) Transcribe(ctx context.Context, wavPath string) (*Transcript, error) {
	out, err := w.transcribe(ctx, w.cfg.Model, wavPath)
	if err == nil {
		return out, nil
	}

	fallback := w.cfg.FallbackModel
	if fallback == "" || fallback == w.cfg.Model || ctx.Err() != nil {
		return nil, err
	}

	w.logger.Warn().
		Err(err).
		Str("model", w.cfg.Model).
		Str("fallback", fallback).
		Msg("transcription failed, retrying with fallback model")

	out, ferr := w.transcribe(ctx, fallback, wavPath)
	if ferr != nil {
		return nil, fmt.Errorf("model %s: %v; fallback %s: %w", w.cfg.Model, err, fallback, ferr)
	}
	return out, nil
}

func (w *Whisper) transcribe(ctx context.Context, model, wavPath string) (*Transcript, error) {
	start := time.Now()
	resp, err := w.http.Transcribe(ctx, clients.TranscribeRequest{
		BaseURL:  w.cfg.URL,
		Endpoint: w.cfg.Endpoint,
		Model:    model,
		Language: w.cfg.Language,
		APIKey:   w.cfg.APIKey,
		WavPath:  wavPath,
	})
	if err != nil {
		return nil, err
	}

	t := &Transcript{
		Text:     strings.TrimSpace(resp.Text),
		Segments: make([]Segment, 0, len(resp.Segments)),
	}
	for _, s := range resp.Segments {
		t.Segments = append(t.Segments, Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	w.logger.Debug().
		Str("model", model).
		Int("segments", len(t.Segments)).
		Int("chars", len([]rune(t.Text))).
		Dur("took", time.Since(start)).
		Msg("transcription complete")

	return t, nil
}
