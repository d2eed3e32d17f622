package models

import (
	"errors"
	"sync"

	"github.com/keagan/interviewlens/internal/config"
	"github.com/keagan/interviewlens/internal/speech"
	"github.com/keagan/interviewlens/internal/vision"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by a Registry after Close.
var ErrClosed = errors.New("model registry closed")

// Registry owns the expensive model handles of the process. Each handle is
// created on first use and shared read-only by every pipeline run.
type Registry struct {
	logger zerolog.Logger

	newDetector    func() (vision.Detector, error)
	newTranscriber func() (speech.Transcriber, error)

	mu     sync.Mutex
	closed bool

	detOnce sync.Once
	det     vision.Detector
	detErr  error

	trOnce sync.Once
	tr     speech.Transcriber
	trErr  error
}

// Option customizes a Registry.
type Option func(*Registry)

// WithDetectorFactory replaces the face-landmark model constructor.
func WithDetectorFactory(fn func() (vision.Detector, error)) Option {
	return func(r *Registry) { r.newDetector = fn }
}

// WithTranscriberFactory replaces the transcription client constructor.
func WithTranscriberFactory(fn func() (speech.Transcriber, error)) Option {
	return func(r *Registry) { r.newTranscriber = fn }
}

// NewRegistry creates a registry backed by the configured ONNX face mesh and
// Whisper server. Nothing is loaded until first use.
func NewRegistry(logger zerolog.Logger, cfg *config.Config, opts ...Option) *Registry {
	r := &Registry{
		logger: logger.With().Str("component", "models").Logger(),
		newDetector: func() (vision.Detector, error) {
			return vision.NewFaceMesh(logger, cfg.Vision)
		},
		newTranscriber: func() (speech.Transcriber, error) {
			return speech.NewWhisper(logger, cfg.Whisper, cfg.Timeouts.Transcribe), nil
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FaceMesh returns the shared landmark detector, loading it on first call.
// A failed load is remembered and returned to every later caller.
func (r *Registry) FaceMesh() (vision.Detector, error) {
	if r.isClosed() {
		return nil, ErrClosed
	}
	r.detOnce.Do(func() {
		r.logger.Info().Msg("loading face landmark model")
		r.det, r.detErr = r.newDetector()
		if r.detErr != nil {
			r.logger.Error().Err(r.detErr).Msg("face landmark model unavailable")
		}
	})
	return r.det, r.detErr
}

// Transcriber returns the shared transcription client.
func (r *Registry) Transcriber() (speech.Transcriber, error) {
	if r.isClosed() {
		return nil, ErrClosed
	}
	r.trOnce.Do(func() {
		r.tr, r.trErr = r.newTranscriber()
		if r.trErr != nil {
			r.logger.Error().Err(r.trErr).Msg("transcriber unavailable")
		}
	})
	return r.tr, r.trErr
}

func (r *Registry) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close releases loaded models and the ONNX runtime. It is safe to call more
// than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	// Block until any in-flight load finishes so its handle is released.
	r.detOnce.Do(func() {})
	r.trOnce.Do(func() {})

	var errs []error
	if r.det != nil {
		errs = append(errs, r.det.Close())
	}
	errs = append(errs, vision.ShutdownRuntime())
	return errors.Join(errs...)
}
