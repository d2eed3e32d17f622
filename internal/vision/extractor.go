package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/keagan/interviewlens/internal/ffmpeg"
	"github.com/rs/zerolog"
)

var (
	// ErrUnreadableVideo means the file has no decodable video stream.
	ErrUnreadableVideo = errors.New("video could not be opened")
	// ErrNoFace means no sampled frame contained a face.
	ErrNoFace = errors.New("no face detected")
)

// FrameSource is the subset of the ffmpeg executor the extractor needs.
type FrameSource interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	ExtractFrames(ctx context.Context, input, outDir string, sampling ffmpeg.FrameSampling) ([]string, error)
}

// Options control frame sampling.
type Options struct {
	MaxFrames     int
	FrameInterval int
	Timeout       time.Duration
	TempDir       string
}

// DefaultOptions samples one in five frames, up to 150.
func DefaultOptions() Options {
	return Options{MaxFrames: 150, FrameInterval: 5}
}

// Extractor samples frames from a video and measures face geometry.
type Extractor struct {
	logger zerolog.Logger
	frames FrameSource
	opts   Options
}

// NewExtractor creates an extractor. Zero-valued options fall back to
// DefaultOptions.
func NewExtractor(logger zerolog.Logger, frames FrameSource, opts Options) *Extractor {
	def := DefaultOptions()
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = def.MaxFrames
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = def.FrameInterval
	}
	return &Extractor{
		logger: logger.With().Str("component", "vision").Logger(),
		frames: frames,
		opts:   opts,
	}
}

// Extract samples video and runs det over every sampled frame. On ErrNoFace
// the returned signals still carry the frame counts.
func (e *Extractor) Extract(ctx context.Context, video string, det Detector) (Signals, error) {
	info, err := e.frames.ProbeVideo(ctx, video)
	if err != nil {
		return Signals{}, fmt.Errorf("%w: %v", ErrUnreadableVideo, err)
	}
	if !info.HasVideo {
		return Signals{}, fmt.Errorf("%w: no video stream", ErrUnreadableVideo)
	}

	dir, err := os.MkdirTemp(e.opts.TempDir, "frames-*")
	if err != nil {
		return Signals{}, fmt.Errorf("create frame dir: %w", err)
	}
	defer os.RemoveAll(dir)

	fctx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	paths, err := e.frames.ExtractFrames(fctx, video, dir, ffmpeg.FrameSampling{
		Interval:  e.opts.FrameInterval,
		MaxFrames: e.opts.MaxFrames,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Signals{}, ctx.Err()
		}
		return Signals{}, fmt.Errorf("%w: %v", ErrUnreadableVideo, err)
	}
	if len(paths) == 0 {
		return Signals{}, fmt.Errorf("%w: no frames decoded", ErrUnreadableVideo)
	}

	samples := make([]FrameSample, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return Signals{}, err
		}
		sample, err := e.measure(path, det)
		if err != nil {
			e.logger.Debug().Err(err).Str("frame", path).Msg("frame skipped")
		}
		sample.Index = i * e.opts.FrameInterval
		if info.FPS > 0 {
			sample.Time = float64(sample.Index) / info.FPS
		}
		samples = append(samples, sample)
	}

	sig := Aggregate(samples, info.FPS, e.opts.FrameInterval)

	e.logger.Info().
		Str("video", video).
		Int("frames_sampled", sig.FramesSampled).
		Int("frames_detected", sig.FramesDetected).
		Float64("gaze_x", sig.GazeX).
		Float64("mouth_mean", sig.MouthMean).
		Msg("visual features extracted")

	if sig.FramesDetected == 0 {
		return sig, ErrNoFace
	}
	return sig, nil
}

func (e *Extractor) measure(path string, det Detector) (FrameSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return FrameSample{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return FrameSample{}, err
	}

	lm, ok, err := det.Detect(img)
	if err != nil || !ok {
		return FrameSample{}, err
	}
	if err := lm.check(); err != nil {
		return FrameSample{}, err
	}

	return FrameSample{
		Detected: true,
		Gaze:     lm.GazeCenter(),
		Mouth:    lm.MouthAperture(),
		Openness: lm.EyeOpenness(),
	}, nil
}
