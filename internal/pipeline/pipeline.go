package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/keagan/interviewlens/internal/clients"
	"github.com/keagan/interviewlens/internal/config"
	"github.com/keagan/interviewlens/internal/feedback"
	"github.com/keagan/interviewlens/internal/ffmpeg"
	"github.com/keagan/interviewlens/internal/logging"
	"github.com/keagan/interviewlens/internal/media"
	"github.com/keagan/interviewlens/internal/scoring"
	"github.com/keagan/interviewlens/internal/speech"
	"github.com/keagan/interviewlens/internal/vision"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Demuxer splits the audio track out of a video.
type Demuxer interface {
	Demux(ctx context.Context, video, audioPath string) (*media.Asset, error)
}

// VisualExtractor measures face geometry over sampled frames.
type VisualExtractor interface {
	Extract(ctx context.Context, video string, det vision.Detector) (vision.Signals, error)
}

// SpeechAnalyzer measures speaking rate and pitch of an audio track.
type SpeechAnalyzer interface {
	Analyze(ctx context.Context, audioPath string, tr speech.Transcriber) (*speech.Analysis, error)
}

// ModelProvider hands out the shared, lazily loaded models.
type ModelProvider interface {
	FaceMesh() (vision.Detector, error)
	Transcriber() (speech.Transcriber, error)
}

// EmotionDetector labels the dominant emotion of a transcript.
type EmotionDetector interface {
	DetectEmotion(ctx context.Context, text string) (string, error)
}

// Stages are the pluggable steps of a pipeline. Emotion may be nil.
type Stages struct {
	Demuxer Demuxer
	Visual  VisualExtractor
	Speech  SpeechAnalyzer
	Models  ModelProvider
	Emotion EmotionDetector
}

// Pipeline orchestrates one interview analysis from video to Result.
type Pipeline struct {
	logger   zerolog.Logger
	config   *config.Config
	stages   Stages
	strategy scoring.Strategy
	now      func() time.Time
}

// New creates a pipeline backed by ffmpeg, the configured models and, when
// services.emotion.url is set, the emotion service.
func New(logger zerolog.Logger, cfg *config.Config, exec *ffmpeg.Executor, models ModelProvider) (*Pipeline, error) {
	format := ffmpeg.DefaultInterviewFormat()
	format.GainDB = cfg.FFmpeg.GainDB

	stages := Stages{
		Demuxer: media.NewDemuxer(logger, exec, format, cfg.Timeouts.Demux),
		Visual: vision.NewExtractor(logger, exec, vision.Options{
			MaxFrames:     cfg.Vision.MaxFrames,
			FrameInterval: cfg.Vision.FrameInterval,
			Timeout:       cfg.Timeouts.Frames,
			TempDir:       cfg.TempDir,
		}),
		Speech: speech.NewAnalyzer(logger, cfg.TempDir, cfg.Timeouts.Transcribe),
		Models: models,
	}
	if cfg.Services.Emotion.URL != "" {
		stages.Emotion = &emotionService{
			http: clients.NewHTTP(cfg.Timeouts.Emotion),
			url:  cfg.Services.Emotion.URL,
		}
	}

	return NewWithStages(logger, cfg, stages)
}

// NewWithStages creates a pipeline from explicit stages.
func NewWithStages(logger zerolog.Logger, cfg *config.Config, stages Stages) (*Pipeline, error) {
	if stages.Demuxer == nil || stages.Visual == nil || stages.Speech == nil || stages.Models == nil {
		return nil, errors.New("pipeline: demuxer, visual, speech and models stages are required")
	}

	strategy, err := scoring.Lookup(cfg.Scoring.Strategy)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		config:   cfg,
		stages:   stages,
		strategy: strategy,
		now:      time.Now,
	}, nil
}

// Strategy returns the name of the scoring strategy in use.
func (p *Pipeline) Strategy() string {
	return p.strategy.Name()
}

// Run analyzes videoPath. Only a demux failure or a cancelled ctx is returned
// as an error; every other stage failure degrades its part of the result.
// The demuxed audio is removed on return unless pipeline.keep_audio is set.
func (p *Pipeline) Run(ctx context.Context, videoPath, userID string) (*Result, error) {
	if videoPath == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}

	log := logging.WithRequest(p.logger, videoPath, userID)
	start := time.Now()
	log.Info().Str("strategy", p.strategy.Name()).Msg("starting analysis")

	// Stage 1: Demux audio
	asset, err := p.stages.Demuxer.Demux(ctx, videoPath, media.AudioPathFor(p.config.WorkDir, videoPath))
	if err != nil {
		log.Error().Err(err).Msg("demux failed")
		return nil, err
	}
	if !p.config.Pipeline.KeepAudio {
		defer p.removeAudio(log, asset.AudioPath)
	}

	// Stage 2: Visual and speech signals
	var (
		signals   vision.Signals
		visualErr error
		analysis  *speech.Analysis
		speechErr error
	)
	if p.config.Pipeline.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			signals, visualErr = p.visual(gctx, asset.VideoPath)
			return ctx.Err()
		})
		g.Go(func() error {
			analysis, speechErr = p.speech(gctx, asset.AudioPath)
			return ctx.Err()
		})
		err = g.Wait()
	} else {
		signals, visualErr = p.visual(ctx, asset.VideoPath)
		if err = ctx.Err(); err == nil {
			analysis, speechErr = p.speech(ctx, asset.AudioPath)
			err = ctx.Err()
		}
	}
	if err != nil {
		log.Warn().Err(err).Msg("analysis cancelled")
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	if visualErr != nil {
		log.Warn().Err(visualErr).Msg("visual analysis degraded")
	}
	if speechErr != nil {
		log.Warn().Err(speechErr).Msg("speech analysis degraded")
	} else if analysis.PitchDegraded {
		log.Warn().Msg("pitch extraction degraded")
	}

	// Stage 3: Emotion
	emotion := scoring.DefaultEmotion
	if speechErr == nil {
		emotion = p.emotion(ctx, log, analysis.Text)
	}

	// Stage 4: Score and assemble
	result := &Result{
		VideoFile:   asset.VideoPath,
		AudioFile:   asset.AudioPath,
		Report:      p.visualReport(signals, visualErr),
		Whisper:     p.speechReport(analysis, speechErr),
		Behavior:    p.behavior(signals, visualErr, emotion),
		GeneratedAt: p.now().UTC(),
	}
	if userID != "" {
		result.UserID = &userID
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Float64("gaze_score", result.Report.GazeScoreValue).
		Float64("speech_score", result.Whisper.SpeechScoreValue).
		Float64("pitch_score", result.Whisper.PitchScoreValue).
		Msg("analysis complete")

	return result, nil
}

func (p *Pipeline) removeAudio(log zerolog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("could not remove demuxed audio")
	}
}

func (p *Pipeline) visual(ctx context.Context, video string) (vision.Signals, error) {
	det, err := p.stages.Models.FaceMesh()
	if err != nil {
		return vision.Signals{GazeX: 0.5}, fmt.Errorf("load face mesh: %w", err)
	}
	return p.stages.Visual.Extract(ctx, video, det)
}

func (p *Pipeline) speech(ctx context.Context, audioPath string) (*speech.Analysis, error) {
	tr, err := p.stages.Models.Transcriber()
	if err != nil {
		return nil, fmt.Errorf("load transcriber: %w", err)
	}
	return p.stages.Speech.Analyze(ctx, audioPath, tr)
}

func (p *Pipeline) emotion(ctx context.Context, log zerolog.Logger, text string) string {
	if p.stages.Emotion == nil || text == "" {
		return scoring.DefaultEmotion
	}

	ectx := ctx
	if t := p.config.Timeouts.Emotion; t > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	label, err := p.stages.Emotion.DetectEmotion(ectx, text)
	if err != nil || label == "" {
		log.Warn().Err(err).Msg("emotion detection unavailable, assuming neutral")
		return scoring.DefaultEmotion
	}
	return label
}

func (p *Pipeline) visualReport(s vision.Signals, err error) VisualReport {
	r := VisualReport{
		GazeX:          round2(s.GazeX),
		MouthMean:      s.MouthMean,
		FramesSampled:  s.FramesSampled,
		FramesDetected: s.FramesDetected,
	}

	var fb feedback.Visual
	if err != nil {
		fb = feedback.VisualFailed()
		r.Degraded = true
		if s.FramesDetected == 0 {
			r.GazeX = 0.5
		}
	} else {
		fb = feedback.ForVisual(s.GazeX, s.MouthMean)
		r.GazeScoreValue = scoring.Gaze(s.GazeX)
		r.ExpressionScoreValue = scoring.Expression(s.MouthMean)
	}

	r.GazeFeedback = fb.GazeFeedback
	r.GazeCause = fb.GazeCause
	r.GazeCorrection = fb.GazeCorrection
	r.ExpressionFeedback = fb.ExpressionFeedback
	r.ExpressionCause = fb.ExpressionCause
	r.ExpressionCorrection = fb.ExpressionCorrection
	return r
}

func (p *Pipeline) speechReport(a *speech.Analysis, err error) SpeechReport {
	r := SpeechReport{
		Scoring:  p.strategy.Name(),
		Segments: []speech.Segment{},
	}
	if err != nil {
		r.Feedback = feedback.Failed()
		r.Degraded = true
		return r
	}

	r.Text = a.Text
	r.Duration = round2(a.Duration)
	r.SpeechTime = round2(a.SpeechTime)
	r.SyllablesTotal = a.Syllables
	r.WPMTotal = round2(a.WPM)
	r.F0MeanTotal = round2(a.F0Mean)
	r.F0StdTotal = round2(a.F0Std)
	r.SpeechScoreValue = p.strategy.Speech(a.WPM, a.Syllables)
	r.PitchScoreValue = p.strategy.Pitch(a.F0Std)
	r.Feedback = feedback.ForSpeech(a, feedback.DefaultThresholds())
	r.PitchDegraded = a.PitchDegraded
	if a.Segments != nil {
		r.Segments = a.Segments
	}
	return r
}

func (p *Pipeline) behavior(s vision.Signals, visualErr error, emotion string) feedback.Behavior {
	in := feedback.BehaviorSignals{DominantEmotion: emotion}
	if visualErr == nil {
		in.GazeCenterRatio = s.GazeCenterRatio
		in.BlinkRate = s.BlinkRate
	}
	return feedback.ForBehavior(in)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// emotionService adapts the emotion HTTP client to EmotionDetector.
type emotionService struct {
	http *clients.HTTP
	url  string
}

func (e *emotionService) DetectEmotion(ctx context.Context, text string) (string, error) {
	resp, err := e.http.Emotion(ctx, e.url, text)
	if err != nil {
		return "", err
	}
	return resp.DominantEmotion, nil
}
