package speech

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/keagan/interviewlens/internal/audio"
	"github.com/keagan/interviewlens/internal/prosody"
	"github.com/keagan/interviewlens/pkg/util"
	"github.com/rs/zerolog"
)

// SampleRate is the rate the demuxer produces and the analyzer expects.
const SampleRate = 16000

// Analysis is the raw speech signal of one recording, before scoring.
type Analysis struct {
	Text       string
	Duration   float64
	SpeechTime float64
	Syllables  int
	WPM        float64
	F0Mean     float64
	F0Std      float64
	Segments   []Segment

	// PitchDegraded is set when pitch tracking failed and the F0 fields
	// were zeroed.
	PitchDegraded bool
}

// Analyzer measures speaking rate and pitch of an audio track.
type Analyzer struct {
	logger  zerolog.Logger
	tempDir string
	timeout time.Duration
	yin     prosody.YIN
	leveler audio.Leveler
}

// NewAnalyzer creates an analyzer. Normalized audio is written to tempDir and
// each transcription is bounded by timeout.
func NewAnalyzer(logger zerolog.Logger, tempDir string, timeout time.Duration) *Analyzer {
	return &Analyzer{
		logger:  logger.With().Str("component", "speech").Logger(),
		tempDir: tempDir,
		timeout: timeout,
		yin:     prosody.DefaultYIN(),
		leveler: audio.DefaultLeveler(),
	}
}

// Analyze loads audioPath, transcribes it with tr and measures rate and
// pitch. Loading and transcription failures are returned; pitch failures
// only set PitchDegraded.
func (a *Analyzer) Analyze(ctx context.Context, audioPath string, tr Transcriber) (*Analysis, error) {
	clip, err := audio.Load(audioPath, SampleRate)
	if err != nil {
		return nil, fmt.Errorf("load audio: %w", err)
	}
	duration := clip.Duration()

	rms, gain := a.leveler.Apply(clip)
	if gain != 1 {
		a.logger.Info().
			Float64("rms", rms).
			Float64("gain", gain).
			Msg("quiet recording, boosted before transcription")
	}

	normalized, err := a.writeTemp(clip)
	if err != nil {
		return nil, fmt.Errorf("write normalized audio: %w", err)
	}
	defer os.Remove(normalized)

	tctx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	transcript, err := tr.Transcribe(tctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	res := &Analysis{
		Text:     transcript.Text,
		Duration: duration,
		Segments: transcript.Segments,
	}
	if res.Segments == nil {
		res.Segments = []Segment{}
	}
	res.SpeechTime = SpeechTime(res.Segments, duration)
	res.Syllables = CountSyllables(res.Text)
	res.WPM = WPM(res.Syllables, res.SpeechTime)

	summary, err := prosody.Extract(a.yin, clip.Samples, clip.SampleRate)
	if err != nil {
		a.logger.Warn().Err(err).Msg("pitch extraction failed")
		res.PitchDegraded = true
	} else {
		res.F0Mean = summary.Mean
		res.F0Std = summary.Std
	}

	annotateSegments(res.Segments, summary.Contour, !res.PitchDegraded)

	a.logger.Info().
		Float64("duration", res.Duration).
		Float64("speech_time", res.SpeechTime).
		Int("syllables", res.Syllables).
		Float64("wpm", res.WPM).
		Float64("f0_std", res.F0Std).
		Msg("speech analyzed")

	return res, nil
}

func (a *Analyzer) writeTemp(clip *audio.Clip) (string, error) {
	f, err := util.TempFile(a.tempDir, "normalized-", ".wav")
	if err != nil {
		return "", err
	}
	path := f.Name()
	f.Close()

	if err := audio.Save(path, clip); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// annotateSegments fills per-segment speaking rate and, when pitch is
// available, the F0 spread of voiced frames inside each segment.
func annotateSegments(segments []Segment, contour prosody.Contour, withPitch bool) {
	for i := range segments {
		s := &segments[i]
		if d := s.Duration(); d > 0 {
			wpm := WPM(CountSyllables(s.Text), d)
			s.WPM = &wpm
		}
		if !withPitch {
			continue
		}
		if voiced := contour.Between(s.Start, s.End); len(voiced) > 0 {
			_, std := prosody.Stats(voiced)
			s.F0Std = &std
		}
	}
}
