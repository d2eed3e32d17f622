package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keagan/interviewlens/internal/ffmpeg"
	"github.com/keagan/interviewlens/pkg/util"
	"github.com/rs/zerolog"
)

// Asset ties an input video to the audio track derived from it.
type Asset struct {
	VideoPath string
	AudioPath string
}

// DemuxError reports that the audio track could not be extracted. Output
// carries the tail of the tool's diagnostic output.
type DemuxError struct {
	Video  string
	Output string
	Err    error
}

func (e *DemuxError) Error() string {
	return fmt.Sprintf("demux %s: %v", filepath.Base(e.Video), e.Err)
}

func (e *DemuxError) Unwrap() error {
	return e.Err
}

// AudioExtractor is the subset of the ffmpeg executor the demuxer needs.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, input, output string, format ffmpeg.AudioFormat, progressFunc ffmpeg.ProgressFunc) error
}

// Demuxer pulls a normalized mono PCM track out of a video container.
type Demuxer struct {
	logger    zerolog.Logger
	extractor AudioExtractor
	format    ffmpeg.AudioFormat
	timeout   time.Duration
}

// NewDemuxer creates a demuxer. A zero timeout leaves the call bounded only
// by ctx.
func NewDemuxer(logger zerolog.Logger, extractor AudioExtractor, format ffmpeg.AudioFormat, timeout time.Duration) *Demuxer {
	return &Demuxer{
		logger:    logger.With().Str("component", "demux").Logger(),
		extractor: extractor,
		format:    format,
		timeout:   timeout,
	}
}

// AudioPathFor returns where the audio track of video is written inside dir.
func AudioPathFor(dir, video string) string {
	base := strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))
	return filepath.Join(dir, base+"_audio.wav")
}

// Demux extracts the audio track of video into audioPath. Any failure is a
// *DemuxError and leaves no file at audioPath.
func (d *Demuxer) Demux(ctx context.Context, video, audioPath string) (*Asset, error) {
	if _, err := os.Stat(video); err != nil {
		return nil, &DemuxError{Video: video, Err: err}
	}

	if err := util.EnsureDir(filepath.Dir(audioPath)); err != nil {
		return nil, &DemuxError{Video: video, Err: err}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := d.extractor.ExtractAudio(ctx, video, audioPath, d.format, nil)
	if err != nil {
		_ = os.Remove(audioPath)

		derr := &DemuxError{Video: video, Err: err}
		var execErr *ffmpeg.ExecError
		if errors.As(err, &execErr) {
			derr.Output = execErr.Stderr
		}

		d.logger.Error().
			Err(err).
			Str("video", video).
			Str("output", lastLine(derr.Output)).
			Msg("audio extraction failed")
		return nil, derr
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, &DemuxError{Video: video, Err: fmt.Errorf("audio output missing: %w", err)}
	}
	if info.Size() == 0 {
		_ = os.Remove(audioPath)
		return nil, &DemuxError{Video: video, Err: errors.New("audio output is empty")}
	}

	d.logger.Info().
		Str("video", video).
		Str("audio", audioPath).
		Int64("bytes", info.Size()).
		Dur("took", time.Since(start)).
		Msg("audio extracted")

	return &Asset{VideoPath: video, AudioPath: audioPath}, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
