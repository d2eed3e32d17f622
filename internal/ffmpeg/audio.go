package ffmpeg

import (
	"context"
	"fmt"
)

// AudioFormat defines audio extraction format options
type AudioFormat struct {
	Codec      string
	SampleRate int
	Channels   int
	GainDB     float64
}

// DefaultInterviewFormat returns the Whisper-friendly track used for interview
// recordings: mono 16 kHz 16-bit PCM with a +10 dB boost, since webcam
// microphones tend to record quietly.
func DefaultInterviewFormat() AudioFormat {
	return AudioFormat{
		Codec:      "pcm_s16le",
		SampleRate: 16000,
		Channels:   1, // mono
		GainDB:     10,
	}
}

// ExtractAudio extracts audio stream to a separate file
func (e *Executor) ExtractAudio(ctx context.Context, input, output string, format AudioFormat, progressFunc ProgressFunc) error {
	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Str("codec", format.Codec).
		Int("sample_rate", format.SampleRate).
		Float64("gain_db", format.GainDB).
		Msg("extracting audio")

	return e.Run(ctx, RunOptions{
		Args:            extractAudioArgs(input, output, format),
		ProgressHandler: progressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("audio extraction")
		},
	})
}

func extractAudioArgs(input, output string, format AudioFormat) []string {
	args := []string{
		"-i", input,
		"-vn", // no video
		"-ac", fmt.Sprintf("%d", format.Channels),
		"-ar", fmt.Sprintf("%d", format.SampleRate),
	}

	if filter := NewFilterBuilder().AudioVolume(format.GainDB).Build(); filter != "" {
		args = append(args, "-af", filter)
	}

	return append(args, "-acodec", format.Codec, output)
}
