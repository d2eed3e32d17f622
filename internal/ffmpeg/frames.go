package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
)

// FrameSampling selects which frames ExtractFrames writes out.
type FrameSampling struct {
	Interval  int // keep 1 in Interval frames
	MaxFrames int // stop after this many sampled frames
}

const framePattern = "frame_%05d.png"

// ExtractFrames writes sampled frames of input as numbered PNGs into outDir
// and returns their paths in presentation order.
func (e *Executor) ExtractFrames(ctx context.Context, input, outDir string, sampling FrameSampling) ([]string, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if outDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	e.logger.Info().
		Str("input", input).
		Int("interval", sampling.Interval).
		Int("max_frames", sampling.MaxFrames).
		Msg("sampling frames")

	err := e.Run(ctx, RunOptions{
		Args: extractFramesArgs(input, outDir, sampling),
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame sampling")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("frame sampling failed: %w", err)
	}

	frames, err := filepath.Glob(filepath.Join(outDir, "frame_*.png"))
	if err != nil {
		return nil, err
	}
	sort.Strings(frames)

	e.logger.Debug().Int("frames", len(frames)).Msg("frame sampling complete")
	return frames, nil
}

func extractFramesArgs(input, outDir string, sampling FrameSampling) []string {
	args := []string{"-i", input, "-an"}

	if filter := NewFilterBuilder().SampleEvery(sampling.Interval).Build(); filter != "" {
		args = append(args, "-vf", filter, "-vsync", "vfr")
	}
	if sampling.MaxFrames > 0 {
		args = append(args, "-frames:v", fmt.Sprintf("%d", sampling.MaxFrames))
	}

	return append(args, filepath.Join(outDir, framePattern))
}
