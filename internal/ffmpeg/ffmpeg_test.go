package ffmpeg

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// generateTestVideo renders a short lavfi clip with a sine tone.
func generateTestVideo(t *testing.T, seconds int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_with_audio.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "sine=frequency=220:duration="+strconv.Itoa(seconds),
		"-f", "lavfi", "-i", "testsrc=duration="+strconv.Itoa(seconds)+":size=320x240:rate=30",
		"-pix_fmt", "yuv420p", "-shortest", "-y", path)
	if err := cmd.Run(); err != nil {
		t.Skipf("could not generate test video: %v", err)
	}
	return path
}

func TestFilterBuilderSampleEvery(t *testing.T) {
	filter := NewFilterBuilder().SampleEvery(5).Build()
	assert.Equal(t, `select='not(mod(n\,5))'`, filter)
}

func TestFilterBuilderSampleEveryOneIsNoop(t *testing.T) {
	assert.Equal(t, "", NewFilterBuilder().SampleEvery(1).Build())
}

func TestFilterBuilderAudioVolume(t *testing.T) {
	assert.Equal(t, "volume=+10dB", NewFilterBuilder().AudioVolume(10).Build())
	assert.Equal(t, "volume=-3.5dB", NewFilterBuilder().AudioVolume(-3.5).Build())
	assert.Equal(t, "", NewFilterBuilder().AudioVolume(0).Build())
}

func TestFilterBuilderChaining(t *testing.T) {
	filter := NewFilterBuilder().AudioVolume(10).Custom("aresample=16000").Build()
	assert.Equal(t, "volume=+10dB,aresample=16000", filter)
}

func TestExtractAudioArgs(t *testing.T) {
	args := extractAudioArgs("in.webm", "out.wav", DefaultInterviewFormat())
	assert.Equal(t, []string{
		"-i", "in.webm",
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-af", "volume=+10dB",
		"-acodec", "pcm_s16le",
		"out.wav",
	}, args)
}

func TestExtractFramesArgs(t *testing.T) {
	args := extractFramesArgs("in.mp4", "/tmp/frames", FrameSampling{Interval: 5, MaxFrames: 150})
	assert.Equal(t, []string{
		"-i", "in.mp4", "-an",
		"-vf", `select='not(mod(n\,5))'`, "-vsync", "vfr",
		"-frames:v", "150",
		filepath.Join("/tmp/frames", "frame_%05d.png"),
	}, args)
}

func TestBuildArgsPutsThreadsFirst(t *testing.T) {
	e := &Executor{threads: 2}
	args := e.buildArgs([]string{"-i", "x"})
	assert.Equal(t, []string{"-y", "-hide_banner", "-loglevel", "info", "-threads", "2", "-progress", "pipe:2", "-i", "x"}, args)
}

func TestStreamOutputParsesProgress(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}
	input := strings.Join([]string{
		"frame=42",
		"fps=29.97",
		"bitrate=256.0kbits/s",
		"out_time=00:00:01.400000",
		"speed=1.5x",
		"progress=continue",
		"progress=end",
	}, "\n")

	var got []Progress
	var logged int
	e.streamOutput(strings.NewReader(input), func(p *Progress) {
		got = append(got, *p)
	}, func(string) { logged++ })

	require.Len(t, got, 2)
	assert.Equal(t, 42, got[0].Frame)
	assert.InDelta(t, 29.97, got[0].FPS, 1e-9)
	assert.Equal(t, "256.0kbits/s", got[0].Bitrate)
	assert.Equal(t, "00:00:01.400000", got[0].Time)
	assert.Equal(t, "1.5x", got[0].Speed)
	assert.Equal(t, 0, got[1].Frame)
	assert.Equal(t, 7, logged)
}

func TestTailKeepsLastDiagnosticLines(t *testing.T) {
	tl := newTail(2)
	tl.add("Input #0, mov")
	tl.add("frame=10")
	tl.add("Stream mapping:")
	tl.add("in.mp4: Invalid data found when processing input")

	assert.Equal(t, "Stream mapping:\nin.mp4: Invalid data found when processing input", tl.String())
}

func TestExecErrorMessageAndUnwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &ExecError{Stderr: "first\nin.mp4: No such file or directory", Err: inner}

	assert.Contains(t, err.Error(), "No such file or directory")
	assert.NotContains(t, err.Error(), "first")
	assert.ErrorIs(t, err, inner)
}

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
	  "format": {"duration": "12.500000", "bit_rate": "800000"},
	  "streams": [
	    {"codec_type": "video", "codec_name": "vp8", "width": 640, "height": 480,
	     "r_frame_rate": "1000/1", "avg_frame_rate": "30/1"},
	    {"codec_type": "audio", "codec_name": "opus"}
	  ]
	}`)

	info, err := parseProbeOutput("in.webm", raw)
	require.NoError(t, err)

	assert.Equal(t, 12500*time.Millisecond, info.Duration)
	assert.Equal(t, int64(800000), info.Bitrate)
	assert.True(t, info.HasVideo)
	assert.True(t, info.HasAudio)
	assert.Equal(t, 640, info.Width)
	assert.InDelta(t, 30.0, info.FPS, 1e-9)
	assert.Equal(t, "opus", info.AudioCodec)
}

func TestParseProbeOutputFallsBackToRFrameRate(t *testing.T) {
	raw := []byte(`{"format": {}, "streams": [{"codec_type": "video", "r_frame_rate": "25/1", "avg_frame_rate": "0/0"}]}`)

	info, err := parseProbeOutput("in.mp4", raw)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, info.FPS, 1e-9)
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	_, err := parseProbeOutput("x", []byte("not json"))
	assert.Error(t, err)
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec, err := New(zerolog.New(os.Stderr), "ffmpeg", 2)
	require.NoError(t, err)
	assert.NotEmpty(t, exec.ffmpegPath)
	assert.NotEmpty(t, exec.ffprobePath)
}

func TestExecutorCreationMissingBinary(t *testing.T) {
	_, err := New(zerolog.Nop(), "/nonexistent/ffmpeg-binary", 0)
	assert.Error(t, err)
}

func TestExtractAudioAndFrames(t *testing.T) {
	skipIfNoFFmpeg(t)

	video := generateTestVideo(t, 2)
	exec, err := New(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}), "ffmpeg", 2)
	require.NoError(t, err)

	ctx := context.Background()

	info, err := exec.ProbeVideo(ctx, video)
	require.NoError(t, err)
	assert.Equal(t, 320, info.Width)
	assert.InDelta(t, 30.0, info.FPS, 0.01)

	audio := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, exec.ExtractAudio(ctx, video, audio, DefaultInterviewFormat(), nil))
	stat, err := os.Stat(audio)
	require.NoError(t, err)
	assert.Greater(t, stat.Size(), int64(44))

	frameDir := t.TempDir()
	frames, err := exec.ExtractFrames(ctx, video, frameDir, FrameSampling{Interval: 5, MaxFrames: 4})
	require.NoError(t, err)
	assert.Len(t, frames, 4)
}

func TestExtractAudioInvalidInput(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec, err := New(zerolog.Nop(), "ffmpeg", 0)
	require.NoError(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.mp4")
	require.NoError(t, os.WriteFile(invalid, []byte("not a video"), 0644))

	err = exec.ExtractAudio(context.Background(), invalid, filepath.Join(t.TempDir(), "x.wav"), DefaultInterviewFormat(), nil)
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.NotEmpty(t, execErr.Stderr)
}

func TestProbeVideoInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec, err := New(zerolog.Nop(), "ffmpeg", 0)
	require.NoError(t, err)

	_, err = exec.ProbeVideo(context.Background(), "nonexistent.mp4")
	assert.Error(t, err)
}
