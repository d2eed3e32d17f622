package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keagan/interviewlens/internal/ffmpeg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	write []byte
	err   error
	got   ffmpeg.AudioFormat
	wait  bool
}

func (f *fakeExtractor) ExtractAudio(ctx context.Context, input, output string, format ffmpeg.AudioFormat, _ ffmpeg.ProgressFunc) error {
	f.got = format
	if f.write != nil {
		if err := os.WriteFile(output, f.write, 0644); err != nil {
			return err
		}
	}
	if f.wait {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answer.webm")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))
	return path
}

func TestDemuxSuccess(t *testing.T) {
	video := writeVideo(t)
	out := filepath.Join(t.TempDir(), "work", "answer_audio.wav")
	fx := &fakeExtractor{write: []byte("RIFF....WAVE")}

	d := NewDemuxer(zerolog.Nop(), fx, ffmpeg.DefaultInterviewFormat(), time.Second)
	asset, err := d.Demux(context.Background(), video, out)
	require.NoError(t, err)

	assert.Equal(t, video, asset.VideoPath)
	assert.Equal(t, out, asset.AudioPath)
	assert.Equal(t, 16000, fx.got.SampleRate)
	assert.Equal(t, 1, fx.got.Channels)
	assert.Equal(t, 10.0, fx.got.GainDB)
}

func TestDemuxFailureRemovesPartialFile(t *testing.T) {
	video := writeVideo(t)
	out := filepath.Join(t.TempDir(), "answer_audio.wav")
	fx := &fakeExtractor{
		write: []byte("partial"),
		err:   &ffmpeg.ExecError{Stderr: "Stream mapping:\nanswer.webm: Invalid data found", Err: errors.New("exit status 1")},
	}

	d := NewDemuxer(zerolog.Nop(), fx, ffmpeg.DefaultInterviewFormat(), 0)
	_, err := d.Demux(context.Background(), video, out)

	var derr *DemuxError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, video, derr.Video)
	assert.Contains(t, derr.Output, "Invalid data found")
	assert.NoFileExists(t, out)
}

func TestDemuxMissingVideo(t *testing.T) {
	d := NewDemuxer(zerolog.Nop(), &fakeExtractor{}, ffmpeg.DefaultInterviewFormat(), 0)
	_, err := d.Demux(context.Background(), "/nonexistent/video.mp4", filepath.Join(t.TempDir(), "a.wav"))

	var derr *DemuxError
	require.ErrorAs(t, err, &derr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDemuxEmptyOutputIsError(t *testing.T) {
	video := writeVideo(t)
	out := filepath.Join(t.TempDir(), "a.wav")

	d := NewDemuxer(zerolog.Nop(), &fakeExtractor{write: []byte{}}, ffmpeg.DefaultInterviewFormat(), 0)
	_, err := d.Demux(context.Background(), video, out)

	var derr *DemuxError
	require.ErrorAs(t, err, &derr)
	assert.NoFileExists(t, out)
}

func TestDemuxTimeout(t *testing.T) {
	video := writeVideo(t)
	out := filepath.Join(t.TempDir(), "a.wav")

	d := NewDemuxer(zerolog.Nop(), &fakeExtractor{write: []byte("x"), wait: true}, ffmpeg.DefaultInterviewFormat(), 20*time.Millisecond)
	_, err := d.Demux(context.Background(), video, out)

	var derr *DemuxError
	require.ErrorAs(t, err, &derr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoFileExists(t, out)
}

func TestAudioPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("work", "abc_answer_audio.wav"), AudioPathFor("work", "/uploads/abc_answer.webm"))
}
