package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, amp float64, rate int, seconds float64) []float64 {
	n := int(float64(rate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := &Clip{Samples: sine(220, 0.5, 16000, 0.5), SampleRate: 16000}

	require.NoError(t, Save(path, in))

	out, err := Load(path, 16000)
	require.NoError(t, err)
	assert.Equal(t, 16000, out.SampleRate)
	require.Len(t, out.Samples, len(in.Samples))
	assert.InDelta(t, 0.5, out.Duration(), 1e-9)

	for i := 0; i < len(in.Samples); i += 997 {
		assert.InDelta(t, in.Samples[i], out.Samples[i], 1e-3)
	}
}

func TestLoadRejectsWrongRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, Save(path, &Clip{Samples: sine(220, 0.5, 8000, 0.1), SampleRate: 8000}))

	_, err := Load(path, 16000)
	assert.ErrorIs(t, err, ErrUnsupportedSampleRate)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff"), 0644))

	_, err := Load(path, 0)
	assert.Error(t, err)
}

func TestSaveClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loud.wav")
	require.NoError(t, Save(path, &Clip{Samples: []float64{2, -2, 0}, SampleRate: 16000}))

	out, err := Load(path, 16000)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Samples[0], 1e-3)
	assert.InDelta(t, -1.0, out.Samples[1], 1e-3)
}

func TestMeanRMSOfSine(t *testing.T) {
	// RMS of a sine is amp/sqrt(2); edge frames are half padded.
	rms := MeanRMS(sine(440, 1, 16000, 4))
	assert.InDelta(t, 1/math.Sqrt2, rms, 0.02)
}

func TestFrameRMSFrameCount(t *testing.T) {
	frames := FrameRMS(make([]float64, 16000), 2048, 512)
	assert.Len(t, frames, 1+16000/512)
	assert.Nil(t, FrameRMS(nil, 2048, 512))
}

func TestLevelerBoostsQuietClip(t *testing.T) {
	c := &Clip{Samples: sine(220, 0.001, 16000, 1), SampleRate: 16000}

	rms, gain := DefaultLeveler().Apply(c)
	assert.Less(t, rms, 0.01)
	assert.Greater(t, gain, 1.0)
	assert.InDelta(t, 0.02, MeanRMS(c.Samples), 1e-6)
}

func TestLevelerLeavesLoudClip(t *testing.T) {
	c := &Clip{Samples: sine(220, 0.5, 16000, 1), SampleRate: 16000}
	before := c.Samples[100]

	_, gain := DefaultLeveler().Apply(c)
	assert.Equal(t, 1.0, gain)
	assert.Equal(t, before, c.Samples[100])
}

func TestLevelerSilenceUsesFloor(t *testing.T) {
	c := &Clip{Samples: make([]float64, 4096), SampleRate: 16000}

	rms, gain := DefaultLeveler().Apply(c)
	assert.Equal(t, 0.0, rms)
	assert.InDelta(t, 0.02/1e-6, gain, 1e-6)
}
