package prosody

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(freq float64, rate int, seconds float64) []float64 {
	out := make([]float64, int(float64(rate)*seconds))
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestTrackRecoversSine(t *testing.T) {
	for _, freq := range []float64{110, 220, 440} {
		s, err := Extract(DefaultYIN(), tone(freq, 16000, 1), 16000)
		require.NoError(t, err)
		require.Greater(t, s.Voiced, 0)
		assert.InDelta(t, freq, s.Mean, 2, "freq %v", freq)
		assert.Less(t, s.Std, 1.0)
	}
}

func TestTrackSilenceIsUnvoiced(t *testing.T) {
	s, err := Extract(DefaultYIN(), make([]float64, 16000), 16000)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Voiced)
	assert.Equal(t, 0.0, s.Mean)
	assert.Equal(t, 0.0, s.Std)
	assert.NotEmpty(t, s.Contour.Values)
}

func TestTrackShortInput(t *testing.T) {
	c := DefaultYIN().Track(make([]float64, 100), 16000)
	assert.Empty(t, c.Values)
}

func TestExtractRejectsBadRate(t *testing.T) {
	_, err := Extract(DefaultYIN(), tone(220, 16000, 0.5), 0)
	assert.Error(t, err)
}

func TestExtractRecoversPanic(t *testing.T) {
	y := DefaultYIN()
	y.FrameLength = -1 // slices out of range inside the tracker

	_, err := Extract(y, tone(220, 16000, 0.1), 16000)
	assert.Error(t, err)
}

func TestContourBetween(t *testing.T) {
	c := Contour{Values: []float64{100, math.NaN(), 200, 300}, Step: 1, Offset: 0.5}

	assert.Equal(t, []float64{100}, c.Between(0, 1))
	assert.Equal(t, []float64{200, 300}, c.Between(1, 4))
	assert.Equal(t, []float64{100, 200, 300}, c.Voiced())
	assert.Equal(t, 2.5, c.Time(2))
}

func TestStats(t *testing.T) {
	mean, std := Stats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, std, 1e-9)

	mean, std = Stats(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)
}
