package audio

import "math"

const (
	// FrameLength and HopLength are the analysis window used for level and
	// pitch measurements.
	FrameLength = 2048
	HopLength   = 512
)

// FrameRMS returns the RMS of each centered frame of samples. Frames are
// zero padded at both ends so the first frame is centered on sample 0.
func FrameRMS(samples []float64, frameLength, hopLength int) []float64 {
	if len(samples) == 0 || frameLength <= 0 || hopLength <= 0 {
		return nil
	}

	half := frameLength / 2
	n := 1 + len(samples)/hopLength
	out := make([]float64, n)

	for i := 0; i < n; i++ {
		center := i * hopLength
		var sum float64
		for j := center - half; j < center-half+frameLength; j++ {
			if j < 0 || j >= len(samples) {
				continue
			}
			sum += samples[j] * samples[j]
		}
		out[i] = math.Sqrt(sum / float64(frameLength))
	}
	return out
}

// MeanRMS is the mean of FrameRMS over the standard analysis window.
func MeanRMS(samples []float64) float64 {
	frames := FrameRMS(samples, FrameLength, HopLength)
	if len(frames) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frames {
		sum += v
	}
	return sum / float64(len(frames))
}

// Leveler boosts quiet recordings once, before transcription.
type Leveler struct {
	Threshold float64 // boost when mean RMS is below this
	Target    float64 // mean RMS after boosting
	Floor     float64 // lower bound on the measured RMS
}

// DefaultLeveler boosts anything quieter than 0.01 RMS up to 0.02.
func DefaultLeveler() Leveler {
	return Leveler{Threshold: 0.01, Target: 0.02, Floor: 1e-6}
}

// Apply scales c in place when it is too quiet and reports the measured RMS
// and applied gain. A gain of 1 means the clip was left untouched.
func (l Leveler) Apply(c *Clip) (rms, gain float64) {
	rms = MeanRMS(c.Samples)
	if rms >= l.Threshold {
		return rms, 1
	}

	gain = l.Target / math.Max(rms, l.Floor)
	for i := range c.Samples {
		c.Samples[i] *= gain
	}
	return rms, gain
}
