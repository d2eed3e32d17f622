package prosody

import (
	"math"
)

// YIN estimates the fundamental frequency of fixed-size frames using the
// cumulative mean normalized difference function.
type YIN struct {
	FrameLength int
	HopLength   int
	FMin        float64
	FMax        float64
	Threshold   float64
	EnergyFloor float64 // frames with a lower RMS are unvoiced
}

// DefaultYIN tracks C2 to C7 over 2048-sample frames.
func DefaultYIN() YIN {
	return YIN{
		FrameLength: 2048,
		HopLength:   512,
		FMin:        65.41,   // C2
		FMax:        2093.00, // C7
		Threshold:   0.15,
		EnergyFloor: 0.005,
	}
}

// Contour is a per-frame F0 track. Unvoiced frames hold NaN.
type Contour struct {
	Values []float64
	// Step is the time between frames and Offset the centre of frame 0,
	// both in seconds.
	Step   float64
	Offset float64
}

// Time returns the centre time of frame i.
func (c Contour) Time(i int) float64 {
	return c.Offset + float64(i)*c.Step
}

// Voiced returns the non-NaN values.
func (c Contour) Voiced() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Between returns voiced values whose frame centre lies in [start, end).
func (c Contour) Between(start, end float64) []float64 {
	var out []float64
	for i, v := range c.Values {
		if math.IsNaN(v) {
			continue
		}
		if t := c.Time(i); t >= start && t < end {
			out = append(out, v)
		}
	}
	return out
}

// Track runs the estimator over samples.
func (y YIN) Track(samples []float64, sampleRate int) Contour {
	c := Contour{
		Step:   float64(y.HopLength) / float64(sampleRate),
		Offset: float64(y.FrameLength) / 2 / float64(sampleRate),
	}
	if len(samples) < y.FrameLength {
		return c
	}

	tauMin := int(math.Floor(float64(sampleRate) / y.FMax))
	tauMax := int(math.Ceil(float64(sampleRate) / y.FMin))
	if tauMin < 2 {
		tauMin = 2
	}
	if tauMax > y.FrameLength/2 {
		tauMax = y.FrameLength / 2
	}
	window := y.FrameLength - tauMax

	diff := make([]float64, tauMax+1)
	cmnd := make([]float64, tauMax+1)

	for start := 0; start+y.FrameLength <= len(samples); start += y.HopLength {
		frame := samples[start : start+y.FrameLength]
		c.Values = append(c.Values, y.estimate(frame, sampleRate, tauMin, tauMax, window, diff, cmnd))
	}
	return c
}

func (y YIN) estimate(frame []float64, sampleRate, tauMin, tauMax, window int, diff, cmnd []float64) float64 {
	var energy float64
	for _, s := range frame {
		energy += s * s
	}
	if math.Sqrt(energy/float64(len(frame))) < y.EnergyFloor {
		return math.NaN()
	}

	for tau := 1; tau <= tauMax; tau++ {
		var sum float64
		for j := 0; j < window; j++ {
			d := frame[j] - frame[j+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	cmnd[0] = 1
	var running float64
	for tau := 1; tau <= tauMax; tau++ {
		running += diff[tau]
		if running == 0 {
			cmnd[tau] = 1
			continue
		}
		cmnd[tau] = diff[tau] * float64(tau) / running
	}

	tau := -1
	for t := tauMin; t <= tauMax; t++ {
		if cmnd[t] < y.Threshold {
			for t+1 <= tauMax && cmnd[t+1] < cmnd[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return math.NaN()
	}

	period := float64(tau)
	if tau > 1 && tau < tauMax {
		a, b, cc := cmnd[tau-1], cmnd[tau], cmnd[tau+1]
		if denom := a - 2*b + cc; denom != 0 {
			period += (a - cc) / (2 * denom)
		}
	}

	f0 := float64(sampleRate) / period
	if f0 < y.FMin || f0 > y.FMax {
		return math.NaN()
	}
	return f0
}
