package prosody

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Summary holds pitch statistics over the voiced frames of a recording.
type Summary struct {
	Mean    float64
	Std     float64
	Voiced  int
	Contour Contour
}

// Stats returns the mean and population standard deviation of values, or
// zeros when values is empty.
func Stats(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// Extract tracks pitch over samples and summarizes the voiced frames. A
// panic inside the tracker is returned as an error.
func Extract(y YIN, samples []float64, sampleRate int) (s Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			s = Summary{}
			err = fmt.Errorf("pitch tracking panicked: %v", r)
		}
	}()

	if sampleRate <= 0 {
		return Summary{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	contour := y.Track(samples, sampleRate)
	voiced := contour.Voiced()
	mean, std := Stats(voiced)

	return Summary{Mean: mean, Std: std, Voiced: len(voiced), Contour: contour}, nil
}
