package scoring

import "math"

// Canonical scores speech rate and pitch without regard to answer length.
type Canonical struct{}

func (Canonical) Name() string { return "canonical" }

func (Canonical) Speech(wpm float64, _ int) float64 {
	var s float64
	switch {
	case wpm <= 40:
		s = 50 + (wpm/40)*30
	case wpm <= 60:
		s = 80 + (wpm-40)*0.5
	case wpm <= 100:
		s = 90 + (1-math.Abs(80-wpm)/40)*10
	case wpm <= 130:
		s = 95 - (wpm-100)*0.5
	default:
		s = math.Max(60, 80-(wpm-130)*0.4)
	}
	return finish(s)
}

func (Canonical) Pitch(f0Std float64) float64 {
	var s float64
	switch {
	case f0Std < 10:
		s = 30
	case f0Std < 30:
		s = 50 + (f0Std - 10)
	case f0Std <= 70:
		s = 80 + (1-math.Abs(50-f0Std)/40)*15
	case f0Std <= 100:
		s = 80 - (f0Std-70)*0.6
	default:
		s = 60
	}
	return finish(s)
}

// SyllableWeighted discounts the speech score of short answers: below 120
// syllables the score scales linearly with the syllable count.
type SyllableWeighted struct{}

func (SyllableWeighted) Name() string { return "syllable-weighted" }

func (SyllableWeighted) Speech(wpm float64, syllables int) float64 {
	factor := math.Min(1, float64(syllables)/120)

	var base float64
	switch {
	case wpm <= 40:
		base = 50 + (wpm/40)*30
	case wpm <= 70:
		base = 80 + (wpm-40)*0.5
	case wpm <= 100:
		base = 100 - math.Abs(85-wpm)*0.6
	case wpm <= 130:
		base = 90 - (wpm-100)*0.6
	default:
		base = math.Max(60, 80-(wpm-130)*0.3)
	}
	return finish(base * factor)
}

func (SyllableWeighted) Pitch(f0Std float64) float64 {
	var s float64
	switch {
	case f0Std < 10:
		s = 50
	case f0Std < 30:
		s = 60 + (f0Std - 10)
	case f0Std <= 70:
		s = 80 + (1-math.Abs(50-f0Std)/40)*15
	case f0Std <= 100:
		s = 80 - (f0Std-70)*0.5
	default:
		s = 65
	}
	return finish(s)
}
