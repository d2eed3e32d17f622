package speech

// CountSyllables counts precomposed Hangul syllables (U+AC00..U+D7A3) in
// text. Each block is one spoken syllable.
func CountSyllables(text string) int {
	n := 0
	for _, r := range text {
		if r >= 0xAC00 && r <= 0xD7A3 {
			n++
		}
	}
	return n
}

// SpeechTime sums the segment durations, or uses duration when there are no
// segments. The result is never less than duration.
func SpeechTime(segments []Segment, duration float64) float64 {
	if len(segments) == 0 {
		return duration
	}

	var total float64
	for _, s := range segments {
		total += s.Duration()
	}
	if total < duration {
		return duration
	}
	return total
}

// WPM is syllables per minute of speech time.
func WPM(syllables int, speechTime float64) float64 {
	if speechTime <= 0 {
		return 0
	}
	return float64(syllables) / speechTime * 60
}
