package util

import (
	"strconv"
	"strings"
)

// ParseFrameRate parses an ffprobe frame rate such as "30000/1001" or "25".
// Malformed or undefined rates ("0/0") yield 0.
func ParseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		fps, err := strconv.ParseFloat(s, 64)
		if err != nil || fps < 0 {
			return 0
		}
		return fps
	}

	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
