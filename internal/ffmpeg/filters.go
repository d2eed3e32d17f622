package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// SampleEvery keeps one frame out of every n, starting with the first.
func (fb *FilterBuilder) SampleEvery(n int) *FilterBuilder {
	if n <= 1 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf(`select='not(mod(n\,%d))'`, n))
	return fb
}

// AudioVolume adjusts audio volume
func (fb *FilterBuilder) AudioVolume(volumeDB float64) *FilterBuilder {
	if volumeDB == 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("volume=%+gdB", volumeDB))
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}
