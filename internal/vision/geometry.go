package vision

import (
	"fmt"
	"math"
)

// Point is a landmark position in normalized image coordinates.
type Point struct {
	X, Y float64
}

// Mid returns the midpoint of p and q.
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Landmarks is a face mesh in the 468/478-point topology.
type Landmarks []Point

// Mesh indices used by the geometry below.
const (
	leftEyeOuter  = 33
	leftEyeInner  = 133
	leftEyeUpper  = 159
	leftEyeLower  = 145
	rightEyeInner = 362
	rightEyeOuter = 263
	rightEyeUpper = 386
	rightEyeLower = 374
	upperLipInner = 13
	lowerLipInner = 14

	minLandmarks = 468
)

func (l Landmarks) check() error {
	if len(l) < minLandmarks {
		return fmt.Errorf("face mesh has %d landmarks, need %d", len(l), minLandmarks)
	}
	return nil
}

// GazeCenter is the mean of the two eye midpoints.
func (l Landmarks) GazeCenter() Point {
	left := l[leftEyeOuter].Mid(l[leftEyeInner])
	right := l[rightEyeInner].Mid(l[rightEyeOuter])
	return left.Mid(right)
}

// MouthAperture is the distance between the inner lips.
func (l Landmarks) MouthAperture() float64 {
	return l[upperLipInner].Dist(l[lowerLipInner])
}

// EyeOpenness is the mean lid gap over eye width of both eyes. Open eyes sit
// around 0.25-0.35 and a blink drops below 0.2.
func (l Landmarks) EyeOpenness() float64 {
	return (openness(l[leftEyeUpper], l[leftEyeLower], l[leftEyeOuter], l[leftEyeInner]) +
		openness(l[rightEyeUpper], l[rightEyeLower], l[rightEyeInner], l[rightEyeOuter])) / 2
}

func openness(upper, lower, a, b Point) float64 {
	width := a.Dist(b)
	if width == 0 {
		return 0
	}
	return upper.Dist(lower) / width
}
