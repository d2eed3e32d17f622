package scoring

import (
	"math"
	"strings"
)

// Gaze penalizes horizontal drift of the gaze centre away from 0.5.
func Gaze(gazeX float64) float64 {
	return finish(100 - math.Abs(gazeX-0.5)*200)
}

// NeutralExpression is the expression score when no mouth movement was
// measured.
const NeutralExpression = 50.0

// Expression maps mean mouth aperture to a score; 0.03 or more scores 100.
func Expression(mouthMean float64) float64 {
	if mouthMean <= 0 {
		return NeutralExpression
	}
	return finish(mouthMean / 0.03 * 100)
}

// GazeCenter converts the share of frames looking at the camera to a score.
func GazeCenter(ratio float64) float64 {
	return finish(ratio * 100)
}

// Blink scores blinks per minute around a relaxed rate of 15.
func Blink(rate float64) float64 {
	return finish(100 - math.Abs(rate-15)*4)
}

// DefaultEmotion is assumed when no emotion signal is available.
const DefaultEmotion = "neutral"

var emotionScores = map[string]float64{
	"happy":    85,
	"neutral":  70,
	"surprise": 75,
	"sad":      55,
	"angry":    50,
	"fear":     55,
	"disgust":  50,
}

// Emotion scores a dominant emotion label. Unknown labels score as neutral.
func Emotion(label string) float64 {
	if s, ok := emotionScores[strings.ToLower(strings.TrimSpace(label))]; ok {
		return finish(s)
	}
	return finish(emotionScores[DefaultEmotion])
}
