package feedback

import (
	"encoding/json"
	"testing"

	"github.com/keagan/interviewlens/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestForSpeechSegmentEntries(t *testing.T) {
	a := &speech.Analysis{
		Syllables: 50,
		WPM:       85,
		F0Std:     40,
		Segments: []speech.Segment{
			{Start: 0, End: 3, WPM: f(50), F0Std: f(30)},
			{Start: 3, End: 6, WPM: f(85), F0Std: f(10)},
			{Start: 6, End: 8, WPM: f(140)},
			{Start: 8, End: 8},
		},
	}

	fb := ForSpeech(a, DefaultThresholds())

	require.Len(t, fb.Speech, 2)
	assert.Equal(t, "발화 속도가 느린 구간입니다.", fb.Speech[0].Feedback)
	assert.Equal(t, 0.0, *fb.Speech[0].Start)
	assert.Equal(t, 3.0, *fb.Speech[0].End)
	assert.Equal(t, "발화 속도가 빠른 구간입니다.", fb.Speech[1].Feedback)
	assert.Equal(t, 6.0, *fb.Speech[1].Start)

	require.Len(t, fb.Pitch, 1)
	assert.Equal(t, "억양 변화가 적은 구간입니다.", fb.Pitch[0].Feedback)
	assert.Equal(t, 3.0, *fb.Pitch[0].Start)
}

func TestForSpeechBoundariesDoNotTrigger(t *testing.T) {
	a := &speech.Analysis{
		Syllables: 10,
		WPM:       85,
		F0Std:     20,
		Segments: []speech.Segment{
			{Start: 0, End: 1, WPM: f(70), F0Std: f(15)},
			{Start: 1, End: 2, WPM: f(100), F0Std: f(15)},
		},
	}

	fb := ForSpeech(a, DefaultThresholds())
	require.Len(t, fb.Speech, 1)
	assert.Equal(t, "발화 속도가 안정적입니다.", fb.Speech[0].Feedback)
	assert.Nil(t, fb.Speech[0].Start)
	require.Len(t, fb.Pitch, 1)
	assert.Equal(t, "억양이 자연스럽습니다.", fb.Pitch[0].Feedback)
}

func TestForSpeechWholeRecordingFallback(t *testing.T) {
	tests := []struct {
		name      string
		syllables int
		wpm       float64
		f0Std     float64
		speech    string
		pitch     string
	}{
		{"no speech", 0, 0, 0, "음성이 감지되지 않아 발화속도를 분석할 수 없습니다.", "전체적으로 억양 변화가 적습니다."},
		{"slow", 20, 60, 14.9, "전체적으로 발화 속도가 느립니다.", "전체적으로 억양 변화가 적습니다."},
		{"fast", 200, 130, 15, "전체적으로 발화 속도가 빠릅니다.", "억양이 자연스럽습니다."},
		{"steady", 100, 90, 45, "발화 속도가 안정적입니다.", "억양이 자연스럽습니다."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := ForSpeech(&speech.Analysis{Syllables: tt.syllables, WPM: tt.wpm, F0Std: tt.f0Std}, DefaultThresholds())
			require.Len(t, fb.Speech, 1)
			require.Len(t, fb.Pitch, 1)
			assert.Equal(t, tt.speech, fb.Speech[0].Feedback)
			assert.Equal(t, tt.pitch, fb.Pitch[0].Feedback)
			assert.NotEmpty(t, fb.Speech[0].Cause)
			assert.NotEmpty(t, fb.Pitch[0].Correction)
		})
	}
}

func TestForSpeechNoSyllablesIgnoresSegmentRates(t *testing.T) {
	a := &speech.Analysis{
		Text:       "...",
		Duration:   5,
		SpeechTime: 5,
		Segments: []speech.Segment{
			{Start: 0, End: 5, Text: "...", WPM: f(0), F0Std: f(40)},
			{Start: 5, End: 7, Text: "Hello there", WPM: f(0), F0Std: f(40)},
		},
	}

	fb := ForSpeech(a, DefaultThresholds())
	require.Len(t, fb.Speech, 1)
	assert.Equal(t, "음성이 감지되지 않아 발화속도를 분석할 수 없습니다.", fb.Speech[0].Feedback)
	assert.Nil(t, fb.Speech[0].Start)
	require.Len(t, fb.Pitch, 1)
	assert.Equal(t, "억양이 자연스럽습니다.", fb.Pitch[0].Feedback)
}

func TestForSpeechFallbackIsPerCategory(t *testing.T) {
	a := &speech.Analysis{
		Syllables: 40,
		WPM:       85,
		F0Std:     8,
		Segments:  []speech.Segment{{Start: 0, End: 2, WPM: f(40)}},
	}

	fb := ForSpeech(a, DefaultThresholds())
	require.Len(t, fb.Speech, 1)
	assert.NotNil(t, fb.Speech[0].Start)
	require.Len(t, fb.Pitch, 1)
	assert.Equal(t, "전체적으로 억양 변화가 적습니다.", fb.Pitch[0].Feedback)
}

func TestEntryJSONOmitsTimesForWholeRecording(t *testing.T) {
	fb := ForSpeech(&speech.Analysis{Syllables: 1, WPM: 85, F0Std: 30}, DefaultThresholds())
	raw, err := json.Marshal(fb.Speech[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "start")
	assert.Contains(t, string(raw), `"cause"`)
}

func TestFailed(t *testing.T) {
	fb := Failed()
	require.Len(t, fb.Speech, 1)
	require.Len(t, fb.Pitch, 1)
	assert.Equal(t, "분석 실패", fb.Speech[0].Feedback)
	assert.Equal(t, "분석 실패", fb.Pitch[0].Feedback)
}

func TestForVisual(t *testing.T) {
	stable := ForVisual(0.5, 0.02)
	assert.Equal(t, "시선이 안정적입니다.", stable.GazeFeedback)
	assert.Equal(t, "현재 시선 처리 방식이 좋습니다.", stable.GazeCorrection)
	assert.Equal(t, "표정이 자연스럽습니다.", stable.ExpressionFeedback)
	assert.Equal(t, "현재의 표정을 유지해 주세요.", stable.ExpressionCorrection)

	edge := ForVisual(0.45, 0.015)
	assert.Equal(t, "시선이 안정적입니다.", edge.GazeFeedback)
	assert.Equal(t, "표정이 자연스럽습니다.", edge.ExpressionFeedback)

	off := ForVisual(0.56, 0.01)
	assert.Equal(t, "시선이 불안정합니다.", off.GazeFeedback)
	assert.Equal(t, "카메라 중앙을 바라보세요.", off.GazeCorrection)
	assert.Equal(t, "무표정이 감지되었습니다.", off.ExpressionFeedback)
	assert.Equal(t, "입꼬리를 살짝 올려 부드러운 표정을 만들어보세요.", off.ExpressionCorrection)
}

func TestVisualFailedStrings(t *testing.T) {
	v := VisualFailed()
	assert.Equal(t, "영상 인식 실패", v.GazeFeedback)
	assert.Equal(t, "조명이 충분한 환경에서 다시 촬영해주세요.", v.GazeCorrection)
	assert.Equal(t, "분석 불가", v.ExpressionFeedback)
	assert.Equal(t, "카메라를 정면으로 바라보세요.", v.ExpressionCorrection)
}

func TestForBehaviorMissingSignals(t *testing.T) {
	b := ForBehavior(BehaviorSignals{})

	assert.Equal(t, 0.0, b.GazeCenterRatio)
	assert.Equal(t, 0.0, b.GazeCenterScore)
	assert.Equal(t, 0.0, b.BlinkRate)
	assert.Equal(t, 40.0, b.BlinkScore)
	assert.Equal(t, 20.0, b.GazeTotalScore)
	assert.Equal(t, "시선이 자주 중앙에서 벗어납니다.", b.GazeCenterFeedback)
	assert.Equal(t, "깜빡임 데이터가 충분하지 않습니다.", b.BlinkFeedback)
	assert.Equal(t, "neutral", b.DominantEmotion)
	assert.Equal(t, 70.0, b.ExpressionScoreValue)
	assert.Equal(t, "orange", b.ExpressionColor)
}

func TestForBehaviorBands(t *testing.T) {
	tests := []struct {
		ratio, rate float64
		gaze, blink string
	}{
		{0.49, 4.9, "시선이 자주 중앙에서 벗어납니다.", "눈 깜빡임이 거의 없어 다소 긴장되어 보일 수 있습니다."},
		{0.5, 5, "중앙 응시는 있지만, 시선이 다소 흔들립니다.", "깜빡임 빈도가 자연스러운 범위입니다."},
		{0.69, 25, "중앙 응시는 있지만, 시선이 다소 흔들립니다.", "깜빡임 빈도가 자연스러운 범위입니다."},
		{0.7, 25.1, "카메라 중앙 응시가 전체적으로 잘 유지되고 있습니다.", "눈을 자주 깜빡이는 편입니다."},
	}
	for _, tt := range tests {
		b := ForBehavior(BehaviorSignals{GazeCenterRatio: f(tt.ratio), BlinkRate: f(tt.rate)})
		assert.Equal(t, tt.gaze, b.GazeCenterFeedback, "ratio %v", tt.ratio)
		assert.Equal(t, tt.blink, b.BlinkFeedback, "rate %v", tt.rate)
	}
}

func TestForBehaviorScores(t *testing.T) {
	b := ForBehavior(BehaviorSignals{GazeCenterRatio: f(0.8), BlinkRate: f(15), DominantEmotion: "Happy"})

	assert.Equal(t, 80.0, b.GazeCenterRatio)
	assert.Equal(t, 80.0, b.GazeCenterScore)
	assert.Equal(t, 100.0, b.BlinkScore)
	assert.Equal(t, 90.0, b.GazeTotalScore)
	assert.Equal(t, 85.0, b.ExpressionScoreValue)
	assert.Equal(t, "green", b.ExpressionColor)
}

func TestForBehaviorNegativeEmotion(t *testing.T) {
	for _, e := range []string{"sad", "angry", "disgust", "fear"} {
		b := ForBehavior(BehaviorSignals{DominantEmotion: e})
		assert.Equal(t, "red", b.ExpressionColor, e)
	}

	b := ForBehavior(BehaviorSignals{DominantEmotion: "bored"})
	assert.Equal(t, 70.0, b.ExpressionScoreValue)
	assert.Equal(t, "orange", b.ExpressionColor)
}
