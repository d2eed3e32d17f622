package feedback

import (
	"strings"

	"github.com/keagan/interviewlens/internal/scoring"
)

// BehaviorSignals are the optional non-verbal signals of a recording. Nil
// means the signal was not measured.
type BehaviorSignals struct {
	GazeCenterRatio *float64
	BlinkRate       *float64
	DominantEmotion string
}

// Behavior is gaze-centre, blink and emotion feedback with their scores.
type Behavior struct {
	GazeTotalScore  float64 `json:"gaze_total_score"`
	GazeCenterRatio float64 `json:"gaze_center_ratio"` // percent
	GazeCenterScore float64 `json:"gaze_center_score"`
	BlinkRate       float64 `json:"blink_rate"`
	BlinkScore      float64 `json:"blink_score"`

	GazeCenterFeedback   string `json:"gaze_center_feedback"`
	GazeCenterCause      string `json:"gaze_center_cause"`
	GazeCenterCorrection string `json:"gaze_center_correction"`

	BlinkFeedback   string `json:"blink_feedback"`
	BlinkCause      string `json:"blink_cause"`
	BlinkCorrection string `json:"blink_correction"`

	DominantEmotion      string  `json:"dominant_emotion"`
	ExpressionScoreValue float64 `json:"expression_score_value"`
	ExpressionFeedback   string  `json:"expression_feedback"`
	ExpressionCause      string  `json:"expression_cause"`
	ExpressionCorrection string  `json:"expression_correction"`
	ExpressionColor      string  `json:"expression_color"`
}

// ForBehavior scores and describes the behaviour signals. Missing ratios and
// rates count as 0.
func ForBehavior(s BehaviorSignals) Behavior {
	var b Behavior

	ratio := 0.0
	if s.GazeCenterRatio != nil {
		ratio = *s.GazeCenterRatio
	}
	rate := 0.0
	if s.BlinkRate != nil {
		rate = *s.BlinkRate
	}

	b.GazeCenterRatio = scoring.Round1(ratio * 100)
	b.GazeCenterScore = scoring.GazeCenter(ratio)
	b.BlinkRate = scoring.Round1(rate)
	b.BlinkScore = scoring.Blink(rate)
	b.GazeTotalScore = scoring.Round1((b.GazeCenterScore + b.BlinkScore) / 2)

	switch {
	case ratio < 0.5:
		b.GazeCenterFeedback = "시선이 자주 중앙에서 벗어납니다."
		b.GazeCenterCause = "카메라 렌즈보다 화면이나 주변을 보는 시간이 더 길어 보입니다."
		b.GazeCenterCorrection = "답변할 때는 화면 대신 카메라 렌즈를 바라보는 연습을 해보세요. 문장을 말할 때마다 렌즈를 한 번씩 확인하는 습관을 들이면 도움이 됩니다."
	case ratio < 0.7:
		b.GazeCenterFeedback = "중앙 응시는 있지만, 시선이 다소 흔들립니다."
		b.GazeCenterCause = "중간중간 시선이 아래나 옆으로 자주 이동해 집중도가 약하게 느껴집니다."
		b.GazeCenterCorrection = "핵심 문장을 말할 때는 카메라를 바라보고, 생각이 필요할 때만 잠시 시선을 옮기는 식으로 패턴을 정해보세요."
	default:
		b.GazeCenterFeedback = "카메라 중앙 응시가 전체적으로 잘 유지되고 있습니다."
		b.GazeCenterCause = "시선이 안정적으로 유지되어 신뢰감 있는 인상을 줍니다."
		b.GazeCenterCorrection = "현재처럼 중요한 포인트에서 카메라를 바라보는 습관을 유지하시면 좋습니다."
	}

	switch {
	case s.BlinkRate == nil:
		b.BlinkFeedback = "깜빡임 데이터가 충분하지 않습니다."
		b.BlinkCause = "조명/화질 문제 또는 얼굴 인식이 불안정했을 수 있습니다."
		b.BlinkCorrection = "조명이 밝고 정면이 잘 보이는 환경에서 다시 촬영해보세요."
	case rate < 5:
		b.BlinkFeedback = "눈 깜빡임이 거의 없어 다소 긴장되어 보일 수 있습니다."
		b.BlinkCause = "눈을 의식적으로 크게 뜨거나, 긴장으로 인해 깜빡임을 억제했을 가능성이 있습니다."
		b.BlinkCorrection = "답변 중에도 자연스럽게 눈을 깜빡이는 연습을 해보세요. 말하기 전에 가볍게 눈을 감았다 뜨며 긴장을 풀어주는 것도 도움이 됩니다."
	case rate > 25:
		b.BlinkFeedback = "눈을 자주 깜빡이는 편입니다."
		b.BlinkCause = "긴장 또는 안구 건조로 인해 깜빡임 빈도가 높게 나타난 것으로 보입니다."
		b.BlinkCorrection = "답변 전에 눈을 잠시 감고 깊게 호흡해 긴장을 풀어보세요. 눈이 뻑뻑하다면 촬영 전 인공눈물을 사용하는 것도 방법입니다."
	default:
		b.BlinkFeedback = "깜빡임 빈도가 자연스러운 범위입니다."
		b.BlinkCause = "시선 처리와 함께 눈 움직임도 안정적으로 유지되고 있습니다."
		b.BlinkCorrection = "지금처럼 자연스럽게 눈을 깜빡이며 편안한 인상을 유지해보세요."
	}

	emotion := strings.ToLower(strings.TrimSpace(s.DominantEmotion))
	if emotion == "" {
		emotion = scoring.DefaultEmotion
	}
	b.DominantEmotion = emotion
	b.ExpressionScoreValue = scoring.Emotion(emotion)

	switch emotion {
	case "happy":
		b.ExpressionFeedback = "긍정적인 표정으로 안정적인 인상을 주었습니다."
		b.ExpressionCause = "입꼬리와 눈 주변 근육이 자연스럽게 올라가 있어 친근한 느낌을 줍니다."
		b.ExpressionCorrection = "지금처럼 미소를 유지하되, 너무 과하지 않도록 질문의 분위기에 따라 진지함과 미소를 적절히 조절해보세요."
		b.ExpressionColor = "green"
	case "sad", "angry", "disgust", "fear":
		b.ExpressionFeedback = "표정에서 다소 긴장감 또는 부정적인 인상이 감지됩니다."
		b.ExpressionCause = "눈썹, 입꼬리, 턱 근육이 굳어 있거나 아래로 처져 있어 불안/짜증/긴장으로 보일 수 있습니다."
		b.ExpressionCorrection = "답변 전 가볍게 얼굴 근육을 풀어주고, 입꼬리를 살짝 올리는 연습을 해보세요. 거울을 보며 편안한 표정을 만드는 것도 도움이 됩니다."
		b.ExpressionColor = "red"
	default:
		b.ExpressionFeedback = "무표정에 가까운 중립적인 표정을 유지했습니다."
		b.ExpressionCause = "큰 감정 변화는 없지만, 다소 딱딱하거나 긴장된 인상으로 느껴질 수 있습니다."
		b.ExpressionCorrection = "질문에 공감하는 미소나 고개 끄덕임을 조금만 추가해주면, 더 부드럽고 친절한 인상을 줄 수 있습니다."
		b.ExpressionColor = "orange"
	}

	return b
}
