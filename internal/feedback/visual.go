package feedback

// Visual is the gaze and expression feedback derived from face geometry.
type Visual struct {
	GazeFeedback         string
	GazeCause            string
	GazeCorrection       string
	ExpressionFeedback   string
	ExpressionCause      string
	ExpressionCorrection string
}

const (
	gazeLow        = 0.45
	gazeHigh       = 0.55
	mouthFlatBelow = 0.015
)

// ForVisual picks the gaze and expression categories from the mean gaze
// centre x and mean mouth aperture.
func ForVisual(gazeX, mouthMean float64) Visual {
	var v Visual

	if gazeX < gazeLow || gazeX > gazeHigh {
		v.GazeFeedback = "시선이 불안정합니다."
		v.GazeCause = "시선이 카메라 중앙에서 좌우로 벗어나 있는 시간이 깁니다."
		v.GazeCorrection = "카메라 중앙을 바라보세요."
	} else {
		v.GazeFeedback = "시선이 안정적입니다."
		v.GazeCause = "시선이 카메라 중앙 부근에 머물러 있습니다."
		v.GazeCorrection = "현재 시선 처리 방식이 좋습니다."
	}

	if mouthMean < mouthFlatBelow {
		v.ExpressionFeedback = "무표정이 감지되었습니다."
		v.ExpressionCause = "입 주변 움직임이 적어 표정 변화가 잘 드러나지 않습니다."
		v.ExpressionCorrection = "입꼬리를 살짝 올려 부드러운 표정을 만들어보세요."
	} else {
		v.ExpressionFeedback = "표정이 자연스럽습니다."
		v.ExpressionCause = "말하는 동안 입 모양이 충분히 움직이고 있습니다."
		v.ExpressionCorrection = "현재의 표정을 유지해 주세요."
	}

	return v
}

// VisualFailed is the fixed feedback for a video that could not be analyzed.
func VisualFailed() Visual {
	return Visual{
		GazeFeedback:         "영상 인식 실패",
		GazeCause:            "영상에서 얼굴을 인식하지 못했습니다.",
		GazeCorrection:       "조명이 충분한 환경에서 다시 촬영해주세요.",
		ExpressionFeedback:   "분석 불가",
		ExpressionCause:      "영상에서 얼굴을 인식하지 못했습니다.",
		ExpressionCorrection: "카메라를 정면으로 바라보세요.",
	}
}
