package feedback

import (
	"github.com/keagan/interviewlens/internal/speech"
)

// Entry is one piece of categorical feedback. Start and End are set for
// segment-level entries and omitted for whole-recording ones.
type Entry struct {
	Start      *float64 `json:"start,omitempty"`
	End        *float64 `json:"end,omitempty"`
	Feedback   string   `json:"feedback"`
	Cause      string   `json:"cause"`
	Correction string   `json:"correction"`
}

// Speech groups speaking-rate and intonation feedback.
type Speech struct {
	Speech []Entry `json:"speech"`
	Pitch  []Entry `json:"pitch"`
}

// Thresholds bound the segment and whole-recording feedback categories.
// They are independent of the scoring bands.
type Thresholds struct {
	WPMSlow  float64
	WPMFast  float64
	F0StdLow float64
}

// DefaultThresholds treats 70-100 syllables per minute as comfortable and an
// F0 spread under 15 Hz as monotone.
func DefaultThresholds() Thresholds {
	return Thresholds{WPMSlow: 70, WPMFast: 100, F0StdLow: 15}
}

var (
	segmentSlow = Entry{
		Feedback:   "발화 속도가 느린 구간입니다.",
		Cause:      "호흡 템포가 일정하지 않거나 문장 사이 간격이 너무 길게 유지되었습니다.",
		Correction: "조금 더 일정한 리듬으로, 문장 사이의 멈춤을 줄이고 말해보세요.",
	}
	segmentFast = Entry{
		Feedback:   "발화 속도가 빠른 구간입니다.",
		Cause:      "긴장하거나 내용 전달을 서두른 구간으로 보입니다.",
		Correction: "호흡을 늘리고, 문장 끝에서는 짧게 멈추며 안정감을 주도록 해보세요.",
	}
	segmentFlat = Entry{
		Feedback:   "억양 변화가 적은 구간입니다.",
		Cause:      "톤이 일정하여 다소 단조롭게 들릴 수 있습니다.",
		Correction: "문장 중 강조할 단어에 힘을 주거나 피치를 살짝 높여보세요.",
	}

	overallNoSpeech = Entry{
		Feedback:   "음성이 감지되지 않아 발화속도를 분석할 수 없습니다.",
		Cause:      "녹음된 음성에서 인식 가능한 발화를 찾지 못했습니다.",
		Correction: "마이크 연결과 입력 음량을 확인한 뒤 다시 녹화해보세요.",
	}
	overallSlow = Entry{
		Feedback:   "전체적으로 발화 속도가 느립니다.",
		Cause:      "발음은 명확하지만 템포가 느려 답변이 지루하게 들릴 수 있습니다.",
		Correction: "호흡 간격을 일정하게 유지하고, 템포를 10~15% 정도 높여보세요.",
	}
	overallFast = Entry{
		Feedback:   "전체적으로 발화 속도가 빠릅니다.",
		Cause:      "긴장감으로 인해 말을 서둘러서 표현력이 떨어졌습니다.",
		Correction: "호흡을 깊게 하고 문장 끝에서 짧은 멈춤을 넣으면 안정적인 인상을 줍니다.",
	}
	overallSteady = Entry{
		Feedback:   "발화 속도가 안정적입니다.",
		Cause:      "속도 조절이 잘 되어 있으며, 전달력이 좋습니다.",
		Correction: "현재의 템포를 유지하면 좋습니다.",
	}
	overallFlat = Entry{
		Feedback:   "전체적으로 억양 변화가 적습니다.",
		Cause:      "감정이 덜 전달되어 단조롭게 들릴 수 있습니다.",
		Correction: "문장 끝부분에 살짝 피치 변화를 주면 자연스러운 억양이 됩니다.",
	}
	overallNatural = Entry{
		Feedback:   "억양이 자연스럽습니다.",
		Cause:      "문장 강약과 피치 변화가 균형 있게 조화를 이루고 있습니다.",
		Correction: "현재의 억양 패턴을 유지하세요.",
	}

	failed = Entry{
		Feedback:   "분석 실패",
		Cause:      "음성을 불러오거나 인식하는 중 오류가 발생했습니다.",
		Correction: "녹음 상태를 확인한 뒤 다시 시도해주세요.",
	}
)

// ForSpeech builds segment feedback for every segment whose rate or pitch
// spread falls outside th. A category with no segment entries gets exactly
// one whole-recording entry chosen from the totals in a.
func ForSpeech(a *speech.Analysis, th Thresholds) Speech {
	fb := Speech{Speech: []Entry{}, Pitch: []Entry{}}

	// With no countable syllables only the no-speech entry applies.
	countable := a.Syllables > 0

	for _, seg := range a.Segments {
		if countable && seg.WPM != nil {
			switch {
			case *seg.WPM < th.WPMSlow:
				fb.Speech = append(fb.Speech, at(segmentSlow, seg))
			case *seg.WPM > th.WPMFast:
				fb.Speech = append(fb.Speech, at(segmentFast, seg))
			}
		}
		if seg.F0Std != nil && *seg.F0Std < th.F0StdLow {
			fb.Pitch = append(fb.Pitch, at(segmentFlat, seg))
		}
	}

	if len(fb.Speech) == 0 {
		switch {
		case a.Syllables == 0:
			fb.Speech = append(fb.Speech, overallNoSpeech)
		case a.WPM < th.WPMSlow:
			fb.Speech = append(fb.Speech, overallSlow)
		case a.WPM > th.WPMFast:
			fb.Speech = append(fb.Speech, overallFast)
		default:
			fb.Speech = append(fb.Speech, overallSteady)
		}
	}

	if len(fb.Pitch) == 0 {
		if a.F0Std < th.F0StdLow {
			fb.Pitch = append(fb.Pitch, overallFlat)
		} else {
			fb.Pitch = append(fb.Pitch, overallNatural)
		}
	}

	return fb
}

// Failed is the feedback reported when speech could not be analyzed.
func Failed() Speech {
	return Speech{Speech: []Entry{failed}, Pitch: []Entry{failed}}
}

func at(e Entry, seg speech.Segment) Entry {
	start, end := seg.Start, seg.End
	e.Start = &start
	e.End = &end
	return e
}
