package pipeline

import (
	"time"

	"github.com/keagan/interviewlens/internal/feedback"
	"github.com/keagan/interviewlens/internal/speech"
)

// Result is everything one analysis produces. Every field is always
// populated, with sentinel values when a stage degraded.
type Result struct {
	VideoFile   string            `json:"video_file"`
	AudioFile   string            `json:"audio_file"`
	UserID      *string           `json:"user_id"`
	Report      VisualReport      `json:"report"`
	Whisper     SpeechReport      `json:"whisper"`
	Behavior    feedback.Behavior `json:"behavior"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// VisualReport is the gaze and expression part of a Result.
type VisualReport struct {
	GazeFeedback         string  `json:"gaze_feedback"`
	GazeCause            string  `json:"gaze_cause"`
	GazeCorrection       string  `json:"gaze_correction"`
	ExpressionFeedback   string  `json:"expression_feedback"`
	ExpressionCause      string  `json:"expression_cause"`
	ExpressionCorrection string  `json:"expression_correction"`
	GazeScoreValue       float64 `json:"gaze_score_value"`
	ExpressionScoreValue float64 `json:"expression_score_value"`

	GazeX          float64 `json:"gaze_x"`
	MouthMean      float64 `json:"mouth_mean"`
	FramesSampled  int     `json:"frames_sampled"`
	FramesDetected int     `json:"frames_detected"`
	Degraded       bool    `json:"degraded"`
}

// SpeechReport is the transcription, rate and pitch part of a Result.
type SpeechReport struct {
	Text             string           `json:"text"`
	Duration         float64          `json:"duration"`
	SpeechTime       float64          `json:"speech_time"`
	SyllablesTotal   int              `json:"syllables_total"`
	WPMTotal         float64          `json:"wpm_total"`
	F0MeanTotal      float64          `json:"f0_mean_total"`
	F0StdTotal       float64          `json:"f0_std_total"`
	SpeechScoreValue float64          `json:"speech_score_value"`
	PitchScoreValue  float64          `json:"pitch_score_value"`
	Scoring          string           `json:"scoring"`
	Feedback         feedback.Speech  `json:"feedback"`
	Segments         []speech.Segment `json:"segments"`
	Degraded         bool             `json:"degraded"`
	PitchDegraded    bool             `json:"pitch_degraded"`
}
