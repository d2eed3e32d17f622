package vision

// FrameSample is the face geometry of one sampled frame.
type FrameSample struct {
	Index    int     // source frame number
	Time     float64 // seconds, 0 when the frame rate is unknown
	Detected bool
	Gaze     Point
	Mouth    float64
	Openness float64
}

// Signals aggregates the samples of one video.
type Signals struct {
	GazeX          float64
	MouthMean      float64
	FramesSampled  int
	FramesDetected int

	// GazeCenterRatio is the share of detected frames whose gaze x lies in
	// the centre band. Nil without detections.
	GazeCenterRatio *float64
	// BlinkRate is blinks per minute of sampled footage. Nil when the frame
	// rate is unknown or fewer than two frames had a face.
	BlinkRate *float64
}

const (
	centreLow        = 0.45
	centreHigh       = 0.55
	blinkClosedBelow = 0.2
)

// Aggregate reduces samples to video-level signals. Without detections the
// gaze defaults to 0.5 and the mouth aperture to 0.
func Aggregate(samples []FrameSample, fps float64, interval int) Signals {
	s := Signals{GazeX: 0.5, FramesSampled: len(samples)}

	var gazeSum, mouthSum float64
	var centred, blinks int
	closed := false

	for _, f := range samples {
		if !f.Detected {
			closed = false
			continue
		}
		s.FramesDetected++
		gazeSum += f.Gaze.X
		mouthSum += f.Mouth

		if f.Gaze.X >= centreLow && f.Gaze.X <= centreHigh {
			centred++
		}

		isClosed := f.Openness < blinkClosedBelow
		if closed && !isClosed {
			blinks++
		}
		closed = isClosed
	}

	if s.FramesDetected == 0 {
		return s
	}

	n := float64(s.FramesDetected)
	s.GazeX = gazeSum / n
	s.MouthMean = mouthSum / n

	ratio := float64(centred) / n
	s.GazeCenterRatio = &ratio

	if fps > 0 && interval > 0 && s.FramesDetected >= 2 {
		minutes := float64(s.FramesSampled*interval) / fps / 60
		rate := float64(blinks) / minutes
		s.BlinkRate = &rate
	}

	return s
}
