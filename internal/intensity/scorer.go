package intensity

// BaseScore is the fixed starting point of every intensity score.
const BaseScore = 50

// ScoreBreakdown keeps the individual contributions so the UI can show
// where the composite number came from.
type ScoreBreakdown struct {
	Base       float64 `json:"baseScore"`
	HRVariance float64 `json:"hrVarianceScore"`
	SpO2Drift  float64 `json:"spo2DriftScore"`
	Sleep      float64 `json:"sleepScore"`
	Feedback   float64 `json:"feedbackScore"`
}

// Score is the normalized per-workout intensity score.
// Total is clamped to [0, 100]; RawTotal keeps the pre-clamp sum, which the
// rule engine needs for its over-intensity check.
type Score struct {
	Total     float64        `json:"totalScore"`
	RawTotal  float64        `json:"-"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score combines health signals and subjective feedback into a single
// 0-100 score. Absent inputs contribute zero, they are never an error.
func (s *Scorer) Score(session WorkoutSession, health *HealthMetrics) Score {
	breakdown := ScoreBreakdown{
		Base: BaseScore,
	}

	if variance, ok := health.HRVariance(); ok {
		breakdown.HRVariance = min(variance, 20)
	}
	if drift, ok := health.SpO2Drift(); ok {
		breakdown.SpO2Drift = min(drift*2, 10)
	}
	if sleep, ok := health.Sleep(); ok {
		breakdown.Sleep = sleep
	}
	if session.Feedback != nil {
		breakdown.Feedback = session.Feedback.ScoreDelta()
	}

	raw := breakdown.Base +
		breakdown.HRVariance +
		breakdown.SpO2Drift +
		breakdown.Sleep +
		breakdown.Feedback

	return Score{
		Total:     clamp(raw, 0, 100),
		RawTotal:  raw,
		Breakdown: breakdown,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
