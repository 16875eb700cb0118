package intensity

// VolumeAdjustment is the recommendation for next week's training volume.
type VolumeAdjustment struct {
	AdjustVolume      bool    `json:"adjustVolume"`
	AdjustmentPercent float64 `json:"adjustmentPercent"` // within [-10, 10]
	FlagForReview     bool    `json:"flagForReview"`
}

// DefaultWeightIncrement is the fixed positive progression communicated to
// the user when no adjustment rule fires. It is a weight delta, not a
// VolumeAdjustment percentage.
const DefaultWeightIncrement = 2.5

// Decision is the rule engine output for one workout session.
type Decision struct {
	Adjustment VolumeAdjustment `json:"adjustment"`
	// DefaultProgression is set when no rule fired and the standard
	// +2.5 weight-unit progression applies instead.
	DefaultProgression bool    `json:"defaultProgression"`
	WeightIncrement    float64 `json:"weightIncrement,omitempty"`
}

type RuleEngine struct {
	compareClampedScore bool
}

type RuleEngineOption func(*RuleEngine)

// CompareClampedScore makes the over-intensity rule check the clamped total
// score instead of the pre-clamp raw sum. Since the total is clamped to 100
// before the rules run, that variant can never fire; it exists so tests can
// pin down which evaluation order is in effect.
func CompareClampedScore() RuleEngineOption {
	return func(re *RuleEngine) {
		re.compareClampedScore = true
	}
}

func NewRuleEngine(opts ...RuleEngineOption) *RuleEngine {
	re := &RuleEngine{}
	for _, opt := range opts {
		opt(re)
	}
	return re
}

// Decide applies the ordered rule set over the score, strain and feedback.
// Later matching rules win over earlier ones, except the mental-stress
// override, which is always checked last and discards any other outcome.
func (re *RuleEngine) Decide(
	score Score,
	strain float64,
	session WorkoutSession,
	health *HealthMetrics,
) Decision {
	var (
		adjustment VolumeAdjustment
		matched    bool
	)

	// over-intensity: reduce volume proportionally to the overshoot
	overIntensityScore := score.RawTotal
	if re.compareClampedScore {
		overIntensityScore = score.Total
	}
	if overIntensityScore > 100 {
		adjustment = VolumeAdjustment{
			AdjustVolume:      true,
			AdjustmentPercent: -clamp(overIntensityScore-100, 5, 10),
		}
		matched = true
	}

	// "easy killer" but body under high strain: back off
	if session.Feedback != nil && *session.Feedback == FeedbackEasyKiller && strain > 95 {
		adjustment = VolumeAdjustment{
			AdjustVolume:      true,
			AdjustmentPercent: -clamp((strain-95)*2, 5, 10),
		}
		matched = true
	}

	// user flagged that something felt off
	if session.Feedback != nil && *session.Feedback == FeedbackFlagReview {
		hrVariance, _ := health.HRVariance()
		spo2Drift, _ := health.SpO2Drift()
		corroborated := hrVariance > 10 || spo2Drift > 2
		if corroborated {
			// health data agrees, apply a flat reduction
			adjustment = VolumeAdjustment{
				AdjustVolume:      true,
				AdjustmentPercent: -7.5,
			}
		} else {
			// health data does not corroborate, hand over to a human
			adjustment = VolumeAdjustment{
				FlagForReview: true,
			}
		}
		matched = true
	}

	// mental-stress override: elevated signals with zero reps done means the
	// session says nothing about training capacity, drop it from progression
	// entirely rather than penalize or reward it
	hrVariance, _ := health.HRVariance()
	spo2Drift, _ := health.SpO2Drift()
	if hrVariance > 15 && spo2Drift > 3 && session.Reps == 0 {
		return Decision{
			Adjustment: VolumeAdjustment{},
		}
	}

	if !matched {
		return Decision{
			DefaultProgression: true,
			WeightIncrement:    DefaultWeightIncrement,
		}
	}

	return Decision{
		Adjustment: adjustment,
	}
}
