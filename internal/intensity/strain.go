package intensity

// EstimateStrain produces the lighter-weight strain estimate in [0, 100].
// It feeds only the safety rules of the rule engine and is never shown
// as the headline score.
func EstimateStrain(session WorkoutSession, health *HealthMetrics) float64 {
	strain := 50.0

	if variance, ok := health.HRVariance(); ok {
		strain += variance * 2
	}
	if drift, ok := health.SpO2Drift(); ok && drift > 3 {
		strain += (drift - 3) * 5
	}
	if sleep, ok := health.Sleep(); ok && sleep < 10 {
		strain += (10 - sleep) * 2
	}

	if strain > 100 {
		strain = 100
	}
	return strain
}
