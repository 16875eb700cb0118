package intensity

import (
	"errors"
	"fmt"
	"time"
)

// WorkoutSession is one completed workout as logged on the device.
// Immutable once hashed; purged from the local buffer only after its
// weekly batch record is confirmed stored remotely.
type WorkoutSession struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	ExerciseID         string    `json:"exerciseId"`
	Date               time.Time `json:"date"`
	Reps               int       `json:"reps"`
	Sets               int       `json:"sets"`
	Weight             float64   `json:"weight"`
	WorkoutTimeMinutes int       `json:"workoutTimeMinutes"`
	EstimatedCalories  int       `json:"estimatedCalories"`
	Feedback           *Feedback `json:"userFeedback,omitempty"`
}

var ErrInvalidSession = errors.New("invalid workout session")

func (ws WorkoutSession) Validate() error {
	if ws.UserID == "" {
		return fmt.Errorf("%w: user id empty", ErrInvalidSession)
	}
	if ws.ExerciseID == "" {
		return fmt.Errorf("%w: exercise id empty", ErrInvalidSession)
	}
	if ws.Reps < 0 {
		return fmt.Errorf("%w: reps must be >= 0, got %d", ErrInvalidSession, ws.Reps)
	}
	if ws.Sets < 1 {
		return fmt.Errorf("%w: sets must be >= 1, got %d", ErrInvalidSession, ws.Sets)
	}
	if ws.Weight < 0 {
		return fmt.Errorf("%w: weight must be >= 0, got %f", ErrInvalidSession, ws.Weight)
	}
	if ws.WorkoutTimeMinutes <= 0 {
		return fmt.Errorf("%w: workout time must be > 0, got %d", ErrInvalidSession, ws.WorkoutTimeMinutes)
	}
	if ws.EstimatedCalories < 0 {
		return fmt.Errorf("%w: estimated calories must be >= 0, got %d", ErrInvalidSession, ws.EstimatedCalories)
	}
	if ws.Feedback != nil && !ws.Feedback.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFeedback, *ws.Feedback)
	}
	return nil
}

type HeartRateMetrics struct {
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
	Variance float64 `json:"variance"`
}

type SpO2Metrics struct {
	Avg   float64 `json:"avg"`
	Drift float64 `json:"drift"`
}

// HealthMetrics is the best-effort physiological reading for a workout
// window. Any of the fields (or the whole struct) may be absent; absent
// readings degrade to zero score contribution, never to an error.
type HealthMetrics struct {
	HeartRate  *HeartRateMetrics `json:"heartRate,omitempty"`
	SpO2       *SpO2Metrics      `json:"spo2,omitempty"`
	SleepScore *float64          `json:"sleepScore,omitempty"` // 0-20
}

func (hm *HealthMetrics) HRVariance() (float64, bool) {
	if hm == nil || hm.HeartRate == nil {
		return 0, false
	}
	return hm.HeartRate.Variance, true
}

func (hm *HealthMetrics) SpO2Drift() (float64, bool) {
	if hm == nil || hm.SpO2 == nil {
		return 0, false
	}
	return hm.SpO2.Drift, true
}

func (hm *HealthMetrics) Sleep() (float64, bool) {
	if hm == nil || hm.SleepScore == nil {
		return 0, false
	}
	return *hm.SleepScore, true
}
