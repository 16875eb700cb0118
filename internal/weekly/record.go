package weekly

import (
	"fmt"
	"time"

	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
)

// WorkoutMetrics is the aggregated, non-reversible view of a workout that is
// stored alongside the content hash. The raw session itself stays on-device.
type WorkoutMetrics struct {
	Reps        int     `json:"reps"`
	Sets        int     `json:"sets"`
	Weight      float64 `json:"weight"`
	TimeMinutes int     `json:"timeMinutes"`
	Calories    int     `json:"calories"`
}

// BatchRecord is the unit of durable storage for one processed workout.
// Keyed by (userID, weekOfYear, workoutHash) for idempotency: resubmitting
// an already-stored record is a no-op.
type BatchRecord struct {
	UserID      string                   `json:"userId"`
	WeekOfYear  string                   `json:"weekOfYear"`
	WorkoutHash string                   `json:"workoutHash"`
	Score       intensity.Score          `json:"intensityScore"`
	Decision    intensity.Decision       `json:"adjustment"`
	Metrics     WorkoutMetrics           `json:"workoutMetrics"`
	Health      *intensity.HealthMetrics `json:"healthData,omitempty"`
	Feedback    *intensity.Feedback      `json:"userFeedback,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`

	// sessionID ties the record back to its buffered session for the purge
	// step; it is never sent to the backend
	sessionID string
}

func NewBatchRecord(
	session intensity.WorkoutSession,
	health *intensity.HealthMetrics,
	score intensity.Score,
	decision intensity.Decision,
	workoutHash string,
	weekOfYear string,
) BatchRecord {
	return BatchRecord{
		UserID:      session.UserID,
		WeekOfYear:  weekOfYear,
		WorkoutHash: workoutHash,
		Score:       score,
		Decision:    decision,
		Metrics: WorkoutMetrics{
			Reps:        session.Reps,
			Sets:        session.Sets,
			Weight:      session.Weight,
			TimeMinutes: session.WorkoutTimeMinutes,
			Calories:    session.EstimatedCalories,
		},
		Health:    health,
		Feedback:  session.Feedback,
		sessionID: session.ID,
	}
}

// ISOWeek renders the timezone-aware ISO week key, e.g. "2026-W35".
func ISOWeek(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// DisplaySummary is what flows back to the UI collaborator after a weekly
// run: the headline score plus the next-week recommendation.
type DisplaySummary struct {
	UserID           string    `json:"userId"`
	WeekOfYear       string    `json:"weekOfYear"`
	AvgScore         float64   `json:"avgScore"`
	SleepHours       float64   `json:"sleepHours"`
	WeightDelta      float64   `json:"weightDelta"`
	AdjustmentPct    float64   `json:"adjustmentPercent"`
	FlaggedForReview bool      `json:"flaggedForReview"`
	Recommendation   string    `json:"recommendation"`
	GeneratedAt      time.Time `json:"generatedAt"`
}
