package weekly

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
	"github.com/ItIsYeBananaduck/git-fit/pkg"
)

// SubmitResult is the per-batch outcome of a submit call. A record that was
// already stored counts as stored: the storage boundary is idempotent and a
// resubmission is a no-op, not an error.
type SubmitResult struct {
	Stored int
	Total  int
	// Failed maps workout hash to the per-record error; failed records stay
	// in the local buffer for the next run.
	Failed map[string]error
}

func (r SubmitResult) FullSuccess() bool {
	return r.Stored == r.Total && len(r.Failed) == 0
}

// Err combines the per-record errors into one, for logging.
func (r SubmitResult) Err() error {
	var combined error
	for hash, err := range r.Failed {
		combined = multierr.Append(combined, fmt.Errorf("record %s: %w", hash, err))
	}
	return combined
}

// dbPool is the slice of pgxpool.Pool the repo uses.
type dbPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

type Repo struct {
	db dbPool
}

func NewRepo(db dbPool) *Repo {
	return &Repo{
		db: db,
	}
}

// Ping probes backend connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SubmitBatch stores the weekly batch records. Records are inserted one by
// one so a single bad record does not sink the whole batch; duplicates on
// (user_id, week_of_year, workout_hash) are absorbed silently.
func (r *Repo) SubmitBatch(ctx context.Context, records []BatchRecord) (_ SubmitResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weekly.submitbatch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("records", len(records)))

	result := SubmitResult{
		Total:  len(records),
		Failed: make(map[string]error),
	}

	for _, record := range records {
		if err := r.insertRecord(ctx, record); err != nil {
			result.Failed[record.WorkoutHash] = err
			continue
		}
		result.Stored++
	}

	span.SetAttributes(attribute.Int("stored", result.Stored))
	return result, nil
}

func (r *Repo) insertRecord(ctx context.Context, record BatchRecord) error {
	scoreJson, err := json.Marshal(record.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	metricsJson, err := json.Marshal(record.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	var healthJson []byte
	if record.Health != nil {
		if healthJson, err = json.Marshal(record.Health); err != nil {
			return fmt.Errorf("marshal health: %w", err)
		}
	}
	var feedback *string
	if record.Feedback != nil {
		f := record.Feedback.String()
		feedback = &f
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO weekly_batch_record
				(user_id, week_of_year, workout_hash, total_score, score, adjust_volume,
				 adjustment_percent, flag_for_review, default_progression, weight_increment,
				 workout_metrics, health_data, user_feedback, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (user_id, week_of_year, workout_hash) DO NOTHING;`,
		record.UserID, record.WeekOfYear, record.WorkoutHash,
		record.Score.Total, scoreJson,
		record.Decision.Adjustment.AdjustVolume,
		record.Decision.Adjustment.AdjustmentPercent,
		record.Decision.Adjustment.FlagForReview,
		record.Decision.DefaultProgression,
		record.Decision.WeightIncrement,
		metricsJson, healthJson, feedback, time.Now(),
	)
	if pkg.IsUniqueViolationError(err) {
		// concurrent resubmit raced past the conflict target, same outcome
		return nil
	}
	return err
}

// ListWeek returns the stored records of one user week, newest first.
func (r *Repo) ListWeek(ctx context.Context, userID, weekOfYear string) (_ []BatchRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weekly.listweek")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))
	span.SetAttributes(attribute.String("week_of_year", weekOfYear))

	rows, err := r.db.Query(
		ctx,
		`SELECT
				user_id, week_of_year, workout_hash, score, adjust_volume,
				adjustment_percent, flag_for_review, default_progression,
				weight_increment, workout_metrics, health_data, user_feedback, created_at
			FROM weekly_batch_record
			WHERE user_id = $1 AND week_of_year = $2
			ORDER BY created_at DESC;`,
		userID, weekOfYear,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return r.rows2records(rows)
}

func (r *Repo) rows2records(rows pgx.Rows) ([]BatchRecord, error) {
	var records []BatchRecord
	for rows.Next() {
		var record BatchRecord
		var scoreBytes, metricsBytes, healthBytes []byte
		var feedback *string

		if err := rows.Scan(
			&record.UserID, &record.WeekOfYear, &record.WorkoutHash,
			&scoreBytes,
			&record.Decision.Adjustment.AdjustVolume,
			&record.Decision.Adjustment.AdjustmentPercent,
			&record.Decision.Adjustment.FlagForReview,
			&record.Decision.DefaultProgression,
			&record.Decision.WeightIncrement,
			&metricsBytes, &healthBytes, &feedback, &record.CreatedAt,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(scoreBytes, &record.Score); err != nil {
			return nil, fmt.Errorf("unmarshal score for %s: %w", record.WorkoutHash, err)
		}
		if err := json.Unmarshal(metricsBytes, &record.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics for %s: %w", record.WorkoutHash, err)
		}
		if len(healthBytes) > 0 {
			if err := json.Unmarshal(healthBytes, &record.Health); err != nil {
				return nil, fmt.Errorf("unmarshal health for %s: %w", record.WorkoutHash, err)
			}
		}
		if feedback != nil {
			f, err := intensity.ParseFeedback(*feedback)
			if err != nil {
				return nil, fmt.Errorf("parse feedback for %s: %w", record.WorkoutHash, err)
			}
			record.Feedback = &f
		}

		records = append(records, record)
	}

	if records == nil {
		records = make([]BatchRecord, 0)
	}
	return records, nil
}
