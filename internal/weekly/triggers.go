package weekly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
)

var ErrTriggerNotFound = errors.New("trigger not found")

// Trigger is a server-side request for a device to run weekly processing
// outside the regular schedule. Each trigger is acknowledged individually so
// a crash mid-run never loses the remaining ones.
type Trigger struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId"`
	WeekOfYear string    `json:"weekOfYear"`
	CreatedAt  time.Time `json:"createdAt"`
}

type TriggerRepo struct {
	db *pgxpool.Pool
}

func NewTriggerRepo(db *pgxpool.Pool) *TriggerRepo {
	return &TriggerRepo{
		db: db,
	}
}

func (r *TriggerRepo) Create(ctx context.Context, userID, weekOfYear string) (_ Trigger, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.triggers.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	trigger := Trigger{
		ID:         uuid.New(),
		UserID:     userID,
		WeekOfYear: weekOfYear,
		CreatedAt:  time.Now(),
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO sync_trigger (id, user_id, week_of_year, created_at)
			VALUES ($1, $2, $3, $4);`,
		trigger.ID, trigger.UserID, trigger.WeekOfYear, trigger.CreatedAt,
	)
	if err != nil {
		return Trigger{}, fmt.Errorf("insert trigger: %w", err)
	}

	return trigger, nil
}

// Pending returns the unprocessed triggers of one user, oldest first.
func (r *TriggerRepo) Pending(ctx context.Context, userID string) (_ []Trigger, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.triggers.pending")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, week_of_year, created_at
			FROM sync_trigger
			WHERE user_id = $1 AND processed_at IS NULL
			ORDER BY created_at ASC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	triggers := make([]Trigger, 0)
	for rows.Next() {
		var t Trigger
		if err := rows.Scan(&t.ID, &t.UserID, &t.WeekOfYear, &t.CreatedAt); err != nil {
			return nil, err
		}
		triggers = append(triggers, t)
	}

	return triggers, nil
}

// MarkProcessed acknowledges a single trigger after its run succeeded.
func (r *TriggerRepo) MarkProcessed(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.triggers.markprocessed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE sync_trigger SET processed_at = $1 WHERE id = $2 AND processed_at IS NULL;`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update trigger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trigger %s: %w", id, ErrTriggerNotFound)
	}

	return nil
}
