package weekly

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ItIsYeBananaduck/git-fit/internal/healthmetrics"
	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/metrics"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=processor_mocks_test.go -package=weekly_test

// State names the stage a weekly run is in. A run ends in either Purged
// (everything stored, local copies gone) or Retained (something failed and
// the affected sessions wait for the next run).
type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
	StateScoring    State = "scoring"
	StateHashing    State = "hashing"
	StateSubmitting State = "submitting"
	StatePurged     State = "purged"
	StateRetained   State = "retained"
)

type batchRepo interface {
	SubmitBatch(ctx context.Context, records []BatchRecord) (SubmitResult, error)
}

type sessionBuffer interface {
	Sessions(userID string) ([]intensity.WorkoutSession, error)
	Remove(userID string, sessionIDs []string) error
	SetLastProcessed(userID string, t time.Time) error
}

type summaryCache interface {
	Set(ctx context.Context, summary DisplaySummary) error
}

// RunReport is the outcome of one weekly run for one user.
type RunReport struct {
	State      State
	WeekOfYear string
	Processed  int
	Stored     int
	Retained   int
	Summary    *DisplaySummary
}

// Processor runs the weekly pipeline for one user at a time: collect
// buffered sessions, attach health metrics, score, decide, hash, submit,
// then purge or retain.
type Processor struct {
	repo      batchRepo
	buf       sessionBuffer
	summaries summaryCache
	collector healthmetrics.Collector

	scorer   *intensity.Scorer
	rules    *intensity.RuleEngine
	metrics  *metrics.Manager
	location *time.Location

	collectTimeout time.Duration
	now            func() time.Time
}

type ProcessorOption func(*Processor)

func WithNowFunc(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.now = now
	}
}

func WithCollectTimeout(timeout time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.collectTimeout = timeout
	}
}

func NewProcessor(
	repo batchRepo,
	buf sessionBuffer,
	summaries summaryCache,
	collector healthmetrics.Collector,
	metricsManager *metrics.Manager,
	location *time.Location,
	opts ...ProcessorOption,
) *Processor {
	if location == nil {
		location = time.UTC
	}
	p := &Processor{
		repo:           repo,
		buf:            buf,
		summaries:      summaries,
		collector:      collector,
		scorer:         intensity.NewScorer(),
		rules:          intensity.NewRuleEngine(),
		metrics:        metricsManager,
		location:       location,
		collectTimeout: healthmetrics.DefaultCollectTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one weekly cycle for the user. The local buffer is purged
// only for sessions whose records definitely reached the backend; on any
// failure the affected sessions stay buffered and the next run retries them.
func (p *Processor) Run(ctx context.Context, userID string) (_ RunReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "processor.weekly.run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	runStart := p.now()
	defer func() {
		p.metrics.HistBatchRunDuration.Observe(time.Since(runStart).Seconds())
	}()

	weekOfYear := ISOWeek(runStart, p.location)
	report := RunReport{State: StateCollecting, WeekOfYear: weekOfYear}

	sessions, err := p.buf.Sessions(userID)
	if err != nil {
		p.metrics.CounterWeeklyRuns.WithLabelValues("error").Inc()
		return report, fmt.Errorf("collect sessions: %w", err)
	}
	if len(sessions) == 0 {
		report.State = StateIdle
		p.metrics.CounterWeeklyRuns.WithLabelValues("idle").Inc()
		return report, nil
	}
	report.Processed = len(sessions)

	records, retainedIDs := p.buildRecords(ctx, userID, weekOfYear, sessions, &report)

	if len(records) == 0 {
		// every session failed hashing, nothing to submit
		report.State = StateRetained
		report.Retained = len(sessions)
		p.metrics.CounterWeeklyRuns.WithLabelValues("retained").Inc()
		return report, nil
	}

	report.State = StateSubmitting
	result, err := p.repo.SubmitBatch(ctx, records)
	if err != nil {
		report.State = StateRetained
		report.Retained = len(sessions)
		p.metrics.CounterWeeklyRuns.WithLabelValues("error").Inc()
		return report, fmt.Errorf("submit batch: %w", err)
	}

	p.metrics.CounterRecordsSubmitted.Add(float64(result.Stored))
	p.metrics.CounterRecordsFailed.Add(float64(len(result.Failed)))
	if submitErr := result.Err(); submitErr != nil {
		log.Errorf("weekly run for %s: %d of %d records failed: %s",
			userID, len(result.Failed), result.Total, submitErr)
	}

	var purgeIDs []string
	for _, record := range records {
		if _, failed := result.Failed[record.WorkoutHash]; failed {
			retainedIDs = append(retainedIDs, record.sessionID)
			continue
		}
		purgeIDs = append(purgeIDs, record.sessionID)
	}

	if len(purgeIDs) > 0 {
		if err := p.buf.Remove(userID, purgeIDs); err != nil {
			// stored records are deduplicated on resubmit, so a purge
			// failure is retried next run without double-counting
			log.Errorf("weekly run for %s: purge %d sessions: %s", userID, len(purgeIDs), err)
			retainedIDs = append(retainedIDs, purgeIDs...)
		}
	}

	report.Stored = result.Stored
	report.Retained = len(retainedIDs)

	if report.Retained > 0 {
		report.State = StateRetained
		p.metrics.CounterWeeklyRuns.WithLabelValues("retained").Inc()
		return report, nil
	}

	if err := p.buf.SetLastProcessed(userID, runStart); err != nil {
		log.Errorf("weekly run for %s: set last processed: %s", userID, err)
	}

	summary := p.buildSummary(userID, weekOfYear, records)
	if err := p.summaries.Set(ctx, summary); err != nil {
		// the summary is a cache, the authoritative records are stored
		log.Errorf("weekly run for %s: cache summary: %s", userID, err)
	}
	report.Summary = &summary

	report.State = StatePurged
	p.metrics.CounterWeeklyRuns.WithLabelValues("purged").Inc()
	return report, nil
}

// buildRecords walks Collecting -> Scoring -> Hashing for each session. A
// session whose record cannot be hashed is retained as-is, it is never
// submitted with a placeholder hash.
func (p *Processor) buildRecords(
	ctx context.Context,
	userID, weekOfYear string,
	sessions []intensity.WorkoutSession,
	report *RunReport,
) (records []BatchRecord, retainedIDs []string) {
	for _, session := range sessions {
		report.State = StateScoring
		// day boundaries in the configured location, same as the ISO week
		day := session.Date.In(p.location)
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, p.location)
		health := healthmetrics.CollectBestEffort(ctx, p.collector, healthmetrics.Window{
			UserID: userID,
			From:   dayStart,
			To:     dayStart.Add(24 * time.Hour),
		}, p.collectTimeout)

		score := p.scorer.Score(session, health)
		strain := intensity.EstimateStrain(session, health)
		decision := p.rules.Decide(score, strain, session, health)

		report.State = StateHashing
		hash, err := intensity.HashRecord(session, score.Total)
		if err != nil {
			log.Errorf("weekly run for %s: hash session %s: %s", userID, session.ID, err)
			retainedIDs = append(retainedIDs, session.ID)
			continue
		}

		records = append(records, NewBatchRecord(session, health, score, decision, hash, weekOfYear))
	}
	return records, retainedIDs
}

func (p *Processor) buildSummary(userID, weekOfYear string, records []BatchRecord) DisplaySummary {
	var (
		scoreSum      float64
		sleepSum      float64
		sleepSamples  int
		weightDelta   float64
		adjustmentPct float64
		flagged       bool
	)
	for _, record := range records {
		scoreSum += record.Score.Total
		if record.Health != nil {
			if sleep, ok := record.Health.Sleep(); ok {
				sleepSum += sleep
				sleepSamples++
			}
		}
		if record.Decision.DefaultProgression {
			weightDelta += record.Decision.WeightIncrement
		}
		if record.Decision.Adjustment.AdjustVolume {
			adjustmentPct += record.Decision.Adjustment.AdjustmentPercent
		}
		if record.Decision.Adjustment.FlagForReview {
			flagged = true
		}
	}

	summary := DisplaySummary{
		UserID:      userID,
		WeekOfYear:  weekOfYear,
		AvgScore:    scoreSum / float64(len(records)),
		WeightDelta: weightDelta,
		GeneratedAt: p.now(),
	}
	if sleepSamples > 0 {
		// sleep quality points map onto nightly hours, 15 points ~ 8h
		summary.SleepHours = (sleepSum / float64(sleepSamples)) * 8 / 15
	}
	if adjustmentPct != 0 {
		summary.AdjustmentPct = adjustmentPct / float64(len(records))
	}
	summary.FlaggedForReview = flagged
	summary.Recommendation = recommendation(summary)

	return summary
}

func recommendation(s DisplaySummary) string {
	switch {
	case s.FlaggedForReview:
		return "some sessions look off, worth a closer look before adding weight"
	case s.AdjustmentPct < 0:
		return fmt.Sprintf("ease off next week, volume adjusted by %.1f%%", s.AdjustmentPct)
	case s.WeightDelta > 0:
		return fmt.Sprintf("solid week, progress by %.1f weight units", s.WeightDelta)
	default:
		return "hold steady next week"
	}
}
