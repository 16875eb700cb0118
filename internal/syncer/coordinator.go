package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/metrics"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
	"github.com/ItIsYeBananaduck/git-fit/internal/weekly"
)

// SyncState tracks where the device sits relative to the backend.
type SyncState string

const (
	StateOffline   SyncState = "offline"
	StateConnected SyncState = "connected"
	StateMigrating SyncState = "migrating"
	StateSteady    SyncState = "steady"
)

type connectivityProber interface {
	Ping(ctx context.Context) error
}

type triggerSource interface {
	Pending(ctx context.Context, userID string) ([]weekly.Trigger, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

type weeklyRunner interface {
	Run(ctx context.Context, userID string) (weekly.RunReport, error)
}

type userSource interface {
	Users() ([]string, error)
}

// Coordinator drives the offline-first lifecycle: probe connectivity with
// bounded retries, migrate the local backlog once connected, then settle
// into polling server-side sync triggers.
type Coordinator struct {
	prober   connectivityProber
	triggers triggerSource
	runner   weeklyRunner
	users    userSource
	metrics  *metrics.Manager

	pollInterval time.Duration
	maxProbeTime time.Duration

	mu    sync.RWMutex
	state SyncState
}

func NewCoordinator(
	prober connectivityProber,
	triggers triggerSource,
	runner weeklyRunner,
	users userSource,
	metricsManager *metrics.Manager,
	pollInterval time.Duration,
) *Coordinator {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Coordinator{
		prober:       prober,
		triggers:     triggers,
		runner:       runner,
		users:        users,
		metrics:      metricsManager,
		pollInterval: pollInterval,
		maxProbeTime: 5 * time.Minute,
		state:        StateOffline,
	}
}

func (c *Coordinator) State() SyncState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Coordinator) setState(state SyncState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != state {
		log.Debugf("sync state: %s -> %s", c.state, state)
		c.state = state
	}
}

// Connected reports whether the last probe reached the backend. Used by the
// sync status endpoint.
func (c *Coordinator) Connected(ctx context.Context) bool {
	if c.State() == StateOffline {
		return false
	}
	return c.prober.Ping(ctx) == nil
}

// Start blocks until ctx is done. Run it in its own goroutine.
func (c *Coordinator) Start(ctx context.Context) {
	for {
		if err := c.probe(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			// stay offline, sessions keep accumulating locally
			log.Warnf("backend unreachable, staying offline: %s", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.pollInterval):
				continue
			}
		}
		break
	}
	c.setState(StateConnected)

	if err := c.migrateBacklog(ctx); err != nil {
		log.Errorf("backlog migration incomplete: %s", err)
	}
	if ctx.Err() != nil {
		return
	}
	c.setState(StateSteady)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollTriggers(ctx)
		}
	}
}

func (c *Coordinator) probe(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxProbeTime
	return backoff.Retry(func() error {
		return c.prober.Ping(ctx)
	}, backoff.WithContext(bo, ctx))
}

// migrateBacklog drains everything buffered while offline. Partial failures
// are fine, retained sessions get retried on the next trigger or schedule.
func (c *Coordinator) migrateBacklog(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "syncer.migratebacklog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	c.setState(StateMigrating)

	users, err := c.users.Users()
	if err != nil {
		return fmt.Errorf("list buffered users: %w", err)
	}

	for _, userID := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report, err := c.runner.Run(ctx, userID)
		if err != nil {
			log.Errorf("migrate backlog for %s: %s", userID, err)
			continue
		}
		log.Infof("migrated backlog for %s: %d stored, %d retained",
			userID, report.Stored, report.Retained)
	}

	return nil
}

// pollTriggers runs one weekly cycle per pending trigger. Each trigger is
// acknowledged only after its run succeeded, so a crash mid-run leaves the
// remaining triggers pending.
func (c *Coordinator) pollTriggers(ctx context.Context) {
	users, err := c.users.Users()
	if err != nil {
		log.Errorf("poll triggers, list buffered users: %s", err)
		return
	}

	for _, userID := range users {
		pending, err := c.triggers.Pending(ctx, userID)
		if err != nil {
			log.Errorf("poll triggers for %s: %s", userID, err)
			continue
		}

		for _, trigger := range pending {
			if ctx.Err() != nil {
				return
			}
			if _, err := c.runner.Run(ctx, userID); err != nil {
				log.Errorf("trigger %s run for %s: %s", trigger.ID, userID, err)
				break
			}
			if err := c.triggers.MarkProcessed(ctx, trigger.ID); err != nil {
				log.Errorf("ack trigger %s: %s", trigger.ID, err)
				break
			}
			c.metrics.CounterTriggersProcessed.Inc()
		}
	}
}
