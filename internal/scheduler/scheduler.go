package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"

	"github.com/ItIsYeBananaduck/git-fit/internal/weekly"
)

type weeklyRunner interface {
	Run(ctx context.Context, userID string) (weekly.RunReport, error)
}

type bufferedUsers interface {
	Users() ([]string, error)
	LastProcessed(userID string) (*time.Time, error)
}

// Scheduler fires the weekly processing run on a cron spec, evaluated in
// the configured timezone so device travel never shifts the week boundary.
type Scheduler struct {
	runner   weeklyRunner
	users    bufferedUsers
	location *time.Location
	cronSpec string

	c   *cron.Cron
	now func() time.Time
}

func New(
	runner weeklyRunner,
	users bufferedUsers,
	location *time.Location,
	cronSpec string,
) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		runner:   runner,
		users:    users,
		location: location,
		cronSpec: cronSpec,
		now:      time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.c = cron.NewWithLocation(s.location)
	if err := s.c.AddFunc(s.cronSpec, func() {
		s.RunAll(ctx)
	}); err != nil {
		return fmt.Errorf("add cron func [%s]: %w", s.cronSpec, err)
	}
	s.c.Start()
	log.Debugf("weekly scheduler started [%s] in %s", s.cronSpec, s.location)
	return nil
}

func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

// RunAll processes every buffered user, skipping those whose backlog was
// already handled this week by a trigger or an on-demand run.
func (s *Scheduler) RunAll(ctx context.Context) {
	users, err := s.users.Users()
	if err != nil {
		log.Errorf("weekly schedule, list buffered users: %s", err)
		return
	}

	currentWeek := weekly.ISOWeek(s.now(), s.location)
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}

		processed, err := s.alreadyProcessed(userID, currentWeek)
		if err != nil {
			log.Errorf("weekly schedule for %s: %s", userID, err)
			continue
		}
		if processed {
			log.Debugf("weekly schedule for %s: %s already processed, skipping", userID, currentWeek)
			continue
		}

		report, err := s.runner.Run(ctx, userID)
		if err != nil {
			log.Errorf("weekly schedule run for %s: %s", userID, err)
			continue
		}
		log.Infof("weekly schedule run for %s: %s, %d stored, %d retained",
			userID, report.State, report.Stored, report.Retained)
	}
}

func (s *Scheduler) alreadyProcessed(userID, currentWeek string) (bool, error) {
	lastProcessed, err := s.users.LastProcessed(userID)
	if err != nil {
		return false, fmt.Errorf("get last processed: %w", err)
	}
	if lastProcessed == nil {
		return false, nil
	}
	return weekly.ISOWeek(*lastProcessed, s.location) == currentWeek, nil
}
