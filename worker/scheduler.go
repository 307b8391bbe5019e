package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

const (
	weeklyResetJob   = "weekly-experience-reset"
	modifierSweepJob = "modifier-sweep"
)

// Scheduler runs maintenance on a UTC calendar
type Scheduler struct {
	sched       gocron.Scheduler
	maintenance *Maintenance
	sweepEvery  time.Duration
}

func NewScheduler(maintenance *Maintenance, sweepEvery time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Hour
	}
	return &Scheduler{sched: sched, maintenance: maintenance, sweepEvery: sweepEvery}, nil
}

// Start registers the jobs and starts the scheduler. Both jobs also run
// once immediately so a reset missed while offline is caught up.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.sched.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Monday), gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(s.run(ctx, weeklyResetJob, s.maintenance.ResetWeekly)),
		gocron.WithName(weeklyResetJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", weeklyResetJob, err)
	}

	_, err = s.sched.NewJob(
		gocron.DurationJob(s.sweepEvery),
		gocron.NewTask(s.run(ctx, modifierSweepJob, s.maintenance.SweepModifiers)),
		gocron.WithName(modifierSweepJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", modifierSweepJob, err)
	}

	s.sched.Start()
	go s.run(ctx, weeklyResetJob, s.maintenance.ResetWeekly)()

	log.WithField("jobs", len(s.sched.Jobs())).Info("Maintenance scheduler started")
	return nil
}

// Shutdown stops the scheduler and waits for running jobs
func (s *Scheduler) Shutdown() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	log.Info("Maintenance scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, job func(context.Context) error) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		if err := job(ctx); err != nil {
			log.WithFields(log.Fields{
				"job":   name,
				"error": err,
			}).Error("Maintenance job failed")
		}
	}
}
