// Package scheduler runs the background snapshot job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. A Scheduler with no schedule is inert.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Scheduler. Jobs are skipped when the previous run of the
// same job is still going.
func New(timeout time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{log}),
			cron.SkipIfStillRunning(cronLogger{log}),
		)),
		timeout: timeout,
		log:     log,
	}
}

// Add registers job under name on a standard five-field cron schedule.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			return
		}
		s.log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job finished")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, name, err)
	}
	s.log.Info().Str("job", name).Str("schedule", schedule).Msg("job scheduled")
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stopped before jobs finished")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
