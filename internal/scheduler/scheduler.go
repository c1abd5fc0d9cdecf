// Package scheduler drives the daily lifecycle, the Monday report and the
// nag job. Cadence comes from gocron; correctness comes from the persisted
// watermarks, so a missed tick is caught up on the next one and a duplicate
// tick is a no-op.
package scheduler

import (
	"context"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Start registers the recurring jobs and starts the scheduler. The caller
// shuts it down via the returned gocron.Scheduler.
func Start(r *Runner, clock clockwork.Clock, log zerolog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(r.cfg.Location),
		gocron.WithClock(clock),
	)
	if err != nil {
		return nil, err
	}

	// Hourly catch-up: the watermarks decide what actually runs.
	_, err = s.NewJob(
		gocron.DurationJob(r.cfg.CheckInterval),
		gocron.NewTask(func() {
			if err := r.CheckTasks(context.Background()); err != nil {
				log.Error().Err(err).Msg("scheduled task check failed")
			}
		}),
		gocron.WithName("check_tasks"),
	)
	if err != nil {
		return nil, err
	}

	// Daily nag at a fixed wall-clock hour in the reference timezone.
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(r.cfg.NagHour), 0, 0),
		)),
		gocron.NewTask(func() {
			if err := r.Nag(context.Background()); err != nil {
				log.Error().Err(err).Msg("nag job failed")
			}
		}),
		gocron.WithName("nag"),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}
