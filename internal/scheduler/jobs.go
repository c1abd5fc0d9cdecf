package scheduler

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"commandant/internal/dates"
	"commandant/internal/ledger"
	"commandant/internal/metrics"
	"commandant/internal/models"
	"commandant/internal/report"
	"commandant/internal/stats"
)

// Notifier sends a message into a named channel.
type Notifier interface {
	Send(channel, text string) error
}

// jobState is the per-job machine: Idle until the watermark says the job is
// owed, Due while running, Ran once the watermark advanced.
type jobState int

const (
	stateIdle jobState = iota
	stateDue
	stateRan
)

func (s jobState) String() string {
	switch s {
	case stateDue:
		return "due"
	case stateRan:
		return "ran"
	default:
		return "idle"
	}
}

type job struct {
	name      string
	watermark ledger.Watermark
	state     jobState
	eligible  func(meta models.Meta, today string) bool
	run       func(ctx context.Context, today string) error
}

// Config carries the scheduler knobs.
type Config struct {
	Location           *time.Location
	CheckInterval      time.Duration
	NagHour            int
	MaxWeeklyMisses    int
	Bands              stats.Bands
	LeaderboardChannel string
	GoalsChannel       string
}

// Runner evaluates the watermark-gated jobs. One CheckTasks pass re-reads the
// persisted watermarks first, so a job already run elsewhere (another
// process, a manual trigger) is simply skipped.
type Runner struct {
	store  *ledger.Store
	notify Notifier
	clock  clockwork.Clock
	cfg    Config
	log    zerolog.Logger
	jobs   []*job
}

// NewRunner wires the three watermark-gated jobs.
func NewRunner(store *ledger.Store, notify Notifier, clock clockwork.Clock, cfg Config, log zerolog.Logger) *Runner {
	r := &Runner{store: store, notify: notify, clock: clock, cfg: cfg, log: log}
	r.jobs = []*job{
		{
			name:      "daily_init",
			watermark: ledger.WatermarkDailyInit,
			eligible: func(m models.Meta, today string) bool {
				return m.LastDailyInit != today
			},
			run: func(ctx context.Context, _ string) error {
				_, err := store.DailyInit(ctx)
				return err
			},
		},
		{
			name:      "daily_finalize",
			watermark: ledger.WatermarkDailyFinalize,
			eligible: func(m models.Meta, today string) bool {
				return m.LastDailyFinalize != today
			},
			run: func(ctx context.Context, _ string) error {
				_, err := store.DailyFinalize(ctx)
				return err
			},
		},
		{
			name:      "weekly_report",
			watermark: ledger.WatermarkWeeklyReport,
			eligible: func(m models.Meta, today string) bool {
				return dates.IsMonday(today) && m.LastWeeklyReport < today
			},
			run: func(ctx context.Context, _ string) error {
				return r.sendWeeklyReport()
			},
		},
	}
	return r
}

// CheckTasks drives every job through its state machine once. Errors from
// individual jobs are joined; one failing job does not block the others.
func (r *Runner) CheckTasks(ctx context.Context) error {
	today := dates.Day(r.clock.Now().In(r.cfg.Location))
	meta, err := r.store.RefreshMeta(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, j := range r.jobs {
		if !j.eligible(meta, today) {
			j.state = stateIdle
			continue
		}
		j.state = stateDue
		r.log.Info().Str("job", j.name).Str("day", today).Msg("job due")

		if err := j.run(ctx, today); err != nil {
			metrics.JobRuns.WithLabelValues(j.name, "error").Inc()
			r.log.Error().Err(err).Str("job", j.name).Msg("job failed")
			j.state = stateIdle
			errs = append(errs, err)
			continue
		}
		if err := r.store.AdvanceWatermark(ctx, j.watermark, today); err != nil {
			metrics.JobRuns.WithLabelValues(j.name, "error").Inc()
			r.log.Error().Err(err).Str("job", j.name).Msg("watermark advance failed")
			j.state = stateIdle
			errs = append(errs, err)
			continue
		}
		metrics.JobRuns.WithLabelValues(j.name, "ok").Inc()
		j.state = stateRan
		r.log.Info().Str("job", j.name).Str("day", today).Msg("job ran")
	}
	return errors.Join(errs...)
}

func (r *Runner) sendWeeklyReport() error {
	snap := r.store.Snapshot()
	meta := r.store.Meta()
	text := report.Leaderboard(report.TitleWeeklyAllTime, stats.AllTime(snap), meta, r.cfg.Bands)
	return r.notify.Send(r.cfg.LeaderboardChannel, text)
}

// Nag scans every user and calls out the ones past the weekly miss threshold
// in the goals channel. It carries no watermark: repeating it only repeats a
// message.
func (r *Runner) Nag(ctx context.Context) error {
	now := r.clock.Now().In(r.cfg.Location)
	snap := r.store.Snapshot()
	meta := r.store.Meta()

	users := make([]string, 0, len(snap))
	for u := range snap {
		users = append(users, u)
	}
	sort.Strings(users)

	var errs []error
	for _, u := range users {
		if !stats.ExceedsThreshold(snap[u], now, r.cfg.MaxWeeklyMisses) {
			continue
		}
		msg := report.Nag(meta.DisplayName(u), r.cfg.MaxWeeklyMisses)
		if err := r.notify.Send(r.cfg.GoalsChannel, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
