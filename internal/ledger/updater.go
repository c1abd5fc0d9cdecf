package ledger

import (
	"context"
	"fmt"
	"sort"

	"commandant/internal/dates"
	"commandant/internal/models"
)

// Mode selects which day a status report applies to.
type Mode struct {
	kind modeKind
	date string
}

type modeKind int

const (
	modeLatest modeKind = iota
	modePrevious
	modeExplicit
)

// Latest targets the most recent pending day, or the effective today when no
// pending day exists. It never overwrites a day that was already decided.
func Latest() Mode { return Mode{kind: modeLatest} }

// Previous targets yesterday unconditionally, overwriting whatever is there.
func Previous() Mode { return Mode{kind: modePrevious} }

// Explicit targets a literal YYYY-MM-DD day and overwrites unconditionally.
// This is the administrative escape hatch past the immutability rule.
func Explicit(date string) Mode { return Mode{kind: modeExplicit, date: date} }

// Record applies a completion/incompletion report for user and returns the
// day it landed on. The ledger is persisted before Record returns; on any
// error the in-memory ledger is untouched.
func (s *Store) Record(ctx context.Context, user string, mode Mode, status models.Status) (string, error) {
	if status != models.StatusComplete && status != models.StatusIncomplete {
		return "", fmt.Errorf("ledger: cannot record status %q", status)
	}
	if mode.kind == modeExplicit {
		if _, err := dates.Parse(mode.date); err != nil {
			return "", fmt.Errorf("%w: %q", ErrBadDate, mode.date)
		}
	}

	var applied string
	err := s.updateLedger(ctx, func(l models.Ledger) (bool, error) {
		rec := l[user]
		if rec == nil {
			rec = models.DayRecord{}
			l[user] = rec
		}

		target, err := s.resolveTarget(rec, mode)
		if err != nil {
			return false, err
		}
		applied = target
		if rec[target] == status {
			return false, nil
		}
		rec[target] = status
		return true, nil
	})
	if err != nil {
		return "", err
	}
	s.opts.Log.Info().Str("user", user).Str("day", applied).Str("status", string(status)).Msg("status recorded")
	return applied, nil
}

func (s *Store) resolveTarget(rec models.DayRecord, mode Mode) (string, error) {
	now := s.now()
	switch mode.kind {
	case modePrevious:
		return dates.Day(now.AddDate(0, 0, -1)), nil
	case modeExplicit:
		return mode.date, nil
	default:
		if day, ok := latestPending(rec); ok {
			return day, nil
		}
		day := dates.Effective(now, s.opts.CutoverHour)
		if st, exists := rec[day]; exists && !st.Pending() {
			return "", fmt.Errorf("%w: %s is already %s", ErrAlreadyRecorded, day, st)
		}
		return day, nil
	}
}

// latestPending scans the user's days newest-first for a pending slot.
func latestPending(rec models.DayRecord) (string, bool) {
	days := make([]string, 0, len(rec))
	for d := range rec {
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	for _, d := range days {
		if rec[d].Pending() {
			return d, true
		}
	}
	return "", false
}
