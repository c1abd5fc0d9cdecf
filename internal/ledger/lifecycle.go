package ledger

import (
	"context"

	"commandant/internal/dates"
	"commandant/internal/models"
)

// DailyInit ensures every known user has a pending slot for today. Returns
// whether anything was added; when nothing was, no write happens, so running
// it again on the same day is free.
func (s *Store) DailyInit(ctx context.Context) (bool, error) {
	today := dates.Day(s.now())
	changed := false
	err := s.updateLedger(ctx, func(l models.Ledger) (bool, error) {
		changed = false // fn may rerun after a version conflict
		for _, rec := range l {
			if _, exists := rec[today]; !exists {
				rec[today] = models.StatusPending
				changed = true
			}
		}
		return changed, nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.opts.Log.Info().Str("day", today).Msg("daily init: pending slots created")
	}
	return changed, nil
}

// DailyFinalize marks yesterday's still-pending slots as incomplete. Days
// already decided are never touched. Returns how many slots were finalized.
func (s *Store) DailyFinalize(ctx context.Context) (int, error) {
	yesterday := dates.Day(s.now().AddDate(0, 0, -1))
	finalized := 0
	err := s.updateLedger(ctx, func(l models.Ledger) (bool, error) {
		finalized = 0 // fn may rerun after a version conflict
		for _, rec := range l {
			if st, exists := rec[yesterday]; exists && st.Pending() {
				rec[yesterday] = models.StatusIncomplete
				finalized++
			}
		}
		return finalized > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if finalized > 0 {
		s.opts.Log.Info().Str("day", yesterday).Int("finalized", finalized).Msg("daily finalize: pending marked incomplete")
	}
	return finalized, nil
}
