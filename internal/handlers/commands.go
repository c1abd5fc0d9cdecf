package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"commandant/internal/ledger"
	"commandant/internal/models"
	"commandant/internal/report"
	"commandant/internal/stats"
)

func (h *Handler) markStatus(ctx context.Context, ev Event, mode ledger.Mode, status models.Status) {
	user := userKey(ev)
	if err := h.Store.RememberName(ctx, user, ev.UserName); err != nil {
		h.Log.Warn().Err(err).Str("user", user).Msg("name update failed")
	}

	day, err := h.Store.Record(ctx, user, mode, status)
	switch {
	case errors.Is(err, ledger.ErrAlreadyRecorded):
		h.reply(ev, fmt.Sprintf(ackAlreadyRecorded, ev.UserName))
		return
	case errors.Is(err, ledger.ErrBadDate):
		h.reply(ev, ackBadDate)
		return
	case err != nil:
		h.Log.Error().Err(err).Str("user", user).Msg("record failed")
		h.reply(ev, ackStoreFailure)
		return
	}

	if status == models.StatusComplete {
		h.reply(ev, fmt.Sprintf(ackComplete, ev.UserName, day))
		return
	}
	h.reply(ev, fmt.Sprintf(ackIncomplete, ev.UserName, day))

	// Reactive nag: an incomplete mark may tip the user over the weekly
	// miss threshold.
	rec := h.Store.Snapshot()[user]
	now := h.Clock.Now().In(h.Cfg.Location)
	if stats.ExceedsThreshold(rec, now, h.Cfg.MaxWeeklyMisses) {
		h.reply(ev, report.Nag(ev.UserName, h.Cfg.MaxWeeklyMisses))
	}
}

// handleMark applies an explicit-date override: "!mark 2024-01-31" or
// "!mark 2024-01-31 incomplete".
func (h *Handler) handleMark(ctx context.Context, ev Event, text string) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		h.reply(ev, ackBadDate)
		return
	}
	status := models.StatusComplete
	if len(fields) >= 3 {
		switch fields[2] {
		case "complete":
		case "incomplete":
			status = models.StatusIncomplete
		default:
			h.reply(ev, ackBadStatus)
			return
		}
	}
	h.markStatus(ctx, ev, ledger.Explicit(fields[1]), status)
}

func (h *Handler) handleWeekly(ev Event) {
	snap := h.Store.Snapshot()
	h.reply(ev, report.Leaderboard(report.TitleWeekly, stats.WeekToDate(snap), h.Store.Meta(), h.Cfg.Bands))
}

func (h *Handler) handleMonthly(ev Event) {
	snap := h.Store.Snapshot()
	h.reply(ev, report.Leaderboard(report.TitleMonthly, stats.RollingN(snap, 30), h.Store.Meta(), h.Cfg.Bands))
}

func (h *Handler) handleAllTime(ev Event) {
	snap := h.Store.Snapshot()
	h.reply(ev, report.Leaderboard(report.TitleAllTime, stats.AllTime(snap), h.Store.Meta(), h.Cfg.Bands))
}

func (h *Handler) handleCheckTasks(ctx context.Context, ev Event) {
	if err := h.Runner.CheckTasks(ctx); err != nil {
		h.Log.Error().Err(err).Msg("manual task check failed")
		h.reply(ev, ackCheckFailed)
		return
	}
	h.reply(ev, ackCheckDone)
}
