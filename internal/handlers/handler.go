// Package handlers routes inbound chat events to the ledger and the
// aggregator, and formats the replies. It sees the platform only as an
// (author, channel, text) event plus a Sender for replies.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"commandant/internal/ledger"
	"commandant/internal/metrics"
	"commandant/internal/models"
	"commandant/internal/stats"
)

// Event is one inbound chat message, reduced to what the core needs.
type Event struct {
	UserID   string // stable platform id, the ledger key
	UserName string // display name, render-only
	Channel  string
	Text     string
}

// Sender delivers a reply into a named channel.
type Sender interface {
	Send(channel, text string) error
}

// TaskRunner is the manual-trigger seam into the scheduler.
type TaskRunner interface {
	CheckTasks(ctx context.Context) error
}

// Config carries the handler knobs.
type Config struct {
	EvidenceChannel string
	MaxWeeklyMisses int
	Bands           stats.Bands
	Location        *time.Location
}

// Handler dispatches events. All ledger writes go through the store, which
// serializes them; the handler itself keeps no state.
type Handler struct {
	Store  *ledger.Store
	Runner TaskRunner
	Out    Sender
	Clock  clockwork.Clock
	Cfg    Config
	Log    zerolog.Logger
}

// Handle routes one event. Unknown text is ignored, matching the original
// bot's keyword-driven surface.
func (h *Handler) Handle(ctx context.Context, ev Event) {
	text := strings.ToLower(strings.TrimSpace(ev.Text))
	if text == "" {
		return
	}

	inEvidence := ev.Channel == h.Cfg.EvidenceChannel
	switch {
	case inEvidence && isCompletePhrase(text):
		h.count("complete")
		h.markStatus(ctx, ev, ledger.Latest(), models.StatusComplete)
	case inEvidence && isIncompletePhrase(text):
		h.count("incomplete")
		h.markStatus(ctx, ev, ledger.Latest(), models.StatusIncomplete)
	case inEvidence && strings.HasPrefix(text, "!prev"):
		h.count("prev")
		h.markStatus(ctx, ev, ledger.Previous(), models.StatusComplete)
	case inEvidence && strings.HasPrefix(text, "!mark"):
		h.count("mark")
		h.handleMark(ctx, ev, text)
	case strings.HasPrefix(text, "!weekly"):
		h.count("weekly")
		h.handleWeekly(ev)
	case strings.HasPrefix(text, "!monthly"):
		h.count("monthly")
		h.handleMonthly(ev)
	case strings.HasPrefix(text, "!alltime"):
		h.count("alltime")
		h.handleAllTime(ev)
	case strings.HasPrefix(text, "!check-tasks"):
		h.count("check-tasks")
		h.handleCheckTasks(ctx, ev)
	case strings.HasPrefix(text, "!help"):
		h.count("help")
		h.reply(ev, helpText)
	}
}

func isCompletePhrase(text string) bool {
	return strings.Contains(text, "goals complete") || strings.Contains(text, "goals completed")
}

func isIncompletePhrase(text string) bool {
	return strings.Contains(text, "goals incomplete") || strings.Contains(text, "goals failed")
}

// userKey is the ledger key for the author: the platform id, with the
// display name as a last resort for platforms that hide ids.
func userKey(ev Event) string {
	if ev.UserID != "" {
		return ev.UserID
	}
	return ev.UserName
}

func (h *Handler) reply(ev Event, text string) {
	if err := h.Out.Send(ev.Channel, text); err != nil {
		h.Log.Error().Err(err).Str("channel", ev.Channel).Msg("reply failed")
	}
}

func (h *Handler) count(command string) {
	metrics.CommandsTotal.WithLabelValues(command).Inc()
}
