// Package ledger owns the goal-status history and is the only writer to it.
// Every mutation is serialized behind one mutex and follows the same shape:
// re-fetch the freshest snapshot, apply the change to a copy, save with the
// version token, and only then adopt the copy in memory. A failed save
// therefore never leaves the in-memory state ahead of the store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"commandant/internal/metrics"
	"commandant/internal/models"
	"commandant/internal/storage"
)

var (
	// ErrAlreadyRecorded means the resolved day already carries a final
	// status and the mode does not overwrite.
	ErrAlreadyRecorded = errors.New("ledger: day already recorded")

	// ErrBadDate means an explicit date did not parse as YYYY-MM-DD.
	ErrBadDate = errors.New("ledger: bad date")
)

// Watermark names the per-job last-run markers in the meta document.
type Watermark string

const (
	WatermarkDailyInit     Watermark = "daily_init"
	WatermarkDailyFinalize Watermark = "daily_finalize"
	WatermarkWeeklyReport  Watermark = "weekly_report"
)

// Options configure a Store.
type Options struct {
	LedgerKey    string
	MetaKey      string
	Location     *time.Location
	CutoverHour  int
	StoreTimeout time.Duration
	Clock        clockwork.Clock
	Log          zerolog.Logger
}

// Store holds the in-memory ledger and meta documents plus their version
// tokens, and persists through a storage.Client.
type Store struct {
	mu   sync.Mutex
	docs storage.Client
	opts Options

	ledger      models.Ledger
	ledgerToken string
	meta        models.Meta
	metaToken   string
}

// New builds a Store. Call Bootstrap before first use.
func New(docs storage.Client, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.StoreTimeout == 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	return &Store{
		docs:   docs,
		opts:   opts,
		ledger: models.Ledger{},
	}
}

// Bootstrap loads both documents. A missing document is an empty one.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshLedgerLocked(ctx); err != nil {
		return err
	}
	return s.refreshMetaLocked(ctx)
}

// Snapshot returns a copy of the last-loaded ledger. Aggregation reads this
// without a store round trip; a few seconds of staleness is fine for
// leaderboards.
func (s *Store) Snapshot() models.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// Meta returns a copy of the last-loaded meta document.
func (s *Store) Meta() models.Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Clone()
}

// RefreshMeta re-reads the meta document from the store. The scheduler calls
// this before evaluating watermarks so a job already run by another process
// is seen as done.
func (s *Store) RefreshMeta(ctx context.Context) (models.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.refreshMetaLocked(ctx); err != nil {
		return models.Meta{}, err
	}
	return s.meta.Clone(), nil
}

// AdvanceWatermark moves a job watermark forward to day. Moving backwards is
// a no-op, so a lagging process cannot rewind another's progress.
func (s *Store) AdvanceWatermark(ctx context.Context, w Watermark, day string) error {
	return s.updateMeta(ctx, func(m *models.Meta) bool {
		slot := watermarkSlot(m, w)
		if *slot >= day {
			return false
		}
		*slot = day
		return true
	})
}

// RememberName records the display name for a ledger key. Persists only when
// the name is new or changed.
func (s *Store) RememberName(ctx context.Context, user, name string) error {
	if name == "" {
		return nil
	}
	return s.updateMeta(ctx, func(m *models.Meta) bool {
		if m.Names[user] == name {
			return false
		}
		if m.Names == nil {
			m.Names = map[string]string{}
		}
		m.Names[user] = name
		return true
	})
}

func watermarkSlot(m *models.Meta, w Watermark) *string {
	switch w {
	case WatermarkDailyInit:
		return &m.LastDailyInit
	case WatermarkDailyFinalize:
		return &m.LastDailyFinalize
	default:
		return &m.LastWeeklyReport
	}
}

// now is the current time in the reference timezone.
func (s *Store) now() time.Time {
	return s.opts.Clock.Now().In(s.opts.Location)
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

func (s *Store) refreshLedgerLocked(ctx context.Context) error {
	data, token, err := s.docs.Load(ctx, s.opts.LedgerKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.ledger, s.ledgerToken = models.Ledger{}, ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	var l models.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("decode ledger: %w", err)
	}
	if l == nil {
		l = models.Ledger{}
	}
	s.ledger, s.ledgerToken = l, token
	return nil
}

func (s *Store) refreshMetaLocked(ctx context.Context) error {
	data, token, err := s.docs.Load(ctx, s.opts.MetaKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.meta, s.metaToken = models.Meta{}, ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	var m models.Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode meta: %w", err)
	}
	s.meta, s.metaToken = m, token
	return nil
}

// updateLedger runs fn against a fresh copy of the ledger and persists the
// result. fn returns whether it changed anything; an unchanged ledger skips
// the save entirely. A version conflict is retried once against a reload.
func (s *Store) updateLedger(ctx context.Context, fn func(models.Ledger) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.bound(ctx)
	defer cancel()

	for attempt := 0; ; attempt++ {
		if err := s.refreshLedgerLocked(ctx); err != nil {
			return err
		}
		work := s.ledger.Clone()
		changed, err := fn(work)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		data, err := json.MarshalIndent(work, "", "  ")
		if err != nil {
			return err
		}
		token, err := s.docs.Save(ctx, s.opts.LedgerKey, data, s.ledgerToken)
		if errors.Is(err, storage.ErrConflict) && attempt == 0 {
			s.opts.Log.Warn().Str("doc", s.opts.LedgerKey).Msg("version conflict, retrying with fresh load")
			continue
		}
		if err != nil {
			metrics.PersistFailures.Inc()
			return fmt.Errorf("save ledger: %w", err)
		}
		s.ledger, s.ledgerToken = work, token
		return nil
	}
}

func (s *Store) updateMeta(ctx context.Context, fn func(*models.Meta) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.bound(ctx)
	defer cancel()

	for attempt := 0; ; attempt++ {
		if err := s.refreshMetaLocked(ctx); err != nil {
			return err
		}
		work := s.meta.Clone()
		if !fn(&work) {
			return nil
		}
		data, err := json.MarshalIndent(work, "", "  ")
		if err != nil {
			return err
		}
		token, err := s.docs.Save(ctx, s.opts.MetaKey, data, s.metaToken)
		if errors.Is(err, storage.ErrConflict) && attempt == 0 {
			s.opts.Log.Warn().Str("doc", s.opts.MetaKey).Msg("version conflict, retrying with fresh load")
			continue
		}
		if err != nil {
			metrics.PersistFailures.Inc()
			return fmt.Errorf("save meta: %w", err)
		}
		s.meta, s.metaToken = work, token
		return nil
	}
}
