package models

// Status is the state of one user's goals for one calendar day.
// The zero value ("") means the day is still pending. The string values
// match the persisted snapshot format.
type Status string

const (
	StatusPending    Status = ""
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
)

// Pending reports whether the slot has not been decided yet.
func (s Status) Pending() bool { return s == StatusPending }

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusComplete || s == StatusIncomplete
}

// DayRecord maps YYYY-MM-DD day keys to a status.
type DayRecord map[string]Status

// Ledger is the full goal history: user key -> day record.
// Keys are platform user IDs rendered as strings; legacy snapshots keyed by
// display name load the same way.
type Ledger map[string]DayRecord

// Clone returns a deep copy, so a mutation can be prepared and thrown away
// without touching the source.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for user, rec := range l {
		days := make(DayRecord, len(rec))
		for day, st := range rec {
			days[day] = st
		}
		out[user] = days
	}
	return out
}

// Meta is the small per-process document holding job watermarks and the
// display-name sidecar. Watermarks are ISO dates or empty when a job has
// never run.
type Meta struct {
	LastDailyInit     string            `json:"last_daily_init,omitempty"`
	LastDailyFinalize string            `json:"last_daily_finalize,omitempty"`
	LastWeeklyReport  string            `json:"last_weekly_report,omitempty"`
	Names             map[string]string `json:"names,omitempty"`
}

// Clone returns a deep copy of the meta document.
func (m Meta) Clone() Meta {
	out := m
	if m.Names != nil {
		out.Names = make(map[string]string, len(m.Names))
		for k, v := range m.Names {
			out.Names[k] = v
		}
	}
	return out
}

// DisplayName resolves a ledger key to a human name, falling back to the key
// itself (which is exactly right for legacy name-keyed records).
func (m Meta) DisplayName(user string) string {
	if n, ok := m.Names[user]; ok && n != "" {
		return n
	}
	return user
}
