package ledger

import (
	"time"
)

// =============================================================================
// DATE - Calendar day (the only time granularity this engine knows)
// =============================================================================

// Date is a calendar day, normalized to midnight UTC. The engine has no
// notion of intra-day time; same-day ordering comes from source-file order.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the whole days from 'from' to 'to'.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// PERIOD - Inclusive date range, used to window computed series
// =============================================================================

type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// ClampStates returns the day states falling inside the period.
// The running balances and cumulative interest inside the window are
// unchanged; this is a view, not a re-simulation.
func ClampStates(states []DayState, p Period) []DayState {
	var out []DayState
	for _, s := range states {
		if p.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

// ClampRows returns the daily rows falling inside the period.
func ClampRows(rows []DailyRow, p Period) []DailyRow {
	var out []DailyRow
	for _, r := range rows {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}
