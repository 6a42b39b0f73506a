package calendar

import (
	"time"

	"github.com/jinzhu/now"
)

// Calendar performs day-granularity arithmetic in a single location.
type Calendar struct {
	loc *time.Location
}

// In returns a calendar bound to loc. A nil loc means time.Local.
func In(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc}
}

// Local returns the process default calendar.
func Local() Calendar {
	return In(time.Local)
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

func (c Calendar) in(t time.Time) time.Time {
	return t.In(c.Location())
}

// StartOfDay returns midnight of the day t falls on.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	return now.With(c.in(t)).BeginningOfDay()
}

func (c Calendar) AddDays(t time.Time, n int) time.Time {
	return c.in(t).AddDate(0, 0, n)
}

func (c Calendar) AddWeeks(t time.Time, n int) time.Time {
	return c.AddDays(t, 7*n)
}

// AddMonths adds n months, clamping the day to the end of the target month
// (Jan 31 + 1 month is the last day of February).
func (c Calendar) AddMonths(t time.Time, n int) time.Time {
	t = c.in(t)
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func (c Calendar) AddYears(t time.Time, n int) time.Time {
	return c.AddMonths(t, 12*n)
}

func (c Calendar) IsWeekend(t time.Time) bool {
	switch c.in(t).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// DaysBetween returns b - a in whole calendar days. Negative when b is
// earlier than a.
func (c Calendar) DaysBetween(a, b time.Time) int {
	ay, am, ad := c.in(a).Date()
	by, bm, bd := c.in(b).Date()
	// Compare as UTC dates so DST transitions never shorten a day.
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func (c Calendar) SameDay(a, b time.Time) bool {
	ay, am, ad := c.in(a).Date()
	by, bm, bd := c.in(b).Date()
	return ay == by && am == bm && ad == bd
}

func daysInMonth(t time.Time) int {
	return now.With(t).EndOfMonth().Day()
}
