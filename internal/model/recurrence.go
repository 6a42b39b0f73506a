package model

import (
	"strings"
	"time"

	"reminders/internal/calendar"
)

// Recurrence describes how a task repeats.
type Recurrence string

const (
	RecurrenceNone         Recurrence = "none"
	RecurrenceDaily        Recurrence = "daily"
	RecurrenceWeekly       Recurrence = "weekly"
	RecurrenceBiweekly     Recurrence = "biweekly"
	RecurrenceMonthly      Recurrence = "monthly"
	RecurrenceQuarterly    Recurrence = "quarterly"
	RecurrenceSemiannually Recurrence = "semiannually"
	RecurrenceYearly       Recurrence = "yearly"
	RecurrenceWeekdaysOnly Recurrence = "weekdays_only"
	RecurrenceWeekendsOnly Recurrence = "weekends_only"
)

// Recurrences lists every kind in display order.
var Recurrences = []Recurrence{
	RecurrenceNone,
	RecurrenceDaily,
	RecurrenceWeekly,
	RecurrenceBiweekly,
	RecurrenceMonthly,
	RecurrenceQuarterly,
	RecurrenceSemiannually,
	RecurrenceYearly,
	RecurrenceWeekdaysOnly,
	RecurrenceWeekendsOnly,
}

var recurrenceLabels = map[Recurrence]string{
	RecurrenceNone:         "Never",
	RecurrenceDaily:        "Daily",
	RecurrenceWeekly:       "Weekly",
	RecurrenceBiweekly:     "Every 2 weeks",
	RecurrenceMonthly:      "Monthly",
	RecurrenceQuarterly:    "Every 3 months",
	RecurrenceSemiannually: "Every 6 months",
	RecurrenceYearly:       "Yearly",
	RecurrenceWeekdaysOnly: "Weekdays",
	RecurrenceWeekendsOnly: "Weekends",
}

// ParseRecurrence accepts snake_case or camelCase names in any letter case.
// Unknown values fall back to RecurrenceNone.
func ParseRecurrence(raw string) Recurrence {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	for _, r := range Recurrences {
		if strings.ReplaceAll(string(r), "_", "") == key {
			return r
		}
	}
	return RecurrenceNone
}

func (r Recurrence) IsRecurring() bool {
	return r != RecurrenceNone && r.Ordinal() > 0
}

// Ordinal is the position of r in Recurrences; unknown kinds sort with none.
func (r Recurrence) Ordinal() int {
	for i, k := range Recurrences {
		if k == r {
			return i
		}
	}
	return 0
}

func (r Recurrence) Label() string {
	if l, ok := recurrenceLabels[r]; ok {
		return l
	}
	return recurrenceLabels[RecurrenceNone]
}

// NextDate returns the occurrence after from. The second result is false
// for non-recurring kinds.
func (r Recurrence) NextDate(from time.Time) (time.Time, bool) {
	cal := calendar.In(from.Location())
	switch r {
	case RecurrenceDaily:
		return cal.AddDays(from, 1), true
	case RecurrenceWeekly:
		return cal.AddWeeks(from, 1), true
	case RecurrenceBiweekly:
		return cal.AddWeeks(from, 2), true
	case RecurrenceMonthly:
		return cal.AddMonths(from, 1), true
	case RecurrenceQuarterly:
		return cal.AddMonths(from, 3), true
	case RecurrenceSemiannually:
		return cal.AddMonths(from, 6), true
	case RecurrenceYearly:
		return cal.AddYears(from, 1), true
	case RecurrenceWeekdaysOnly:
		return skipUntil(cal, from, func(t time.Time) bool { return !cal.IsWeekend(t) }), true
	case RecurrenceWeekendsOnly:
		return skipUntil(cal, from, cal.IsWeekend), true
	default:
		return time.Time{}, false
	}
}

// skipUntil advances at least one day and stops at the first day matching
// ok. Any weekday pattern matches within a week.
func skipUntil(cal calendar.Calendar, from time.Time, ok func(time.Time) bool) time.Time {
	next := cal.AddDays(from, 1)
	for i := 1; i < 7 && !ok(next); i++ {
		next = cal.AddDays(next, 1)
	}
	return next
}
