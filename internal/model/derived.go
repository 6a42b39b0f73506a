package model

import (
	"fmt"
	"time"

	"reminders/internal/calendar"
)

// DefaultDistantRecurringDays is how far out a recurring task must be before
// it is treated as distant.
const DefaultDistantRecurringDays = 3

// IsOverdue is false for habits, undated tasks and completed tasks.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.IsHabit() || t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

func (t *Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return calendar.In(now.Location()).SameDay(*t.DueDate, now)
}

func (t *Task) IsDueTomorrow(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	cal := calendar.In(now.Location())
	return cal.SameDay(*t.DueDate, cal.AddDays(now, 1))
}

// DaysUntilDue is the signed number of calendar days from today to the due
// date. The second result is false for undated tasks.
func (t *Task) DaysUntilDue(now time.Time) (int, bool) {
	if t.DueDate == nil {
		return 0, false
	}
	cal := calendar.In(now.Location())
	return cal.DaysBetween(cal.StartOfDay(now), cal.StartOfDay(*t.DueDate)), true
}

// IsDistantRecurring marks recurring tasks due more than thresholdDays out.
func (t *Task) IsDistantRecurring(now time.Time, thresholdDays int) bool {
	if !t.IsRecurring() {
		return false
	}
	days, ok := t.DaysUntilDue(now)
	return ok && days > thresholdDays
}

// IsCompletedToday reports whether completedAt falls on the current day. For
// habits this is the daily check-in state; it lapses at midnight on its own.
func (t *Task) IsCompletedToday(now time.Time) bool {
	if t.CompletedAt == nil {
		return false
	}
	return calendar.In(now.Location()).SameDay(*t.CompletedAt, now)
}

// DaysUntilDueText renders DaysUntilDue for display; "" when undated.
func (t *Task) DaysUntilDueText(now time.Time) string {
	days, ok := t.DaysUntilDue(now)
	if !ok {
		return ""
	}
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}
