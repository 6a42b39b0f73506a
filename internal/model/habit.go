package model

import (
	"sort"
	"time"

	"reminders/internal/calendar"
)

// CheckInHabitToday records today's check-in. Repeated calls on the same day
// only refresh CompletedAt.
func (t *Task) CheckInHabitToday(now time.Time) {
	t.CompletedAt = &now
	if t.WasCompletedOn(now) {
		return
	}
	cal := calendar.In(now.Location())
	t.HabitCompletionDates = append(t.HabitCompletionDates, cal.StartOfDay(now))
	sort.Slice(t.HabitCompletionDates, func(i, j int) bool {
		return t.HabitCompletionDates[i].Before(t.HabitCompletionDates[j])
	})
}

// ClearHabitToday undoes today's check-in.
func (t *Task) ClearHabitToday(now time.Time) {
	t.CompletedAt = nil
	cal := calendar.In(now.Location())
	kept := t.HabitCompletionDates[:0]
	for _, d := range t.HabitCompletionDates {
		if !cal.SameDay(d, now) {
			kept = append(kept, d)
		}
	}
	t.HabitCompletionDates = kept
}

// WasCompletedOn reports whether a check-in exists on day's calendar date,
// in day's location.
func (t *Task) WasCompletedOn(day time.Time) bool {
	cal := calendar.In(day.Location())
	for _, d := range t.HabitCompletionDates {
		if cal.SameDay(d, day) {
			return true
		}
	}
	return false
}

// CompletionCountLastNDays counts check-ins from n-1 days ago through today.
func (t *Task) CompletionCountLastNDays(n int, now time.Time) int {
	if n <= 0 {
		return 0
	}
	cal := calendar.In(now.Location())
	since := cal.AddDays(cal.StartOfDay(now), -(n - 1))
	count := 0
	for _, d := range t.HabitCompletionDates {
		if !cal.StartOfDay(d).Before(since) {
			count++
		}
	}
	return count
}

// CurrentStreak counts consecutive checked-in days ending today, or ending
// yesterday while today is still open.
func (t *Task) CurrentStreak(now time.Time) int {
	cal := calendar.In(now.Location())
	day := cal.StartOfDay(now)
	if !t.WasCompletedOn(day) {
		day = cal.AddDays(day, -1)
	}
	streak := 0
	for t.WasCompletedOn(day) {
		streak++
		day = cal.AddDays(day, -1)
	}
	return streak
}
