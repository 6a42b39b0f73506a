package planner

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"reminders/internal/calendar"
	"reminders/internal/model"
)

// maxCatchUp bounds how many periods MissingOccurrences will walk forward.
const maxCatchUp = 1000

// Rollover builds the next occurrence of a recurring task. It returns nil when
// the task does not repeat or has no due date. The source task is not
// modified.
//
// The next date is computed from the later of the due date and the start of
// today, so an overdue task rolls to the next future slot instead of
// producing clones that are already overdue.
func Rollover(task *model.Task, now time.Time) *model.Task {
	if task == nil || !task.IsRecurring() || task.DueDate == nil {
		return nil
	}
	cal := calendar.In(now.Location())
	anchor := task.DueDate.In(now.Location())
	if today := cal.StartOfDay(now); anchor.Before(today) {
		anchor = today
	}

	next, ok := task.Recurrence.NextDate(anchor)
	for i := 0; ok && !next.After(now) && i < maxCatchUp; i++ {
		next, ok = task.Recurrence.NextDate(next)
	}
	if !ok {
		return nil
	}

	return &model.Task{
		ID:          uuid.NewString(),
		Title:       task.Title,
		Notes:       task.Notes,
		DueDate:     &next,
		Priority:    task.Priority,
		Recurrence:  task.Recurrence,
		Kind:        task.Kind,
		CategoryID:  copyString(task.CategoryID),
		Category:    task.Category,
		AIContext:   task.AIContext,
		IsCompleted: false,
		CreatedAt:   now,
	}
}

type seriesKey struct {
	title      string
	recurrence model.Recurrence
}

// OpenOccurrence returns an open task of the same series as task, other than
// task itself, or nil. A series is identified by title and recurrence.
func OpenOccurrence(tasks []*model.Task, task *model.Task) *model.Task {
	if task == nil || !task.IsRecurring() {
		return nil
	}
	key := seriesKey{title: task.Title, recurrence: task.Recurrence}
	for _, t := range tasks {
		if t == nil || t.ID == task.ID || t.IsCompleted {
			continue
		}
		if (seriesKey{title: t.Title, recurrence: t.Recurrence}) == key {
			return t
		}
	}
	return nil
}

// MissingOccurrences finds recurring series whose every member is completed
// and returns the occurrence each one should have. A series is identified
// by title and recurrence. Persisting the result makes a second call return
// nothing.
func MissingOccurrences(tasks []*model.Task, now time.Time) []*model.Task {
	active := make(map[seriesKey]bool)
	latest := make(map[seriesKey]*model.Task)
	for _, t := range tasks {
		if t == nil || !t.IsRecurring() {
			continue
		}
		key := seriesKey{title: t.Title, recurrence: t.Recurrence}
		if !t.IsCompleted {
			active[key] = true
			continue
		}
		if t.DueDate == nil {
			continue
		}
		if cur, ok := latest[key]; !ok || t.DueDate.After(*cur.DueDate) {
			latest[key] = t
		}
	}

	var out []*model.Task
	for key, t := range latest {
		if active[key] {
			continue
		}
		next := Rollover(t, now)
		for i := 0; next != nil && next.DueDate.Before(now) && i < maxCatchUp; i++ {
			next = Rollover(next, now)
		}
		if next != nil {
			out = append(out, next)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(*out[j].DueDate) {
			return out[i].DueDate.Before(*out[j].DueDate)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
