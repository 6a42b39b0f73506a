package planner

import (
	"sort"
	"strings"
	"time"

	"reminders/internal/model"
)

// Options holds the presentation thresholds used when bucketing.
type Options struct {
	// DistantRecurringDays is the number of days beyond which a recurring
	// task is de-emphasized.
	DistantRecurringDays int
	// UrgentNeedsAttention pulls urgent tasks into NeedsAttention even when
	// they are not due yet.
	UrgentNeedsAttention bool
	// TopItems caps the titles carried by an AttentionSummary.
	TopItems int
}

func DefaultOptions() Options {
	return Options{
		DistantRecurringDays: model.DefaultDistantRecurringDays,
		UrgentNeedsAttention: true,
		TopItems:             5,
	}
}

// Buckets is every view over a task collection at one instant.
type Buckets struct {
	NeedsAttention []*model.Task
	Habits         []*model.Task
	Scheduled      []*model.Task
	Recurring      []*model.Task
	Completed      []*model.Task
	ByCategory     []CategoryGroup
}

// CategoryGroup holds the open tasks of one category. Category is nil for
// the uncategorized group.
type CategoryGroup struct {
	Category *model.Category
	Tasks    []*model.Task
}

func (g CategoryGroup) Name() string {
	if g.Category == nil {
		return "Uncategorized"
	}
	return g.Category.Name
}

// Classify computes all buckets.
func Classify(tasks []*model.Task, now time.Time, opts Options) Buckets {
	return Buckets{
		NeedsAttention: NeedsAttention(tasks, now, opts),
		Habits:         Habits(tasks),
		Scheduled:      Scheduled(tasks),
		Recurring:      Recurring(tasks),
		Completed:      Completed(tasks),
		ByCategory:     ByCategory(tasks),
	}
}

func isOpen(t *model.Task) bool {
	return t != nil && !t.IsCompleted && !t.IsHabit()
}

// NeedsAttention returns open non-habit tasks that are overdue, due today
// or urgent: overdue first, then due today, then by priority.
func NeedsAttention(tasks []*model.Task, now time.Time, opts Options) []*model.Task {
	out := filter(tasks, func(t *model.Task) bool {
		if !isOpen(t) {
			return false
		}
		return t.IsOverdue(now) || t.IsDueToday(now) ||
			(opts.UrgentNeedsAttention && t.Priority == model.PriorityUrgent)
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ao, bo := a.IsOverdue(now), b.IsOverdue(now); ao != bo {
			return ao
		}
		if at, bt := a.IsDueToday(now), b.IsDueToday(now); at != bt {
			return at
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return byDueThenTitle(a, b)
	})
	return out
}

// Habits returns habits that are not permanently completed, by title.
func Habits(tasks []*model.Task) []*model.Task {
	out := filter(tasks, func(t *model.Task) bool {
		return !t.IsCompleted && t.IsHabit()
	})
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

// Scheduled returns open non-habit tasks with a due date, soonest first.
func Scheduled(tasks []*model.Task) []*model.Task {
	out := filter(tasks, func(t *model.Task) bool {
		return isOpen(t) && t.DueDate != nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return byDueThenTitle(out[i], out[j])
	})
	return out
}

// Recurring returns incomplete repeating tasks by kind, then due date.
func Recurring(tasks []*model.Task) []*model.Task {
	out := filter(tasks, func(t *model.Task) bool {
		return !t.IsCompleted && t.IsRecurring()
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Recurrence.Ordinal() != b.Recurrence.Ordinal() {
			return a.Recurrence.Ordinal() < b.Recurrence.Ordinal()
		}
		return byDueThenTitle(a, b)
	})
	return out
}

// Completed returns completed tasks, most recently completed first.
func Completed(tasks []*model.Task) []*model.Task {
	out := filter(tasks, func(t *model.Task) bool { return t.IsCompleted })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CompletedAt, out[j].CompletedAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

// ByCategory groups open non-habit tasks by category. Groups follow the
// category sort order; uncategorized tasks, including those whose category
// is no longer loaded, come last.
func ByCategory(tasks []*model.Task) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	var loose []*model.Task
	for _, t := range tasks {
		if !isOpen(t) {
			continue
		}
		if t.Category == nil {
			loose = append(loose, t)
			continue
		}
		i, ok := index[t.Category.ID]
		if !ok {
			i = len(groups)
			index[t.Category.ID] = i
			groups = append(groups, CategoryGroup{Category: t.Category})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Category, groups[j].Category
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
	if len(loose) > 0 {
		groups = append(groups, CategoryGroup{Tasks: loose})
	}
	for _, g := range groups {
		sort.SliceStable(g.Tasks, func(i, j int) bool {
			return byDueThenTitle(g.Tasks[i], g.Tasks[j])
		})
	}
	return groups
}

// byDueThenTitle orders by due date with undated tasks last.
func byDueThenTitle(a, b *model.Task) bool {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return a.Title < b.Title
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	case !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	default:
		return a.Title < b.Title
	}
}

func filter(tasks []*model.Task, keep func(*model.Task) bool) []*model.Task {
	var out []*model.Task
	for _, t := range tasks {
		if t != nil && keep(t) {
			out = append(out, t)
		}
	}
	return out
}
