package planner

import (
	"time"

	"reminders/internal/model"
)

// AttentionSummary is what a notification or badge needs to render.
type AttentionSummary struct {
	NeedsAttentionCount int      `json:"needsAttentionCount"`
	TopItemTitles       []string `json:"topItemTitles"`
}

// Summarize counts NeedsAttention and keeps the first opts.TopItems titles.
func Summarize(tasks []*model.Task, now time.Time, opts Options) AttentionSummary {
	items := NeedsAttention(tasks, now, opts)
	limit := opts.TopItems
	if limit < 0 || limit > len(items) {
		limit = len(items)
	}
	titles := make([]string, 0, limit)
	for _, t := range items[:limit] {
		titles = append(titles, t.Title)
	}
	return AttentionSummary{
		NeedsAttentionCount: len(items),
		TopItemTitles:       titles,
	}
}

// OpenHabits returns habits not yet checked in today.
func OpenHabits(tasks []*model.Task, now time.Time) []*model.Task {
	return filter(Habits(tasks), func(t *model.Task) bool {
		return !t.IsCompletedToday(now)
	})
}
