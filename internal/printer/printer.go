// Package printer renders tasks as terminal tables.
package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"reminders/internal/model"
	"reminders/internal/planner"
)

const shortIDLen = 8

var (
	bold      = color.New(color.Bold)
	overdue   = color.New(color.FgRed)
	dueToday  = color.New(color.FgYellow)
	distant   = color.New(color.Faint)
	completed = color.New(color.FgGreen)
)

// Printer writes task tables relative to a fixed instant.
type Printer struct {
	out  io.Writer
	now  time.Time
	opts planner.Options
}

// New returns a Printer writing to w. A nil w means color.Output.
func New(w io.Writer, now time.Time, opts planner.Options) *Printer {
	if w == nil {
		w = color.Output
	}
	return &Printer{out: w, now: now, opts: opts}
}

// Tasks prints a titled table, or nothing when tasks is empty.
func (p *Printer) Tasks(title string, tasks []*model.Task) {
	if len(tasks) == 0 {
		return
	}
	_, _ = fmt.Fprintln(p.out, bold.Sprintf("%s (%d)", title, len(tasks)))

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	for _, t := range tasks {
		tbl.AddRow(p.row(t)...)
	}
	_, _ = fmt.Fprintln(p.out, tbl)
	_, _ = fmt.Fprintln(p.out, "")
}

// Buckets prints the sections of b in display order.
func (p *Printer) Buckets(b planner.Buckets) {
	p.Tasks("Needs attention", b.NeedsAttention)
	p.Tasks("Habits", b.Habits)
	p.Tasks("Scheduled", b.Scheduled)
	p.Tasks("Recurring", b.Recurring)
	for _, g := range b.ByCategory {
		p.Tasks(g.Name(), g.Tasks)
	}
}

// Created prints a one-line note per created task.
func (p *Printer) Created(tasks []*model.Task) {
	for _, t := range tasks {
		_, _ = fmt.Fprintf(p.out, "created %s %s %s\n", ShortID(t.ID), t.Title, t.DaysUntilDueText(p.now))
	}
}

func (p *Printer) row(t *model.Task) []interface{} {
	paint := p.paint(t)
	mark := " "
	if t.Priority == model.PriorityUrgent {
		mark = "!"
	}

	status := ""
	switch {
	case t.IsHabit():
		status = fmt.Sprintf("streak %d", t.CurrentStreak(p.now))
		if t.IsCompletedToday(p.now) {
			status = completed.Sprint("done today, ") + status
		}
	case t.IsCompleted:
		status = completed.Sprint("done")
	default:
		status = t.DaysUntilDueText(p.now)
	}

	recurrence := ""
	if t.IsRecurring() {
		recurrence = t.Recurrence.Label()
	}

	return []interface{}{
		ShortID(t.ID),
		mark,
		paint.Sprint(t.Title),
		t.CategoryName(),
		paint.Sprint(status),
		recurrence,
	}
}

func (p *Printer) paint(t *model.Task) *color.Color {
	switch {
	case t.IsOverdue(p.now):
		return overdue
	case !t.IsCompleted && !t.IsHabit() && t.IsDueToday(p.now):
		return dueToday
	case t.IsDistantRecurring(p.now, p.opts.DistantRecurringDays):
		return distant
	default:
		return color.New(color.Reset)
	}
}

// ShortID is the prefix shown for ids; the CLI and bot accept it back.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
