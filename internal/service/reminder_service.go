package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"reminders/internal/model"
	"reminders/internal/planner"
)

// Digest is a ready-to-send attention report.
type Digest struct {
	Summary    planner.AttentionSummary
	OpenHabits []string
	// Badge is the number to show on an app icon.
	Badge int
	// Text is the HTML rendering of the digest.
	Text string
}

// Empty reports whether there is nothing worth sending.
func (d Digest) Empty() bool {
	return d.Summary.NeedsAttentionCount == 0 && len(d.OpenHabits) == 0
}

// Notifier delivers digests to the user.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// ReminderService builds human-readable summaries for notifications.
type ReminderService struct {
	tasks TaskStore
	opts  planner.Options
	log   zerolog.Logger
}

func NewReminderService(tasks TaskStore, opts planner.Options, log zerolog.Logger) *ReminderService {
	return &ReminderService{tasks: tasks, opts: opts, log: log}
}

func (s *ReminderService) Digest(ctx context.Context, now time.Time) (Digest, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return Digest{}, err
	}

	d := Digest{Summary: planner.Summarize(tasks, now, s.opts)}
	d.Badge = d.Summary.NeedsAttentionCount
	for _, h := range planner.OpenHabits(tasks, now) {
		d.OpenHabits = append(d.OpenHabits, h.Title)
	}
	d.Text = formatDigest(d, now)
	return d, nil
}

// SendDigest builds the digest and hands it to n. Nothing is sent when the
// digest is empty.
func (s *ReminderService) SendDigest(ctx context.Context, n Notifier, now time.Time) error {
	d, err := s.Digest(ctx, now)
	if err != nil {
		return err
	}
	if d.Empty() {
		s.log.Debug().Msg("digest empty, nothing to send")
		return nil
	}
	if err := n.Notify(ctx, d); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	s.log.Info().Int("badge", d.Badge).Int("habits", len(d.OpenHabits)).Msg("digest sent")
	return nil
}

func formatDigest(d Digest, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("📋 <b>Daily summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Mon, 02 Jan 2006")))

	builder.WriteString(fmt.Sprintf("🔥 <b>Needs attention</b> (%d)\n", d.Summary.NeedsAttentionCount))
	if d.Summary.NeedsAttentionCount == 0 {
		builder.WriteString("nothing needs attention right now\n")
	} else {
		for _, title := range d.Summary.TopItemTitles {
			builder.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(strings.TrimSpace(title))))
		}
		if more := d.Summary.NeedsAttentionCount - len(d.Summary.TopItemTitles); more > 0 {
			builder.WriteString(fmt.Sprintf("… and %d more\n", more))
		}
	}

	if len(d.OpenHabits) > 0 {
		builder.WriteString("\n🌱 <b>Habits open today</b>\n")
		for _, title := range d.OpenHabits {
			builder.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(strings.TrimSpace(title))))
		}
	}

	return strings.TrimSpace(builder.String())
}

// FormatDue renders a due date relative to now, e.g. "2024-03-01 (in 3 days)".
func FormatDue(t *model.Task, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	due := t.DueDate.In(now.Location())
	text := due.Format("2006-01-02")
	if due.Hour() != 0 || due.Minute() != 0 {
		text = due.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s (%s)", text, t.DaysUntilDueText(now))
}
