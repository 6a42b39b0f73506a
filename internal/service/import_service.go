package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"reminders/internal/model"
	"reminders/internal/repository"
)

// NativeReminder is a reminder as the platform reminders app exposes it.
type NativeReminder struct {
	Title          string     `json:"title"`
	Notes          string     `json:"notes,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	IsCompleted    bool       `json:"isCompleted"`
	Priority       int        `json:"priority"`
	SourceListName string     `json:"sourceListName,omitempty"`
}

type ImportOptions struct {
	StripDueDates bool
	SkipCompleted bool
	// CreateMissingCategories creates a category for each unknown list
	// name. Otherwise such reminders are imported uncategorized.
	CreateMissingCategories bool
}

type ImportReport struct {
	Imported          int `json:"imported"`
	Skipped           int `json:"skipped"`
	CategoriesCreated int `json:"categoriesCreated"`
}

// ImportService moves reminders between the platform app and the store.
type ImportService struct {
	tasks      TaskStore
	categories CategoryStore
	log        zerolog.Logger
}

func NewImportService(tasks TaskStore, categories CategoryStore, log zerolog.Logger) *ImportService {
	return &ImportService{tasks: tasks, categories: categories, log: log}
}

// ImportNative turns platform reminders into tasks. List names are matched
// to categories ignoring case. The tasks are saved in one transaction.
func (s *ImportService) ImportNative(ctx context.Context, records []NativeReminder, opts ImportOptions, now time.Time) (ImportReport, error) {
	var report ImportReport
	var out []*model.Task

	for _, r := range records {
		title := strings.TrimSpace(r.Title)
		if title == "" || (opts.SkipCompleted && r.IsCompleted) {
			report.Skipped++
			continue
		}

		category, created, err := s.category(ctx, r.SourceListName, opts.CreateMissingCategories)
		if err != nil {
			return report, fmt.Errorf("import %q: %w", title, err)
		}
		if created {
			report.CategoriesCreated++
		}

		task := model.NewTask(title, category, now)
		task.Notes = strings.TrimSpace(r.Notes)
		task.Priority = model.PriorityFromNative(r.Priority)
		if !opts.StripDueDates && r.DueDate != nil {
			due := *r.DueDate
			task.DueDate = &due
		}
		if r.IsCompleted {
			task.Complete(now)
		}
		out = append(out, task)
	}

	if len(out) > 0 {
		if err := s.tasks.SaveAll(ctx, out...); err != nil {
			return report, fmt.Errorf("import reminders: %w", err)
		}
	}
	report.Imported = len(out)
	s.log.Info().
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("categories_created", report.CategoriesCreated).
		Msg("native reminders imported")
	return report, nil
}

// ExportNative renders every task as a platform reminder.
func (s *ImportService) ExportNative(ctx context.Context) ([]NativeReminder, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]NativeReminder, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NativeReminder{
			Title:          t.Title,
			Notes:          t.Notes,
			DueDate:        t.DueDate,
			IsCompleted:    t.IsCompleted,
			Priority:       t.Priority.Native(),
			SourceListName: t.CategoryName(),
		})
	}
	return out, nil
}

func (s *ImportService) category(ctx context.Context, name string, create bool) (*model.Category, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, nil
	}
	if create {
		return s.categories.GetOrCreate(ctx, name)
	}
	category, err := s.categories.FindByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	return category, false, err
}
