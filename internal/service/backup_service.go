package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"reminders/internal/model"
)

// BackupVersion is written into every backup.
const BackupVersion = 1

// Backup is a full copy of the store.
type Backup struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Categories []CategoryRecord `json:"categories"`
	Tasks      []TaskRecord     `json:"tasks"`
}

type CategoryRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	ColorName string    `json:"colorName,omitempty"`
	IsDefault bool      `json:"isDefault"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskRecord is the stable external form of a task. Priority and recurrence
// are plain strings so older files with legacy values still load.
type TaskRecord struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Notes                string      `json:"notes"`
	Priority             string      `json:"priority"`
	IsCompleted          bool        `json:"isCompleted"`
	CreatedAt            time.Time   `json:"createdAt"`
	DueDate              *time.Time  `json:"dueDate,omitempty"`
	CompletedAt          *time.Time  `json:"completedAt,omitempty"`
	Recurrence           string      `json:"recurrence"`
	Kind                 string      `json:"kind,omitempty"`
	Category             *string     `json:"category,omitempty"`
	CategoryName         string      `json:"categoryName,omitempty"`
	AIContext            string      `json:"aiContext,omitempty"`
	HabitCompletionDates []time.Time `json:"habitCompletionDates"`
}

// BackupService exports and restores the whole store.
type BackupService struct {
	tasks      TaskStore
	categories CategoryStore
	log        zerolog.Logger
}

func NewBackupService(tasks TaskStore, categories CategoryStore, log zerolog.Logger) *BackupService {
	return &BackupService{tasks: tasks, categories: categories, log: log}
}

func (s *BackupService) Export(ctx context.Context, now time.Time) (Backup, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return Backup{}, err
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return Backup{}, err
	}

	b := Backup{
		Version:    BackupVersion,
		ExportedAt: now,
		Categories: make([]CategoryRecord, 0, len(categories)),
		Tasks:      make([]TaskRecord, 0, len(tasks)),
	}
	for _, c := range categories {
		b.Categories = append(b.Categories, CategoryRecord{
			ID:        c.ID,
			Name:      c.Name,
			Icon:      c.Icon,
			ColorName: c.ColorName,
			IsDefault: c.IsDefault,
			SortOrder: c.SortOrder,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, t := range tasks {
		b.Tasks = append(b.Tasks, taskRecord(t))
	}
	return b, nil
}

// RestoreReport counts what Import wrote. Categories merged into stored ones
// by name are not counted.
type RestoreReport struct {
	Tasks      int `json:"tasks"`
	Categories int `json:"categories"`
	Skipped    int `json:"skipped"`
}

// Import upserts every record by id. A backup category whose name is already
// taken by a stored one is merged into it. Legacy priority and recurrence
// values are migrated; a task pointing at a category that is neither stored
// nor in the backup becomes uncategorized.
func (s *BackupService) Import(ctx context.Context, b Backup) (RestoreReport, error) {
	var report RestoreReport
	known := make(map[string]*model.Category)
	existing, err := s.categories.List(ctx)
	if err != nil {
		return report, err
	}
	for _, c := range existing {
		known[c.ID] = c
	}

	for _, r := range b.Categories {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Name) == "" {
			continue
		}
		if _, ok := known[r.ID]; !ok {
			if same := findByName(existing, r.Name); same != nil {
				known[r.ID] = same
				continue
			}
		}
		c := &model.Category{
			ID:        r.ID,
			Name:      strings.TrimSpace(r.Name),
			Icon:      r.Icon,
			ColorName: r.ColorName,
			IsDefault: r.IsDefault,
			SortOrder: r.SortOrder,
			CreatedAt: r.CreatedAt,
		}
		if err := s.categories.Save(ctx, c); err != nil {
			return report, fmt.Errorf("restore category %s: %w", r.ID, err)
		}
		known[c.ID] = c
		report.Categories++
	}

	tasks := make([]*model.Task, 0, len(b.Tasks))
	for _, r := range b.Tasks {
		if strings.TrimSpace(r.ID) == "" {
			report.Skipped++
			continue
		}
		tasks = append(tasks, restoreTask(r, known))
	}
	if len(tasks) > 0 {
		if err := s.tasks.SaveAll(ctx, tasks...); err != nil {
			return RestoreReport{}, fmt.Errorf("restore tasks: %w", err)
		}
	}
	report.Tasks = len(tasks)

	s.log.Info().
		Int("categories", report.Categories).
		Int("tasks", report.Tasks).
		Int("skipped", report.Skipped).
		Msg("backup restored")
	return report, nil
}

// WriteBackup encodes b as indented JSON.
func WriteBackup(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

func ReadBackup(r io.Reader) (Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return b, fmt.Errorf("decode backup: %w", err)
	}
	return b, nil
}

func findByName(categories []*model.Category, name string) *model.Category {
	for _, c := range categories {
		if c.MatchesName(name) {
			return c
		}
	}
	return nil
}

func taskRecord(t *model.Task) TaskRecord {
	dates := t.HabitCompletionDates
	if dates == nil {
		dates = []time.Time{}
	}
	return TaskRecord{
		ID:                   t.ID,
		Title:                t.Title,
		Notes:                t.Notes,
		Priority:             string(t.Priority),
		IsCompleted:          t.IsCompleted,
		CreatedAt:            t.CreatedAt,
		DueDate:              t.DueDate,
		CompletedAt:          t.CompletedAt,
		Recurrence:           string(t.Recurrence),
		Kind:                 string(t.Kind),
		Category:             t.CategoryID,
		CategoryName:         t.CategoryName(),
		AIContext:            t.AIContext,
		HabitCompletionDates: dates,
	}
}

func restoreTask(r TaskRecord, known map[string]*model.Category) *model.Task {
	t := &model.Task{
		ID:                   r.ID,
		Title:                r.Title,
		Notes:                r.Notes,
		Priority:             model.MigratePriority(r.Priority),
		IsCompleted:          r.IsCompleted,
		CompletedAt:          r.CompletedAt,
		DueDate:              r.DueDate,
		Recurrence:           model.ParseRecurrence(r.Recurrence),
		Kind:                 model.KindStandard,
		AIContext:            r.AIContext,
		HabitCompletionDates: r.HabitCompletionDates,
		CreatedAt:            r.CreatedAt,
	}
	// A habit whose category is dropped comes back as a standard task.
	if r.Category != nil {
		if c, ok := known[*r.Category]; ok {
			id := c.ID
			t.CategoryID = &id
			t.Category = c
			t.Kind = model.ParseKind(r.Kind)
			if c.IsHabits() {
				t.Kind = model.KindHabit
			}
		}
	}
	return t
}
