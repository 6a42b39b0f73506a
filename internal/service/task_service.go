package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"reminders/internal/model"
	"reminders/internal/planner"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title        string
	Notes        string
	DueDate      *time.Time
	Priority     string
	Recurrence   string
	CategoryName string
	// Enhance runs the annotator, if one is configured.
	Enhance bool
}

// TaskPatch lists the fields to change on an existing task. Nil fields are
// left as they are.
type TaskPatch struct {
	Title      *string
	Notes      *string
	DueDate    *time.Time
	ClearDue   bool
	Priority   *string
	Recurrence *string
	// CategoryName moves the task; an empty name makes it uncategorized.
	CategoryName *string
}

// CompletionResult is a completed task and the occurrence spawned in its
// place, if any.
type CompletionResult struct {
	Task *model.Task
	Next *model.Task
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks      TaskStore
	categories CategoryStore
	annotator  Annotator
	opts       planner.Options
	log        zerolog.Logger
}

// NewTaskService builds a TaskService. annotator may be nil.
func NewTaskService(tasks TaskStore, categories CategoryStore, annotator Annotator, opts planner.Options, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:      tasks,
		categories: categories,
		annotator:  annotator,
		opts:       opts,
		log:        log,
	}
}

// Options returns the thresholds used for bucketing.
func (s *TaskService) Options() planner.Options {
	return s.opts
}

func (s *TaskService) Create(ctx context.Context, input TaskInput, now time.Time) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	category, err := s.resolveCategory(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}

	task := model.NewTask(title, category, now)
	task.Notes = strings.TrimSpace(input.Notes)
	task.DueDate = input.DueDate
	task.Priority = model.MigratePriority(input.Priority)
	task.Recurrence = model.ParseRecurrence(input.Recurrence)

	if input.Enhance && s.annotator != nil {
		if err := s.runAnnotator(ctx, task); err != nil {
			s.log.Warn().Err(err).Str("task_id", task.ID).Msg("annotation skipped")
		}
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info().Str("task_id", task.ID).Str("recurrence", string(task.Recurrence)).Msg("task created")
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, taskErr(err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context) ([]*model.Task, error) {
	return s.tasks.List(ctx)
}

// Resolve finds a task by full id or by an unambiguous id prefix.
func (s *TaskService) Resolve(ctx context.Context, idOrPrefix string) (*model.Task, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrTaskNotFound
	}
	task, err := s.tasks.Get(ctx, idOrPrefix)
	if err == nil {
		return task, nil
	}
	if !errors.Is(taskErr(err), ErrTaskNotFound) {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	var found *model.Task
	for _, t := range tasks {
		if !strings.HasPrefix(t.ID, idOrPrefix) {
			continue
		}
		if found != nil {
			return nil, ErrAmbiguousID
		}
		found = t
	}
	if found == nil {
		return nil, ErrTaskNotFound
	}
	return found, nil
}

func (s *TaskService) Update(ctx context.Context, id string, patch TaskPatch) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		task.Title = title
	}
	if patch.Notes != nil {
		task.Notes = strings.TrimSpace(*patch.Notes)
	}
	switch {
	case patch.ClearDue:
		task.DueDate = nil
	case patch.DueDate != nil:
		due := *patch.DueDate
		task.DueDate = &due
	}
	if patch.Priority != nil {
		task.Priority = model.MigratePriority(*patch.Priority)
	}
	if patch.Recurrence != nil {
		task.Recurrence = model.ParseRecurrence(*patch.Recurrence)
	}
	if patch.CategoryName != nil {
		category, err := s.resolveCategory(ctx, *patch.CategoryName)
		if err != nil {
			return nil, err
		}
		task.SetCategory(category)
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete finishes a task. Habits are checked in for today instead. A
// recurring task spawns its next occurrence, saved together with the
// completed one, unless the series already has an open occurrence; Next is
// then that occurrence. Completing an already completed task changes
// nothing.
func (s *TaskService) Complete(ctx context.Context, id string, now time.Time) (CompletionResult, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return CompletionResult{}, err
	}

	if task.IsHabit() {
		task.CheckInHabitToday(now)
		if err := s.tasks.Save(ctx, task); err != nil {
			return CompletionResult{}, err
		}
		return CompletionResult{Task: task}, nil
	}
	if task.IsCompleted {
		return CompletionResult{Task: task}, nil
	}

	var open *model.Task
	if task.IsRecurring() {
		all, err := s.tasks.List(ctx)
		if err != nil {
			return CompletionResult{}, err
		}
		open = planner.OpenOccurrence(all, task)
	}

	task.Complete(now)
	toSave := []*model.Task{task}
	next := open
	if next == nil {
		next = planner.Rollover(task, now)
		if next != nil {
			toSave = append(toSave, next)
		}
	}
	if err := s.tasks.SaveAll(ctx, toSave...); err != nil {
		return CompletionResult{}, fmt.Errorf("complete task: %w", err)
	}

	ev := s.log.Info().Str("task_id", task.ID).Bool("reused_next", open != nil)
	if next != nil && next.DueDate != nil {
		ev = ev.Str("next_id", next.ID).Time("next_due", *next.DueDate)
	}
	ev.Msg("task completed")
	return CompletionResult{Task: task, Next: next}, nil
}

// Uncomplete reopens a task. An occurrence already spawned by completing it
// is kept. For habits it clears today's check-in.
func (s *TaskService) Uncomplete(ctx context.Context, id string, now time.Time) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsHabit() {
		task.ClearHabitToday(now)
	} else {
		task.Uncomplete()
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) CheckIn(ctx context.Context, id string, now time.Time) (*model.Task, error) {
	return s.habit(ctx, id, func(t *model.Task) { t.CheckInHabitToday(now) })
}

func (s *TaskService) ClearCheckIn(ctx context.Context, id string, now time.Time) (*model.Task, error) {
	return s.habit(ctx, id, func(t *model.Task) { t.ClearHabitToday(now) })
}

func (s *TaskService) habit(ctx context.Context, id string, apply func(*model.Task)) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsHabit() {
		return nil, ErrNotHabit
	}
	apply(task)
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task completely (for both one-time and recurring tasks).
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return taskErr(err)
	}
	s.log.Info().Str("task_id", id).Msg("task deleted")
	return nil
}

// Enhance annotates an existing task. The task is saved only when the
// annotator answers.
func (s *TaskService) Enhance(ctx context.Context, id string) (*model.Task, error) {
	if s.annotator == nil {
		return nil, ErrNoAnnotator
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.runAnnotator(ctx, task); err != nil {
		return nil, err
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Buckets(ctx context.Context, now time.Time) (planner.Buckets, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return planner.Buckets{}, err
	}
	return planner.Classify(tasks, now, s.opts), nil
}

func (s *TaskService) Summary(ctx context.Context, now time.Time) (planner.AttentionSummary, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return planner.AttentionSummary{}, err
	}
	return planner.Summarize(tasks, now, s.opts), nil
}

// RecoverMissingOccurrences restores the open occurrence of every recurring
// series that has none, and returns what it created.
func (s *TaskService) RecoverMissingOccurrences(ctx context.Context, now time.Time) ([]*model.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	missing := planner.MissingOccurrences(tasks, now)
	if len(missing) == 0 {
		return nil, nil
	}
	if err := s.tasks.SaveAll(ctx, missing...); err != nil {
		return nil, fmt.Errorf("recover occurrences: %w", err)
	}
	s.log.Info().Int("count", len(missing)).Msg("recovered missing occurrences")
	return missing, nil
}

// resolveCategory maps a name onto an existing category. An empty name is
// no category.
func (s *TaskService) resolveCategory(ctx context.Context, name string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	category, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, categoryErr(err)
	}
	return category, nil
}

func (s *TaskService) runAnnotator(ctx context.Context, task *model.Task) error {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	return annotate(ctx, s.annotator, task, categories)
}
