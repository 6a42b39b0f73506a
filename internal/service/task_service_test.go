package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reminders/internal/model"
	"reminders/internal/planner"
	"reminders/internal/repository"
)

type fixture struct {
	tasks       *repository.TaskRepository
	categories  *repository.CategoryRepository
	taskSvc     *TaskService
	categorySvc *CategoryService
}

func newFixture(t *testing.T, annotator Annotator) *fixture {
	t.Helper()
	db, err := repository.NewDB(repository.DriverSQLite3, ":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		tasks:      repository.NewTaskRepository(db),
		categories: repository.NewCategoryRepository(db),
	}
	f.taskSvc = NewTaskService(f.tasks, f.categories, annotator, planner.DefaultOptions(), zerolog.Nop())
	f.categorySvc = NewCategoryService(f.categories, zerolog.Nop())
	if _, err := f.categorySvc.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}
	return f
}

func (f *fixture) create(t *testing.T, input TaskInput, now time.Time) *model.Task {
	t.Helper()
	task, err := f.taskSvc.Create(context.Background(), input, now)
	if err != nil {
		t.Fatalf("Failed to create task %q: %v", input.Title, err)
	}
	return task
}

type fakeAnnotator struct {
	res   AnnotationResult
	err   error
	calls int
}

func (a *fakeAnnotator) Annotate(_ context.Context, _ AnnotationRequest) (AnnotationResult, error) {
	a.calls++
	return a.res, a.err
}

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := at(2024, time.May, 6, 9)

	if _, err := f.taskSvc.Create(ctx, TaskInput{Title: "   "}, now); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}
	if _, err := f.taskSvc.Create(ctx, TaskInput{Title: "x", CategoryName: "Garden"}, now); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound, got %v", err)
	}

	task := f.create(t, TaskInput{
		Title:        "  Pay rent ",
		CategoryName: "personal",
		Priority:     "high",
		Recurrence:   "weekdaysOnly",
	}, now)
	if task.Title != "Pay rent" {
		t.Errorf("Expected trimmed title, got %q", task.Title)
	}
	if task.Priority != model.PriorityUrgent || task.Recurrence != model.RecurrenceWeekdaysOnly {
		t.Errorf("Expected migrated values, got %s %s", task.Priority, task.Recurrence)
	}
	if task.CategoryName() != "Personal" || task.Kind != model.KindStandard {
		t.Errorf("Unexpected category %q kind %s", task.CategoryName(), task.Kind)
	}

	habit := f.create(t, TaskInput{Title: "Read", CategoryName: "Habits"}, now)
	if habit.Kind != model.KindHabit || !habit.IsHabit() {
		t.Errorf("Expected habit kind, got %s", habit.Kind)
	}
}

func TestCompleteRecurringSpawnsNextOccurrence(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	due := at(2024, time.January, 31, 9)
	now := at(2024, time.January, 31, 10)

	task := f.create(t, TaskInput{Title: "Invoice", DueDate: &due, Recurrence: "monthly"}, now)

	res, err := f.taskSvc.Complete(ctx, task.ID, now)
	if err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}
	if !res.Task.IsCompleted || res.Task.CompletedAt == nil {
		t.Errorf("Expected completed task")
	}
	if res.Next == nil {
		t.Fatalf("Expected next occurrence")
	}
	if want := at(2024, time.February, 29, 9); !res.Next.DueDate.Equal(want) {
		t.Errorf("Expected next due %v, got %v", want, res.Next.DueDate)
	}

	again, err := f.taskSvc.Complete(ctx, task.ID, now)
	if err != nil {
		t.Fatalf("Failed to complete task again: %v", err)
	}
	if again.Next != nil {
		t.Errorf("Expected no second occurrence")
	}

	all, err := f.taskSvc.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(all))
	}

	if _, err := f.taskSvc.Uncomplete(ctx, task.ID, now); err != nil {
		t.Fatalf("Failed to uncomplete task: %v", err)
	}
	all, _ = f.taskSvc.List(ctx)
	if len(all) != 2 {
		t.Errorf("Expected spawned occurrence to survive uncomplete, got %d tasks", len(all))
	}
}

func TestCompleteToggleKeepsOneOpenOccurrence(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	due := at(2024, time.January, 10, 9)
	now := at(2024, time.January, 10, 10)
	task := f.create(t, TaskInput{Title: "Stretch", DueDate: &due, Recurrence: "daily"}, now)

	var firstNext string
	for i := 0; i < 3; i++ {
		res, err := f.taskSvc.Complete(ctx, task.ID, now)
		if err != nil {
			t.Fatalf("Failed to complete task: %v", err)
		}
		if res.Next == nil {
			t.Fatalf("Expected the open occurrence on round %d", i)
		}
		if i == 0 {
			firstNext = res.Next.ID
		} else if res.Next.ID != firstNext {
			t.Errorf("Expected round %d to reuse %s, got %s", i, firstNext, res.Next.ID)
		}
		if _, err := f.taskSvc.Uncomplete(ctx, task.ID, now); err != nil {
			t.Fatalf("Failed to uncomplete task: %v", err)
		}
	}

	all, err := f.taskSvc.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected the task and one occurrence, got %d tasks", len(all))
	}
}

func TestCompleteOneOff(t *testing.T) {
	f := newFixture(t, nil)
	now := at(2024, time.March, 1, 12)
	task := f.create(t, TaskInput{Title: "Call plumber"}, now)

	res, err := f.taskSvc.Complete(context.Background(), task.ID, now)
	if err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}
	if res.Next != nil || !res.Task.IsCompleted {
		t.Errorf("Unexpected completion %+v", res)
	}
	if _, err := f.taskSvc.Complete(context.Background(), "missing", now); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestHabitCheckIn(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := at(2024, time.April, 10, 8)

	habit := f.create(t, TaskInput{Title: "Meditate", CategoryName: "Habits"}, now)
	plain := f.create(t, TaskInput{Title: "Groceries"}, now)

	res, err := f.taskSvc.Complete(ctx, habit.ID, now)
	if err != nil {
		t.Fatalf("Failed to complete habit: %v", err)
	}
	if res.Task.IsCompleted || !res.Task.IsCompletedToday(now) || res.Next != nil {
		t.Errorf("Expected check-in instead of completion, got %+v", res.Task)
	}

	checked, err := f.taskSvc.CheckIn(ctx, habit.ID, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Failed to check in: %v", err)
	}
	if len(checked.HabitCompletionDates) != 1 {
		t.Errorf("Expected one check-in per day, got %v", checked.HabitCompletionDates)
	}

	tomorrow := now.Add(24 * time.Hour)
	if _, err := f.taskSvc.CheckIn(ctx, habit.ID, tomorrow); err != nil {
		t.Fatalf("Failed to check in: %v", err)
	}
	stored, err := f.taskSvc.Get(ctx, habit.ID)
	if err != nil {
		t.Fatalf("Failed to get habit: %v", err)
	}
	if stored.CurrentStreak(tomorrow) != 2 {
		t.Errorf("Expected streak 2, got %d", stored.CurrentStreak(tomorrow))
	}

	cleared, err := f.taskSvc.ClearCheckIn(ctx, habit.ID, tomorrow)
	if err != nil {
		t.Fatalf("Failed to clear check-in: %v", err)
	}
	if cleared.WasCompletedOn(tomorrow) || !cleared.WasCompletedOn(now) {
		t.Errorf("Expected only today's check-in cleared, got %v", cleared.HabitCompletionDates)
	}

	if _, err := f.taskSvc.CheckIn(ctx, plain.ID, now); !errors.Is(err, ErrNotHabit) {
		t.Errorf("Expected ErrNotHabit, got %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := at(2024, time.June, 3, 9)
	due := at(2024, time.June, 4, 9)
	task := f.create(t, TaskInput{Title: "Draft", CategoryName: "Work", DueDate: &due}, now)

	blank := " "
	if _, err := f.taskSvc.Update(ctx, task.ID, TaskPatch{Title: &blank}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}

	title, none, urgent, weekly := "Final draft", "", "urgent", "weekly"
	updated, err := f.taskSvc.Update(ctx, task.ID, TaskPatch{
		Title:        &title,
		ClearDue:     true,
		Priority:     &urgent,
		Recurrence:   &weekly,
		CategoryName: &none,
	})
	if err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}
	if updated.Title != title || updated.DueDate != nil || updated.Priority != model.PriorityUrgent ||
		updated.Recurrence != model.RecurrenceWeekly || updated.CategoryID != nil {
		t.Errorf("Unexpected update result %+v", updated)
	}

	habits := "Habits"
	moved, err := f.taskSvc.Update(ctx, task.ID, TaskPatch{CategoryName: &habits})
	if err != nil {
		t.Fatalf("Failed to move task: %v", err)
	}
	if !moved.IsHabit() {
		t.Errorf("Expected task moved to habits to become a habit")
	}
}

func TestCreateWithAnnotation(t *testing.T) {
	ann := &fakeAnnotator{res: AnnotationResult{
		Title:    "Buy oat milk",
		Category: "shopping",
		Context:  "Weekly groceries.",
	}}
	f := newFixture(t, ann)
	now := at(2024, time.July, 1, 9)

	task := f.create(t, TaskInput{Title: "milk", Enhance: true}, now)
	if ann.calls != 1 {
		t.Errorf("Expected one annotator call, got %d", ann.calls)
	}
	if task.Title != "Buy oat milk" || task.CategoryName() != "Shopping" || task.AIContext != "Weekly groceries." {
		t.Errorf("Expected annotation applied, got %+v", task)
	}

	ann.res = AnnotationResult{Category: "Garden"}
	plain := f.create(t, TaskInput{Title: "rake leaves", CategoryName: "Personal", Enhance: true}, now)
	if plain.CategoryName() != "Personal" {
		t.Errorf("Expected unknown suggested category to be ignored, got %q", plain.CategoryName())
	}

	f.create(t, TaskInput{Title: "no enhance"}, now)
	if ann.calls != 2 {
		t.Errorf("Expected annotator skipped without Enhance, got %d calls", ann.calls)
	}
}

func TestAnnotationFailureLeavesTaskUnchanged(t *testing.T) {
	ann := &fakeAnnotator{
		res: AnnotationResult{Title: "should not apply"},
		err: errors.New("upstream unavailable"),
	}
	f := newFixture(t, ann)
	ctx := context.Background()
	now := at(2024, time.July, 1, 9)

	task := f.create(t, TaskInput{Title: "milk", Notes: "2 liters", Enhance: true}, now)
	if task.Title != "milk" || task.Notes != "2 liters" || task.AIContext != "" {
		t.Errorf("Expected unchanged task, got %+v", task)
	}

	if _, err := f.taskSvc.Enhance(ctx, task.ID); !errors.Is(err, ErrAnnotation) {
		t.Errorf("Expected ErrAnnotation, got %v", err)
	}
	stored, err := f.taskSvc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if stored.Title != "milk" || stored.AIContext != "" {
		t.Errorf("Expected stored task unchanged, got %+v", stored)
	}
}

func TestEnhanceWithoutAnnotator(t *testing.T) {
	f := newFixture(t, nil)
	task := f.create(t, TaskInput{Title: "milk", Enhance: true}, time.Now())
	if _, err := f.taskSvc.Enhance(context.Background(), task.ID); !errors.Is(err, ErrNoAnnotator) {
		t.Errorf("Expected ErrNoAnnotator, got %v", err)
	}
}

func TestRecoverMissingOccurrences(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	created := at(2024, time.February, 1, 9)
	due := at(2024, time.February, 5, 9)

	task := f.create(t, TaskInput{Title: "Water plants", DueDate: &due, Recurrence: "weekly"}, created)
	task.Complete(created)
	if err := f.tasks.Save(ctx, task); err != nil {
		t.Fatalf("Failed to save task: %v", err)
	}

	now := at(2024, time.February, 20, 12)
	recovered, err := f.taskSvc.RecoverMissingOccurrences(ctx, now)
	if err != nil {
		t.Fatalf("Failed to recover: %v", err)
	}
	if len(recovered) != 1 {
		t.Fatalf("Expected one recovered occurrence, got %d", len(recovered))
	}
	if next := recovered[0].DueDate; !next.After(now) {
		t.Errorf("Expected future due date, got %v", next)
	}

	again, err := f.taskSvc.RecoverMissingOccurrences(ctx, now)
	if err != nil {
		t.Fatalf("Failed to recover: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("Expected recovery to be idempotent, got %d", len(again))
	}
}

func TestResolveAndDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	task := f.create(t, TaskInput{Title: "Find me"}, time.Now())

	found, err := f.taskSvc.Resolve(ctx, task.ID[:8])
	if err != nil || found.ID != task.ID {
		t.Errorf("Expected prefix match, got %v (%v)", found, err)
	}
	if _, err := f.taskSvc.Resolve(ctx, "zzzz"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}

	if err := f.taskSvc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if err := f.taskSvc.Delete(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestBucketsAndSummary(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := at(2024, time.August, 14, 10)
	yesterday := now.Add(-24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	f.create(t, TaskInput{Title: "Overdue", DueDate: &yesterday}, now)
	f.create(t, TaskInput{Title: "Urgent", Priority: "urgent"}, now)
	f.create(t, TaskInput{Title: "Later", DueDate: &nextWeek}, now)
	f.create(t, TaskInput{Title: "Walk", CategoryName: "Habits"}, now)

	b, err := f.taskSvc.Buckets(ctx, now)
	if err != nil {
		t.Fatalf("Failed to bucket: %v", err)
	}
	if len(b.NeedsAttention) != 2 || b.NeedsAttention[0].Title != "Overdue" {
		t.Errorf("Unexpected needs attention %v", titles(b.NeedsAttention))
	}
	if len(b.Habits) != 1 || len(b.Scheduled) != 2 {
		t.Errorf("Unexpected buckets habits=%d scheduled=%d", len(b.Habits), len(b.Scheduled))
	}

	sum, err := f.taskSvc.Summary(ctx, now)
	if err != nil {
		t.Fatalf("Failed to summarize: %v", err)
	}
	if sum.NeedsAttentionCount != 2 || sum.TopItemTitles[0] != "Overdue" {
		t.Errorf("Unexpected summary %+v", sum)
	}
}

func titles(tasks []*model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}
