package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEnsureDefaultsSeedsOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	seeded, err := f.categorySvc.EnsureDefaults(ctx)
	if err != nil {
		t.Fatalf("Failed to ensure defaults: %v", err)
	}
	if seeded {
		t.Errorf("Expected no seeding into a populated store")
	}

	list, err := f.categorySvc.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list categories: %v", err)
	}
	want := []string{"Personal", "Work", "Shopping", "Health", "Habits"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d categories, got %d", len(want), len(list))
	}
	for i, c := range list {
		if c.Name != want[i] || !c.IsDefault {
			t.Errorf("Category %d: expected default %q, got %+v", i, want[i], c)
		}
	}
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.categorySvc.Create(ctx, CategoryInput{Name: " "}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
	if _, err := f.categorySvc.Create(ctx, CategoryInput{Name: "WORK"}); !errors.Is(err, ErrCategoryExists) {
		t.Errorf("Expected ErrCategoryExists, got %v", err)
	}

	garden, err := f.categorySvc.Create(ctx, CategoryInput{Name: "Garden", Icon: "leaf", ColorName: "green"})
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if garden.SortOrder != 5 || garden.IsDefault {
		t.Errorf("Unexpected category %+v", garden)
	}
}

func TestDeleteCategoryKeepsTasks(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	task := f.create(t, TaskInput{Title: "Report", CategoryName: "Work"}, time.Now())

	if err := f.categorySvc.Delete(ctx, *task.CategoryID); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}
	stored, err := f.taskSvc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Expected task to survive: %v", err)
	}
	if stored.CategoryID != nil {
		t.Errorf("Expected uncategorized task")
	}
	if err := f.categorySvc.Delete(ctx, "missing"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestDeleteHabitsCategoryTurnsHabitsIntoTasks(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := at(2024, time.May, 6, 9)
	due := now.Add(-48 * time.Hour)
	habit := f.create(t, TaskInput{Title: "Floss", CategoryName: "Habits", DueDate: &due}, now)
	if !habit.IsHabit() {
		t.Fatalf("Expected a habit")
	}

	if err := f.categorySvc.Delete(ctx, *habit.CategoryID); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}
	stored, err := f.taskSvc.Get(ctx, habit.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if stored.IsHabit() || stored.CategoryID != nil || !stored.IsOverdue(now) {
		t.Errorf("Expected an overdue uncategorized task, got kind=%s category=%v", stored.Kind, stored.CategoryID)
	}

	b, err := f.taskSvc.Buckets(ctx, now)
	if err != nil {
		t.Fatalf("Failed to bucket: %v", err)
	}
	if len(b.Habits) != 0 || len(b.NeedsAttention) != 1 || len(b.ByCategory) != 1 {
		t.Errorf("Expected the task in attention and by-category, got habits=%d attention=%d groups=%d",
			len(b.Habits), len(b.NeedsAttention), len(b.ByCategory))
	}
}
