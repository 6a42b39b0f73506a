package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"reminders/internal/model"
)

func openTestDB(t *testing.T, driver string) *gorm.DB {
	t.Helper()
	db, err := NewDB(driver, ":memory:", zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestTaskCRUD(t *testing.T) {
	db := openTestDB(t, DriverSQLite3)
	ctx := context.Background()
	tasks := NewTaskRepository(db)
	categories := NewCategoryRepository(db)

	habits := model.NewCategory(model.HabitsCategoryName, "repeat", "purple", 4)
	if err := categories.Save(ctx, habits); err != nil {
		t.Fatalf("Failed to save category: %v", err)
	}

	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	due := now.Add(24 * time.Hour)
	task := model.NewTask("Stretch", habits, now)
	task.Notes = "10 minutes"
	task.DueDate = &due
	task.Recurrence = model.RecurrenceDaily
	task.Priority = model.PriorityUrgent
	task.AIContext = "Morning mobility routine."
	task.CheckInHabitToday(now)

	if err := tasks.Save(ctx, task); err != nil {
		t.Fatalf("Failed to save task: %v", err)
	}

	fetched, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched.Title != "Stretch" || fetched.Notes != "10 minutes" || fetched.AIContext != task.AIContext {
		t.Errorf("Unexpected task %+v", fetched)
	}
	if fetched.DueDate == nil || !fetched.DueDate.Equal(due) {
		t.Errorf("Expected due %v, got %v", due, fetched.DueDate)
	}
	if fetched.Recurrence != model.RecurrenceDaily || fetched.Priority != model.PriorityUrgent || fetched.Kind != model.KindHabit {
		t.Errorf("Unexpected enums %s %s %s", fetched.Recurrence, fetched.Priority, fetched.Kind)
	}
	if fetched.Category == nil || fetched.Category.Name != model.HabitsCategoryName {
		t.Errorf("Expected category preloaded, got %+v", fetched.Category)
	}
	if len(fetched.HabitCompletionDates) != 1 || !fetched.WasCompletedOn(now) {
		t.Errorf("Expected habit history to round trip, got %v", fetched.HabitCompletionDates)
	}

	fetched.Title = "Stretch longer"
	fetched.Complete(now)
	if err := tasks.Save(ctx, fetched); err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}
	list, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Stretch longer" || !list[0].IsCompleted || list[0].CompletedAt == nil {
		t.Errorf("Unexpected list %+v", list)
	}

	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if _, err := tasks.Get(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := tasks.Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSaveAllIsAtomic(t *testing.T) {
	db := openTestDB(t, DriverSQLite3)
	ctx := context.Background()
	tasks := NewTaskRepository(db)

	now := time.Now()
	good := model.NewTask("Good", nil, now)
	missing := "no-such-category"
	bad := model.NewTask("Bad", nil, now)
	bad.CategoryID = &missing

	if err := tasks.SaveAll(ctx, good, bad); err == nil {
		t.Fatalf("Expected foreign key failure")
	}
	list, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected rollback, found %d tasks", len(list))
	}
}

func TestLegacyValuesAreMigratedOnLoad(t *testing.T) {
	db := openTestDB(t, DriverSQLite3)
	ctx := context.Background()
	tasks := NewTaskRepository(db)

	task := model.NewTask("Legacy", nil, time.Now())
	if err := tasks.Save(ctx, task); err != nil {
		t.Fatalf("Failed to save task: %v", err)
	}
	if err := db.Exec("UPDATE tasks SET priority = ?, recurrence = ?, kind = ? WHERE id = ?", "3", "everyOtherTuesday", "", task.ID).Error; err != nil {
		t.Fatalf("Failed to write legacy values: %v", err)
	}

	fetched, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched.Priority != model.PriorityUrgent {
		t.Errorf("Expected legacy 3 to map to urgent, got %s", fetched.Priority)
	}
	if fetched.Recurrence != model.RecurrenceNone {
		t.Errorf("Expected unknown recurrence to map to none, got %s", fetched.Recurrence)
	}
	if fetched.Kind != model.KindStandard {
		t.Errorf("Expected empty kind to map to standard, got %s", fetched.Kind)
	}
}

func TestDeleteCategoryUnlinksTasks(t *testing.T) {
	db := openTestDB(t, DriverSQLite3)
	ctx := context.Background()
	tasks := NewTaskRepository(db)
	categories := NewCategoryRepository(db)

	work := model.NewCategory("Work", "briefcase", "orange", 1)
	if err := categories.Save(ctx, work); err != nil {
		t.Fatalf("Failed to save category: %v", err)
	}
	task := model.NewTask("Report", work, time.Now())
	if err := tasks.Save(ctx, task); err != nil {
		t.Fatalf("Failed to save task: %v", err)
	}

	if err := categories.Delete(ctx, work.ID); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}
	fetched, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Expected task to survive category delete: %v", err)
	}
	if fetched.CategoryID != nil || fetched.Category != nil {
		t.Errorf("Expected uncategorized task, got %v", fetched.CategoryID)
	}
	if err := categories.Delete(ctx, work.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCategoryLookup(t *testing.T) {
	db := openTestDB(t, DriverSQLite3)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	for _, c := range model.DefaultCategories() {
		if err := categories.Save(ctx, c); err != nil {
			t.Fatalf("Failed to save category: %v", err)
		}
	}

	list, err := categories.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list categories: %v", err)
	}
	if len(list) != 5 || list[0].Name != "Personal" || list[4].Name != model.HabitsCategoryName {
		t.Errorf("Unexpected category order %+v", list)
	}

	found, err := categories.FindByName(ctx, "  work ")
	if err != nil || found.Name != "Work" {
		t.Errorf("Expected case-insensitive match, got %+v (%v)", found, err)
	}
	if _, err := categories.FindByName(ctx, "Garden"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	garden, created, err := categories.GetOrCreate(ctx, "Garden")
	if err != nil || !created || garden.SortOrder != 5 {
		t.Errorf("Expected new category at sort order 5, got %+v created=%t (%v)", garden, created, err)
	}
	again, created, err := categories.GetOrCreate(ctx, "garden")
	if err != nil || created || again.ID != garden.ID {
		t.Errorf("Expected existing category, got %+v created=%t (%v)", again, created, err)
	}
	none, created, err := categories.GetOrCreate(ctx, "  ")
	if none != nil || created || err != nil {
		t.Errorf("Expected nil for blank name")
	}
}

func TestModerncDriver(t *testing.T) {
	db := openTestDB(t, DriverModernc)
	ctx := context.Background()
	tasks := NewTaskRepository(db)

	due := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	task := model.NewTask("Pure Go", nil, due.Add(-time.Hour))
	task.DueDate = &due
	if err := tasks.Save(ctx, task); err != nil {
		t.Fatalf("Failed to save task: %v", err)
	}
	fetched, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched.Title != "Pure Go" || fetched.DueDate == nil || !fetched.DueDate.Equal(due) {
		t.Errorf("Unexpected task %+v", fetched)
	}
}

func TestModerncDSN(t *testing.T) {
	if got := moderncDSN(":memory:"); got != ":memory:" {
		t.Errorf("Expected memory DSN untouched, got %q", got)
	}
	got := moderncDSN("/var/lib/reminders/data.db")
	want := "file:///var/lib/reminders/data.db?_pragma=busy_timeout%285000%29&mode=rwc"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestChatUpsert(t *testing.T) {
	db := openTestDB(t, DriverSQLite3)
	ctx := context.Background()
	chats := NewChatRepository(db)

	if _, err := chats.Upsert(ctx, 42, "old", "Ann"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	chat, err := chats.Upsert(ctx, 42, "new", "Ann")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if chat.Username != "new" {
		t.Errorf("Expected refreshed username, got %q", chat.Username)
	}
	if _, err := chats.Upsert(ctx, -100, "group", ""); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	all, err := chats.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Unexpected chats %+v", all)
	}
}
