package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reminders/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns every task with its category loaded, oldest first.
func (r *TaskRepository) List(ctx context.Context) ([]*model.Task, error) {
	var tasks []*model.Task
	if err := r.db.WithContext(ctx).Preload("Category").
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		normalizeTask(t)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("id = ?", id).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, notFound(err))
	}
	normalizeTask(&task)
	return &task, nil
}

// Save inserts or fully updates a task. The category row is never written
// through the task.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := saveTask(r.db.WithContext(ctx), task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// SaveAll writes tasks in one transaction.
func (r *TaskRepository) SaveAll(ctx context.Context, tasks ...*model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tasks {
			if err := saveTask(tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Delete removes a task, regardless of it being recurring or not.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}
	return nil
}

func saveTask(db *gorm.DB, task *model.Task) error {
	if task.Category != nil && task.CategoryID == nil {
		id := task.Category.ID
		task.CategoryID = &id
	}
	return db.Omit(clause.Associations).Save(task).Error
}

// normalizeTask maps legacy or unknown stored values onto the current enums.
func normalizeTask(t *model.Task) {
	t.Priority = model.MigratePriority(string(t.Priority))
	t.Recurrence = model.ParseRecurrence(string(t.Recurrence))
	t.Kind = model.ParseKind(string(t.Kind))
}
