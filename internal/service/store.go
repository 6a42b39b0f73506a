package service

import (
	"context"

	"reminders/internal/model"
)

// TaskStore persists tasks. Implemented by repository.TaskRepository.
type TaskStore interface {
	List(ctx context.Context) ([]*model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	// SaveAll writes every task or none of them.
	SaveAll(ctx context.Context, tasks ...*model.Task) error
	Delete(ctx context.Context, id string) error
}

// CategoryStore persists categories. Implemented by
// repository.CategoryRepository.
type CategoryStore interface {
	List(ctx context.Context) ([]*model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	GetOrCreate(ctx context.Context, name string) (*model.Category, bool, error)
	Save(ctx context.Context, category *model.Category) error
	// Delete leaves the category's tasks uncategorized.
	Delete(ctx context.Context, id string) error
}
