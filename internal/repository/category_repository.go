package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"reminders/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	if err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, fmt.Errorf("find category %s: %w", id, notFound(err))
	}
	return &category, nil
}

// FindByName matches names ignoring case and surrounding space.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(TRIM(name)) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("sort_order ASC").
		First(&category).Error
	if err != nil {
		return nil, fmt.Errorf("find category %q: %w", name, notFound(err))
	}
	return &category, nil
}

// GetOrCreate returns the category called name, creating it at the end of
// the sort order when missing. An empty name yields nil.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, name string) (*model.Category, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, nil
	}

	category, err := r.FindByName(ctx, name)
	switch {
	case err == nil:
		return category, false, nil
	case errors.Is(err, ErrNotFound):
		var maxOrder int
		if err := r.db.WithContext(ctx).Model(&model.Category{}).
			Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
			return nil, false, fmt.Errorf("create category: %w", err)
		}
		category = model.NewCategory(name, "", "", maxOrder+1)
		if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
			return nil, false, fmt.Errorf("create category: %w", err)
		}
		return category, true, nil
	default:
		return nil, false, err
	}
}

func (r *CategoryRepository) Save(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

// Delete removes a category. Its tasks become uncategorized standard tasks;
// they are never deleted with it.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("category_id = ?", id).
			Updates(map[string]interface{}{
				"category_id": nil,
				"kind":        model.KindStandard,
			}).Error; err != nil {
			return fmt.Errorf("unlink tasks: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.Category{})
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete category %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
