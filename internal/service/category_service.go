package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"reminders/internal/model"
	"reminders/internal/repository"
)

// CategoryInput represents data required to create a category.
type CategoryInput struct {
	Name      string
	Icon      string
	ColorName string
}

// CategoryService provides helpers around categories.
type CategoryService struct {
	categories CategoryStore
	log        zerolog.Logger
}

func NewCategoryService(categories CategoryStore, log zerolog.Logger) *CategoryService {
	return &CategoryService{categories: categories, log: log}
}

// EnsureDefaults seeds the default categories into an empty store. It
// reports whether anything was written.
func (s *CategoryService) EnsureDefaults(ctx context.Context) (bool, error) {
	existing, err := s.categories.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, c := range model.DefaultCategories() {
		if err := s.categories.Save(ctx, c); err != nil {
			return false, err
		}
	}
	s.log.Info().Msg("seeded default categories")
	return true, nil
}

func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	return s.categories.List(ctx)
}

// Create adds a category after the existing ones. Names are unique ignoring
// case.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	_, err := s.categories.FindByName(ctx, name)
	switch {
	case err == nil:
		return nil, ErrCategoryExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	order := 0
	for _, c := range existing {
		if c.SortOrder >= order {
			order = c.SortOrder + 1
		}
	}

	category := model.NewCategory(name, strings.TrimSpace(input.Icon), strings.TrimSpace(input.ColorName), order)
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category; its tasks become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return categoryErr(err)
	}
	s.log.Info().Str("category_id", id).Msg("category deleted")
	return nil
}
