package service

import (
	"errors"

	"reminders/internal/repository"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyName        = errors.New("name is required")
	ErrNotHabit         = errors.New("task is not a habit")
	ErrAmbiguousID      = errors.New("id prefix matches more than one task")
	ErrNoAnnotator      = errors.New("annotation is not configured")
	ErrAnnotation       = errors.New("annotation failed")
)

func taskErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func categoryErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}
