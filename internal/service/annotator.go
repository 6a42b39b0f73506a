package service

import (
	"context"
	"fmt"
	"strings"

	"reminders/internal/model"
)

// AnnotationRequest describes a task to an external annotation service.
type AnnotationRequest struct {
	Title      string   `json:"title"`
	Notes      string   `json:"notes,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// AnnotationResult carries suggested replacements. Empty fields are left
// alone.
type AnnotationResult struct {
	Title    string `json:"title,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
	Context  string `json:"context,omitempty"`
}

// Annotator enriches a task with a cleaned up title, notes, a suggested
// category and free-form context.
type Annotator interface {
	Annotate(ctx context.Context, req AnnotationRequest) (AnnotationResult, error)
}

// annotate asks the annotator about task and applies the answer. On error
// task is not touched.
func annotate(ctx context.Context, a Annotator, task *model.Task, categories []*model.Category) error {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	res, err := a.Annotate(ctx, AnnotationRequest{
		Title:      task.Title,
		Notes:      task.Notes,
		Categories: names,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAnnotation, err)
	}

	if title := strings.TrimSpace(res.Title); title != "" {
		task.Title = title
	}
	if notes := strings.TrimSpace(res.Notes); notes != "" {
		task.Notes = notes
	}
	if res.Category != "" {
		for _, c := range categories {
			if c.MatchesName(res.Category) {
				task.SetCategory(c)
				break
			}
		}
	}
	if res.Context != "" {
		task.AIContext = res.Context
	}
	return nil
}
