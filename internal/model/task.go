package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskKind separates habits from ordinary reminders.
type TaskKind string

const (
	KindStandard TaskKind = "standard"
	KindHabit    TaskKind = "habit"
)

// ParseKind maps a stored value onto a TaskKind; empty or unknown values
// are standard.
func ParseKind(raw string) TaskKind {
	if strings.EqualFold(strings.TrimSpace(raw), string(KindHabit)) {
		return KindHabit
	}
	return KindStandard
}

// Task represents a single reminder or habit.
type Task struct {
	ID                   string `gorm:"primaryKey"`
	Title                string
	Notes                string
	DueDate              *time.Time `gorm:"index"`
	Priority             Priority   `gorm:"default:normal"`
	IsCompleted          bool       `gorm:"default:false;index"`
	CompletedAt          *time.Time
	Recurrence           Recurrence  `gorm:"default:none"`
	Kind                 TaskKind    `gorm:"default:standard"`
	CategoryID           *string     `gorm:"index"`
	Category             *Category   `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	HabitCompletionDates []time.Time `gorm:"serializer:json;type:text"`
	AIContext            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewTask builds an incomplete, non-recurring task. Kind follows the
// category: tasks created in the habits category are habits.
func NewTask(title string, category *Category, now time.Time) *Task {
	t := &Task{
		ID:         uuid.NewString(),
		Title:      title,
		Priority:   PriorityNormal,
		Recurrence: RecurrenceNone,
		Kind:       KindStandard,
		CreatedAt:  now,
	}
	t.SetCategory(category)
	return t
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// SetCategory moves t to c (nil for uncategorized).
func (t *Task) SetCategory(c *Category) {
	t.Category = c
	if c == nil {
		t.CategoryID = nil
		t.Kind = KindStandard
		return
	}
	id := c.ID
	t.CategoryID = &id
	if c.IsHabits() {
		t.Kind = KindHabit
	} else {
		t.Kind = KindStandard
	}
}

// IsHabit reports whether t is tracked by daily check-in. Rows written
// before kinds existed are recognised by their category name.
func (t *Task) IsHabit() bool {
	return t.Kind == KindHabit || t.Category.IsHabits()
}

func (t *Task) IsRecurring() bool {
	return t.Recurrence.IsRecurring()
}

// CategoryName returns the name of the loaded category, or "".
func (t *Task) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// Complete marks t permanently done.
func (t *Task) Complete(now time.Time) {
	t.IsCompleted = true
	t.CompletedAt = &now
}

func (t *Task) Uncomplete() {
	t.IsCompleted = false
	t.CompletedAt = nil
}
