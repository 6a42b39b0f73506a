package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HabitsCategoryName is the reserved category whose tasks are habits.
const HabitsCategoryName = "Habits"

// Category groups tasks by area (personal, work, habits, etc.).
type Category struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"index"`
	Icon      string
	ColorName string
	IsDefault bool `gorm:"default:false"`
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCategory(name, icon, colorName string, sortOrder int) *Category {
	return &Category{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      icon,
		ColorName: colorName,
		SortOrder: sortOrder,
	}
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsHabits reports whether c is the reserved habits category. The match is
// exact, as stored data has always relied on it.
func (c *Category) IsHabits() bool {
	return c != nil && c.Name == HabitsCategoryName
}

// MatchesName compares names ignoring case and surrounding space.
func (c *Category) MatchesName(name string) bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name))
}

// DefaultCategories is the set seeded on first launch.
func DefaultCategories() []*Category {
	defs := []struct{ name, icon, color string }{
		{"Personal", "person", "blue"},
		{"Work", "briefcase", "orange"},
		{"Shopping", "cart", "green"},
		{"Health", "heart", "red"},
		{HabitsCategoryName, "repeat", "purple"},
	}
	out := make([]*Category, 0, len(defs))
	for i, d := range defs {
		c := NewCategory(d.name, d.icon, d.color, i)
		c.IsDefault = true
		out = append(out, c)
	}
	return out
}
