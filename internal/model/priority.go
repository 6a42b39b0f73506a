package model

import "strings"

// Priority is the two-level urgency of a task.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities; higher is more urgent.
func (p Priority) Rank() int {
	if p == PriorityUrgent {
		return 1
	}
	return 0
}

func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityUrgent
}

// MigratePriority maps a stored raw value, including the legacy four-level
// scale (none/low/medium/high or 0-3), onto the current enum. Anything it
// does not recognise becomes PriorityNormal.
func MigratePriority(raw string) Priority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "urgent", "high", "2", "3":
		return PriorityUrgent
	default:
		return PriorityNormal
	}
}

// PriorityFromNative converts the platform reminders scale, where 1-4 is
// high, 5 medium, 6-9 low and 0 unset.
func PriorityFromNative(v int) Priority {
	if v >= 1 && v <= 4 {
		return PriorityUrgent
	}
	return PriorityNormal
}

// Native is the inverse of PriorityFromNative.
func (p Priority) Native() int {
	if p == PriorityUrgent {
		return 1
	}
	return 0
}

func (p Priority) String() string {
	if !p.Valid() {
		return string(PriorityNormal)
	}
	return string(p)
}

