package types

import (
	"strings"
	"time"
)

// Priority controls eviction order only. It never affects expiry.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the eviction weight of a priority level.
// Higher-priority entries behave as if they were accessed further in the future.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// ParsePriority maps a string onto a Priority, defaulting to medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(s) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Category groups cache entries for bulk clearing and key routing.
type Category string

const (
	CategoryAppointments Category = "appointments"
	CategoryStaff        Category = "staff"
	CategoryAnalytics    Category = "analytics"
	CategoryUIState      Category = "ui-state"
	CategoryAPIResponse  Category = "api-response"
)

// CategoryOf derives the category from a cache key.
// Keys follow the form "<category>:<rest>". Unknown prefixes fall back to
// api-response so that ad-hoc keys still participate in bulk clearing.
func CategoryOf(key string) Category {
	prefix, _, _ := strings.Cut(key, ":")
	switch Category(prefix) {
	case CategoryAppointments, CategoryStaff, CategoryAnalytics, CategoryUIState, CategoryAPIResponse:
		return Category(prefix)
	default:
		return CategoryAPIResponse
	}
}

// Entry is intentionally mutable for timestamps and hit counting.
// Timestamp races are acceptable.
type Entry struct {
	Key            string
	Value          []byte // serialized JSON payload, compressed when Compressed is set
	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpireAt       time.Time // zero => no TTL
	SizeBytes      int64     // stored size, after compression if any
	HitCount       int64
	Priority       Priority
	Category       Category
	Compressed     bool
}
