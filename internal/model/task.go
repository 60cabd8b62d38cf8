package model

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SortField is the closed set of columns a task list can be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortTitle     SortField = "title"
	SortStatus    SortField = "status"
)

func (f SortField) Valid() bool {
	switch f {
	case SortCreatedAt, SortUpdatedAt, SortTitle, SortStatus:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

type TaskFilter struct {
	Status    *TaskStatus
	Search    *string
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// DefaultTaskFilter returns the first page of ten tasks, newest first.
func DefaultTaskFilter() TaskFilter {
	return TaskFilter{
		Page:      1,
		Limit:     10,
		SortBy:    SortCreatedAt,
		SortOrder: SortDesc,
	}
}

func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TaskPatch carries the fields of a partial update. Nil pointers are left untouched.
type TaskPatch struct {
	Title       *string        `json:"title"`
	Description OptionalString `json:"description"`
	Status      *TaskStatus    `json:"status"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.Description.Set && p.Status == nil
}

// OptionalString tells an absent JSON field apart from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
