package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the canonical status of a task. The backing system
// uses a partially overlapping vocabulary; NormalizeStatus and
// DenormalizeStatus translate between the two.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
	StatusDeferred   TaskStatus = "deferred"
	StatusCancelled  TaskStatus = "cancelled"
	StatusReview     TaskStatus = "review"
)

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Task is the canonical task entity produced after format detection, status
// normalization and hierarchy reconstruction. IDs are strings and may carry
// dot-separated segments encoding ancestry ("3", "3.1", "3.1.2").
type Task struct {
	ID           string       `json:"id" validate:"required"`
	Title        string       `json:"title" validate:"required"`
	Description  string       `json:"description,omitempty"`
	Details      string       `json:"details,omitempty"`
	TestStrategy string       `json:"testStrategy,omitempty"`
	Status       TaskStatus   `json:"status" validate:"required,oneof=todo in-progress completed blocked deferred cancelled review"`
	Priority     TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Category     string       `json:"category,omitempty"`
	Dependencies []string     `json:"dependencies,omitempty"`             // ids that must complete before this task is unblocked
	Subtasks     []Task       `json:"subtasks,omitempty" validate:"dive"` // owned exclusively by this task
	Created      string       `json:"created,omitempty"`                  // ISO-8601
	Updated      string       `json:"updated,omitempty"`                  // ISO-8601
	ParentID     string       `json:"parentId,omitempty"`                 // back-reference, lookup only
}

var validate = validator.New()

// Validate checks the canonical invariants before a task is persisted: id
// and title present, status and priority inside the vocabulary, subtasks
// recursively. Reads never call this; the sanitizer repairs instead of
// rejecting.
func (t *Task) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, fmt.Sprintf("%s violates %q", e.StructNamespace(), e.Tag()))
	}
	return fmt.Errorf("invalid task: %s", strings.Join(parts, "; "))
}

// Timestamp returns the current time formatted the way task documents store it.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewTask creates a task with defaults applied.
func NewTask(id, title string) Task {
	now := Timestamp()
	return Task{
		ID:       id,
		Title:    title,
		Status:   StatusTodo,
		Priority: PriorityMedium,
		Created:  now,
		Updated:  now,
	}
}

// ParentOf returns the id of the task's dotted-notation parent, or "" for a
// root-level id. ParentOf("3.1.2") == "3.1".
func ParentOf(id string) string {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return ""
	}
	return id[:i]
}
