package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common validation errors for Task
var (
	ErrTaskIDEmpty         = errors.New("task ID cannot be empty")
	ErrTaskUserIDEmpty     = errors.New("task user ID cannot be empty")
	ErrTaskTitleEmpty      = errors.New("title is required")
	ErrTaskTitleTooLong    = errors.New("title cannot exceed 100 characters")
	ErrTaskDescTooLong     = errors.New("description cannot exceed 500 characters")
	ErrTaskStatusInvalid   = errors.New("status must be todo, in-progress, or done")
	ErrTaskPriorityInvalid = errors.New("priority must be low, medium, or high")
)

// Task field length limits.
const (
	TaskTitleMaxLen = 100
	TaskDescMaxLen  = 500
)

// Task represents a single task record owned by exactly one user.
// The UserID reference exists for access-control filtering only; it is
// never traversed for business logic.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewTask creates a new Task owned by the given user. Empty status and
// priority fall back to the defaults (todo, medium). Returns an error if
// validation fails.
func NewTask(userID uuid.UUID, title, description string, status TaskStatus, priority TaskPriority) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      status,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if len([]rune(t.Title)) > TaskTitleMaxLen {
		return ErrTaskTitleTooLong
	}

	if len([]rune(t.Description)) > TaskDescMaxLen {
		return ErrTaskDescTooLong
	}

	if !ValidTaskStatus(t.Status) {
		return ErrTaskStatusInvalid
	}

	if !ValidTaskPriority(t.Priority) {
		return ErrTaskPriorityInvalid
	}

	return nil
}

// Apply applies a partial update to the task. Nil fields are left
// untouched; supplied fields are re-validated before being set.
func (t *Task) Apply(title, description *string, status *TaskStatus, priority *TaskPriority) error {
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return ErrTaskTitleEmpty
		}
		if len([]rune(trimmed)) > TaskTitleMaxLen {
			return ErrTaskTitleTooLong
		}
		t.Title = trimmed
	}

	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if len([]rune(trimmed)) > TaskDescMaxLen {
			return ErrTaskDescTooLong
		}
		t.Description = trimmed
	}

	if status != nil {
		if !ValidTaskStatus(*status) {
			return ErrTaskStatusInvalid
		}
		t.Status = *status
	}

	if priority != nil {
		if !ValidTaskPriority(*priority) {
			return ErrTaskPriorityInvalid
		}
		t.Priority = *priority
	}

	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidTaskStatus checks if the given status is a valid TaskStatus.
func ValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// ValidTaskPriority checks if the given priority is a valid TaskPriority.
func ValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
