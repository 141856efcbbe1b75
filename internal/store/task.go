package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// Listing defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// DefaultSortField is used when the requested sort field is not allowed.
const DefaultSortField = "createdAt"

// Sort directions accepted by TaskListCriteria.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// allowedSortFields is the whitelist of task fields a listing may sort by.
var allowedSortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"title":     true,
	"status":    true,
	"priority":  true,
}

// TaskListCriteria captures the raw filter/search/sort/page parameters of a
// task listing request. Call Normalize before handing it to a store.
type TaskListCriteria struct {
	// Search is an optional free-text term matched case-insensitively as a
	// substring of title or description.
	Search string

	// Status filters by task status. Values outside the status enum are
	// silently ignored rather than rejected.
	Status string

	// Priority filters by task priority, with the same silent-ignore policy.
	Priority string

	// SortBy names the sort field; unknown fields fall back to createdAt.
	SortBy string

	// Order is asc or desc; anything else falls back to desc.
	Order string

	Page  int
	Limit int
}

// Normalize applies the listing defaults and the silent-ignore policy for
// invalid filter values. It returns the receiver for chaining.
//
// Invalid status/priority filters are dropped here on purpose, while the
// same fields hard-reject on create/update. The asymmetry mirrors existing
// behavior: a stale filter link should still render a page.
func (c TaskListCriteria) Normalize() TaskListCriteria {
	if !domain.ValidTaskStatus(domain.TaskStatus(c.Status)) {
		c.Status = ""
	}
	if !domain.ValidTaskPriority(domain.TaskPriority(c.Priority)) {
		c.Priority = ""
	}
	if !allowedSortFields[c.SortBy] {
		c.SortBy = DefaultSortField
	}
	if c.Order != OrderAsc && c.Order != OrderDesc {
		c.Order = OrderDesc
	}
	if c.Page < 1 {
		c.Page = DefaultPage
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}
	return c
}

// Offset returns the number of rows to skip for the criteria's page.
func (c TaskListCriteria) Offset() int {
	return (c.Page - 1) * c.Limit
}

// TaskUpdate carries a partial task mutation. Nil fields are left untouched
// on the stored task.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
}

// TaskStore defines the interface for task data persistence. Every
// operation is scoped to the owning user: a task belonging to another user
// is reported as ErrTaskNotFound, never as a permission error.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID for the given owner.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// Update applies a partial update to a task owned by ownerID and returns
	// the updated task. Omitted (nil) fields retain their prior values.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete removes a task owned by ownerID.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error

	// List returns one page of the owner's tasks matching the criteria,
	// plus the total count of the full filtered set (not just the page), so
	// callers can derive the page count.
	List(ctx context.Context, ownerID uuid.UUID, criteria TaskListCriteria) ([]*domain.Task, int, error)
}
