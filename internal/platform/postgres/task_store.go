package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// taskSortColumns maps the sort field names accepted on the API to the
// underlying column names. Only fields present here may appear in ORDER BY;
// everything else is interpolated as a bind parameter.
var taskSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owning user doesn't exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO tasks (id, user_id, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by ID for the given owner. A task that exists but
// belongs to another user is reported the same as a missing one.
// Returns store.ErrTaskNotFound if no such task exists for that owner.
func (s *PostgresTaskStore) GetByID(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, title, description, status, priority, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, taskID, ownerID)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}

		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// It applies a partial update to a task owned by ownerID; nil fields keep
// their prior values. The merged task is re-validated before being written.
// Returns store.ErrTaskNotFound if no such task exists for that owner.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.GetByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if err := task.Apply(update.Title, update.Description, update.Status, update.Priority); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.UpdatedAt,
		taskID,
		ownerID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return nil, err
	}

	log.Info("task updated successfully",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// It removes a task owned by ownerID.
// Returns store.ErrTaskNotFound if no such task exists for that owner.
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := s.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted successfully",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// List implements store.TaskStore.List
// It returns one page of the owner's tasks matching the criteria plus the
// total count of the full filtered set. The count is computed with a
// separate query so a page past the end still reports the true total.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	criteria store.TaskListCriteria,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	criteria = criteria.Normalize()
	listSQL, countSQL, listArgs, countArgs := buildTaskListQuery(ownerID, criteria)

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, 0, MapError(err)
	}

	tasks := []*domain.Task{}
	if total == 0 {
		return tasks, 0, nil
	}

	rows, err := s.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var task domain.Task
		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()),
				slog.String("user_id", ownerID.String()))
			return nil, 0, MapError(err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, 0, MapError(err)
	}

	return tasks, total, nil
}

// buildTaskListQuery assembles the page and count queries for a normalized
// listing criteria. Filter values travel as bind parameters; the only
// interpolated pieces are the whitelist-mapped sort column and direction.
func buildTaskListQuery(
	ownerID uuid.UUID,
	c store.TaskListCriteria,
) (listSQL, countSQL string, listArgs, countArgs []interface{}) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	if c.Status != "" {
		args = append(args, c.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if c.Priority != "" {
		args = append(args, c.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}

	if c.Search != "" {
		args = append(args, "%"+escapeLikePattern(c.Search)+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	whereClause := strings.Join(conditions, " AND ")

	countSQL = "SELECT COUNT(*) FROM tasks WHERE " + whereClause
	countArgs = args

	sortColumn := taskSortColumns[c.SortBy]
	direction := "DESC"
	if c.Order == store.OrderAsc {
		direction = "ASC"
	}

	listArgs = append(append([]interface{}{}, args...), c.Limit, c.Offset())
	listSQL = fmt.Sprintf(`
		SELECT id, user_id, title, description, status, priority, created_at, updated_at
		FROM tasks
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortColumn, direction, len(listArgs)-1, len(listArgs))

	return listSQL, countSQL, listArgs, countArgs
}

// escapeLikePattern escapes LIKE metacharacters in a search term so user
// input matches literally instead of acting as a wildcard.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// scanTask maps a single tasks row onto a domain Task.
func scanTask(row *sql.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task row: %w", err)
	}
	return &task, nil
}
