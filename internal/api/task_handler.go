package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// TaskHandler handles task CRUD and listing API requests. Every operation
// is scoped to the authenticated user.
type TaskHandler struct {
	taskStore store.TaskStore
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
		validator: newValidator(),
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	task, err := domain.NewTask(
		userID,
		req.Title,
		req.Description,
		domain.TaskStatus(req.Status),
		domain.TaskPriority(req.Priority),
	)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		respondMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// ListTasks handles GET /tasks. It supports free-text search, status and
// priority filters, whitelisted sorting, and pagination. Invalid filter
// values are ignored rather than rejected, so stale links still resolve.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	criteria := listCriteriaFromQuery(r)
	tasks, total, err := h.taskStore.List(r.Context(), userID, criteria)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	normalized := criteria.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + normalized.Limit - 1) / normalized.Limit
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Pagination: Pagination{
			Total: total,
			Page:  normalized.Page,
			Pages: pages,
			Limit: normalized.Limit,
		},
	})
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PUT /tasks/{id}. Only the supplied fields change.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	update := store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		update.Priority = &priority
	}

	task, err := h.taskStore.Update(r.Context(), userID, taskID, update)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.taskStore.Delete(r.Context(), userID, taskID); err != nil {
		respondMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// listCriteriaFromQuery reads the listing parameters from the query string.
// Numeric parameters that fail to parse fall back to their defaults during
// normalization, mirroring the silent-ignore policy for filter values.
func listCriteriaFromQuery(r *http.Request) store.TaskListCriteria {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	return store.TaskListCriteria{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
		Page:     page,
		Limit:    limit,
	}
}
