package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// memUserStore is an in-memory store.UserStore for router-level tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *memUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := domain.NormalizeEmail(email)
	for _, user := range s.users {
		if user.Email == normalized {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	update store.ProfileUpdate,
) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if err := user.UpdateProfile(update.Name, update.Bio); err != nil {
		return nil, err
	}
	copied := *user
	return &copied, nil
}

// memTaskStore is an in-memory store.TaskStore implementing the same
// filter, search, sort, and pagination semantics as the SQL store.
type memTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *memTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *memTaskStore) GetByID(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *memTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	if err := task.Apply(update.Title, update.Description, update.Status, update.Priority); err != nil {
		return nil, err
	}
	copied := *task
	return &copied, nil
}

func (s *memTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *memTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	criteria store.TaskListCriteria,
) ([]*domain.Task, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	criteria = criteria.Normalize()

	matched := make([]*domain.Task, 0)
	search := strings.ToLower(criteria.Search)
	for _, task := range s.tasks {
		if task.UserID != ownerID {
			continue
		}
		if criteria.Status != "" && string(task.Status) != criteria.Status {
			continue
		}
		if criteria.Priority != "" && string(task.Priority) != criteria.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch criteria.SortBy {
		case "title":
			less = a.Title < b.Title
		case "status":
			less = a.Status < b.Status
		case "priority":
			less = a.Priority < b.Priority
		case "updatedAt":
			less = a.UpdatedAt.Before(b.UpdatedAt)
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if criteria.Order == store.OrderDesc {
			return !less
		}
		return less
	})

	total := len(matched)
	start := criteria.Offset()
	if start > total {
		start = total
	}
	end := start + criteria.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

// newTestApplication assembles an application around in-memory stores and a
// real JWT service so routing, middleware, and handlers run end to end.
func newTestApplication(t *testing.T) (*application, *memUserStore, *memTaskStore) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		Auth: config.AuthConfig{
			JWTSecret:            "router-test-secret-32-characters-min",
			TokenLifetimeMinutes: 60,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	users := newMemUserStore()
	tasks := newMemTaskStore()

	app := &application{
		config:         cfg,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		userStore:      users,
		taskStore:      tasks,
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(4),
	}
	return app, users, tasks
}

func doJSON(
	t *testing.T,
	handler http.Handler,
	method, target, token string,
	body interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func signupUser(t *testing.T, handler http.Handler, name, email string) (string, uuid.UUID) {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "test-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	rec := doJSON(t, app.setupRouter(), http.MethodGet, "/api/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	handler := app.setupRouter()

	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
	} {
		rec := doJSON(t, handler, target.method, target.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code,
			"%s %s should require a token", target.method, target.path)
	}
}

func TestSignupLoginAndTaskLifecycle(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	handler := app.setupRouter()

	token, _ := signupUser(t, handler, "Ada", "ada@example.com")

	// Login again with a differently cased email.
	rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ADA@example.com",
		"password": "test-password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Create a task.
	rec = doJSON(t, handler, http.MethodPost, "/api/tasks", token, map[string]string{
		"title":    "Write report",
		"priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, domain.TaskStatusTodo, created.Status)
	assert.Equal(t, domain.TaskPriorityHigh, created.Priority)

	// Partially update it.
	status := "done"
	rec = doJSON(t, handler, http.MethodPut, "/api/tasks/"+created.ID.String(), token,
		map[string]string{"status": status})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, domain.TaskStatusDone, updated.Status)
	assert.Equal(t, "Write report", updated.Title)

	// Fetch it back.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Delete it, then a second fetch 404s.
	rec = doJSON(t, handler, http.MethodDelete, "/api/tasks/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/tasks/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCrossOwnerAccessReportsNotFound(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	handler := app.setupRouter()

	ownerToken, _ := signupUser(t, handler, "Ada", "ada@example.com")
	otherToken, _ := signupUser(t, handler, "Eve", "eve@example.com")

	rec := doJSON(t, handler, http.MethodPost, "/api/tasks", ownerToken, map[string]string{
		"title": "Private task",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	taskPath := "/api/tasks/" + created.ID.String()

	// Every cross-owner operation yields 404, never 403.
	rec = doJSON(t, handler, http.MethodGet, taskPath, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, taskPath, otherToken,
		map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, taskPath, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The other user's listing never shows it.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Tasks      []domain.Task `json:"tasks"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Empty(t, listing.Tasks)
	assert.Zero(t, listing.Pagination.Total)

	// And the owner still has it, unmodified.
	rec = doJSON(t, handler, http.MethodGet, taskPath, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var still domain.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&still))
	assert.Equal(t, "Private task", still.Title)
}

func TestTaskListingFiltersAndPagination(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	handler := app.setupRouter()

	token, _ := signupUser(t, handler, "Ada", "ada@example.com")

	for i := 0; i < 15; i++ {
		status := "todo"
		if i%3 == 0 {
			status = "done"
		}
		rec := doJSON(t, handler, http.MethodPost, "/api/tasks", token, map[string]string{
			"title":  fmt.Sprintf("Task %02d", i),
			"status": status,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var listing struct {
		Tasks      []domain.Task `json:"tasks"`
		Pagination struct {
			Total int `json:"total"`
			Page  int `json:"page"`
			Pages int `json:"pages"`
			Limit int `json:"limit"`
		} `json:"pagination"`
	}

	// Default page size is 12.
	rec := doJSON(t, handler, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Len(t, listing.Tasks, 12)
	assert.Equal(t, 15, listing.Pagination.Total)
	assert.Equal(t, 2, listing.Pagination.Pages)

	// Second page holds the remainder.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks?page=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Len(t, listing.Tasks, 3)
	assert.Equal(t, 15, listing.Pagination.Total)

	// A page past the end still reports the full total.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks?page=99", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Empty(t, listing.Tasks)
	assert.Equal(t, 15, listing.Pagination.Total)

	// Status filter narrows the set; an invalid filter value is ignored.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks?status=done", token, nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Equal(t, 5, listing.Pagination.Total)

	rec = doJSON(t, handler, http.MethodGet, "/api/tasks?status=bogus", token, nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Equal(t, 15, listing.Pagination.Total)

	// Case-insensitive search over titles.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks?search=task+01", token, nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Equal(t, 1, listing.Pagination.Total)

	// Title sort ascending.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks?sortBy=title&order=asc&limit=3", token, nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	require.Len(t, listing.Tasks, 3)
	assert.Equal(t, "Task 00", listing.Tasks[0].Title)
	assert.Equal(t, "Task 01", listing.Tasks[1].Title)
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	handler := app.setupRouter()

	token, userID := signupUser(t, handler, "Ada", "ada@example.com")

	rec := doJSON(t, handler, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		ID    uuid.UUID `json:"id"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
		Bio   string    `json:"bio"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&profile))
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "ada@example.com", profile.Email)

	rec = doJSON(t, handler, http.MethodPut, "/api/profile", token,
		map[string]string{"bio": "Countess of computing"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&profile))
	assert.Equal(t, "Countess of computing", profile.Bio)
	assert.Equal(t, "Ada", profile.Name, "name must survive a bio-only update")
}
