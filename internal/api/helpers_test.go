package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// stubUserStore implements store.UserStore with function fields so each
// test supplies only the behavior it cares about.
type stubUserStore struct {
	createFn        func(ctx context.Context, user *domain.User) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	updateProfileFn func(ctx context.Context, id uuid.UUID, update store.ProfileUpdate) (*domain.User, error)
}

var _ store.UserStore = (*stubUserStore)(nil)

func (s *stubUserStore) Create(ctx context.Context, user *domain.User) error {
	return s.createFn(ctx, user)
}

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *stubUserStore) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	update store.ProfileUpdate,
) (*domain.User, error) {
	return s.updateProfileFn(ctx, id, update)
}

// stubTaskStore implements store.TaskStore with function fields.
type stubTaskStore struct {
	createFn  func(ctx context.Context, task *domain.Task) error
	getByIDFn func(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	updateFn  func(ctx context.Context, ownerID, taskID uuid.UUID, update store.TaskUpdate) (*domain.Task, error)
	deleteFn  func(ctx context.Context, ownerID, taskID uuid.UUID) error
	listFn    func(ctx context.Context, ownerID uuid.UUID, criteria store.TaskListCriteria) ([]*domain.Task, int, error)
}

var _ store.TaskStore = (*stubTaskStore)(nil)

func (s *stubTaskStore) Create(ctx context.Context, task *domain.Task) error {
	return s.createFn(ctx, task)
}

func (s *stubTaskStore) GetByID(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	return s.getByIDFn(ctx, ownerID, taskID)
}

func (s *stubTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	return s.updateFn(ctx, ownerID, taskID, update)
}

func (s *stubTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	return s.deleteFn(ctx, ownerID, taskID)
}

func (s *stubTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	criteria store.TaskListCriteria,
) ([]*domain.Task, int, error) {
	return s.listFn(ctx, ownerID, criteria)
}

// stubJWTService implements auth.JWTService returning canned values.
type stubJWTService struct {
	token       string
	generateErr error
	claims      *auth.Claims
	validateErr error
}

var _ auth.JWTService = (*stubJWTService)(nil)

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.token, nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}

// newJSONRequest builds a request with a JSON-encoded body.
func newJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asAuthenticated attaches a user ID to the request context the way the
// authentication middleware would.
func asAuthenticated(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

// withPathParam attaches a chi URL parameter to the request context so
// handlers can be exercised without a full router.
func withPathParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

// decodeErrorResponse parses the standard error body from a recorder.
func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// mustNewUser builds a valid user for test fixtures.
func mustNewUser(t *testing.T, name, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(name, email, "$2a$04$fakehashfakehashfakehash")
	require.NoError(t, err)
	return user
}

// mustNewTask builds a valid task for test fixtures.
func mustNewTask(t *testing.T, ownerID uuid.UUID, title string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(ownerID, title, "", "", "")
	require.NoError(t, err)
	return task
}
