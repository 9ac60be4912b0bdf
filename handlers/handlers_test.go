package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/middleware"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/models"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/services"
)

// MockAssignmentService is a mock implementation of AssignmentService
type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) Create(ctx context.Context, caller *auth.Identity, in services.CreateAssignmentInput) (*models.Assignment, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *MockAssignmentService) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *MockAssignmentService) List(ctx context.Context, limit, offset int) ([]*models.Assignment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Assignment), args.Error(1)
}

// MockSubmissionService is a mock implementation of SubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, caller *auth.Identity, in services.SubmitInput) (*models.Submission, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) List(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	args := m.Called(ctx, assignmentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Submission), args.Error(1)
}

// withIdentity attaches a caller identity to the request
func withIdentity(r *http.Request, id string, role auth.Role) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), &auth.Identity{ID: id, Role: role}))
}

// withURLParam sets a chi URL parameter on the request
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody decodes the JSON response envelope
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}
