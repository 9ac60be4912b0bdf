package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/middleware"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/models"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/services"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/utils"
)

// AssignmentService defines the assignment operations used by the handler
type AssignmentService interface {
	Create(ctx context.Context, caller *auth.Identity, in services.CreateAssignmentInput) (*models.Assignment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	List(ctx context.Context, limit, offset int) ([]*models.Assignment, error)
}

// AssignmentHandler handles assignment-related HTTP requests
type AssignmentHandler struct {
	service AssignmentService
	logger  *zap.Logger
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(service AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate handles POST /api/v1/assignments
func (h *AssignmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.CreateAssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid assignment body",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	assignment, err := h.service.Create(ctx, middleware.GetIdentityFromContext(ctx), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, assignment)
}

// HandleGet handles GET /api/v1/assignments/{id}
func (h *AssignmentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentIDParam(w, r)
	if !ok {
		return
	}

	assignment, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, assignment)
}

// HandleList handles GET /api/v1/assignments
func (h *AssignmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, assignments)
}

// assignmentIDParam parses the {id} URL parameter, writing 400 when it is not a UUID
func assignmentIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid assignment ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads optional limit and offset query parameters
func pageParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	q := r.URL.Query()
	values := [2]int{}
	for i, key := range []string{"limit", "offset"} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = utils.WriteBadRequest(w, "Invalid "+key, nil)
			return 0, 0, false
		}
		values[i] = n
	}
	return values[0], values[1], true
}
