package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/models"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateAssignmentInput carries the fields a teacher provides for a new assignment
type CreateAssignmentInput struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=10000"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
}

// AssignmentService manages assignments
type AssignmentService struct {
	repo   repositories.AssignmentRepository
	logger *zap.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(repo repositories.AssignmentRepository, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		repo:   repo,
		logger: logger,
	}
}

// Create publishes a new assignment owned by the calling teacher
func (s *AssignmentService) Create(ctx context.Context, caller *auth.Identity, in CreateAssignmentInput) (*models.Assignment, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidInput.WithDetail("title", "title is required")
	}

	assignment := models.NewAssignment(caller.ID, title, in.Description, in.DueDate)
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, ErrDatabaseError.Wrap(err)
	}

	s.logger.Info("assignment created",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("teacher_id", caller.ID),
		zap.Time("due_date", assignment.DueDate))

	return assignment, nil
}

// Get returns one assignment
func (s *AssignmentService) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, ErrDatabaseError.Wrap(err)
	}
	return assignment, nil
}

// List returns a page of assignments ordered by due date
func (s *AssignmentService) List(ctx context.Context, limit, offset int) ([]*models.Assignment, error) {
	limit, offset = normalizePage(limit, offset)

	assignments, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, ErrDatabaseError.Wrap(err)
	}
	return assignments, nil
}

// normalizePage clamps pagination parameters to sane bounds
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
