package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Repositories called with the ctx passed to fn join the transaction.
	// Commits if fn succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// AssignmentRepository handles assignment data operations
type AssignmentRepository interface {
	// Create creates a new assignment
	Create(ctx context.Context, assignment *models.Assignment) error

	// GetByID retrieves an assignment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)

	// List retrieves assignments ordered by due date
	List(ctx context.Context, limit, offset int) ([]*models.Assignment, error)
}

// SubmissionRepository handles submission data operations
type SubmissionRepository interface {
	// Create stores a submission and its attachment metadata.
	// Call within a transaction so both land or neither does.
	Create(ctx context.Context, submission *models.Submission) error

	// ListByAssignment retrieves submissions for an assignment, newest first
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]*models.Submission, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Assignments AssignmentRepository
	Submissions SubmissionRepository
}
