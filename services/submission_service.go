package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/locks"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/models"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/repositories"
)

// SubmitInput is a decoded submission request
type SubmitInput struct {
	AssignmentID uuid.UUID
	StudentID    string
	StudentName  string
	Text         string
	Attachments  []models.Attachment
}

// SubmissionService records student submissions
type SubmissionService struct {
	assignments repositories.AssignmentRepository
	submissions repositories.SubmissionRepository
	txMgr       repositories.TransactionManager
	locker      locks.Locker
	logger      *zap.Logger
	now         func() time.Time
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	assignments repositories.AssignmentRepository,
	submissions repositories.SubmissionRepository,
	txMgr repositories.TransactionManager,
	locker locks.Locker,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		assignments: assignments,
		submissions: submissions,
		txMgr:       txMgr,
		locker:      locker,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit records a submission for the calling student.
// Concurrent submissions by the same student for the same assignment are
// rejected with ErrSubmissionInProgress while the first is being stored.
func (s *SubmissionService) Submit(ctx context.Context, caller *auth.Identity, in SubmitInput) (*models.Submission, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if in.StudentID != caller.ID {
		s.logger.Warn("student id mismatch",
			zap.String("caller_id", caller.ID),
			zap.String("student_id", in.StudentID))
		return nil, ErrStudentMismatch
	}

	submission := models.NewSubmission(in.AssignmentID, in.StudentID, in.StudentName, in.Text, in.Attachments)
	if err := submission.Validate(); err != nil {
		return nil, ErrEmptySubmission
	}

	assignment, err := s.assignments.GetByID(ctx, in.AssignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, ErrDatabaseError.Wrap(err)
	}

	release, err := s.locker.Acquire(ctx, in.AssignmentID.String()+":"+in.StudentID)
	if err != nil {
		if errors.Is(err, locks.ErrLocked) {
			return nil, ErrSubmissionInProgress
		}
		return nil, ErrLockUnavailable.Wrap(err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release submission lock", zap.Error(err))
		}
	}()

	submission.SubmittedAt = s.now().UTC()
	submission.Late = assignment.IsPastDue(submission.SubmittedAt)

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		return s.submissions.Create(ctx, submission)
	})
	if err != nil {
		return nil, ErrTransactionFailed.Wrap(err)
	}

	s.logger.Info("submission recorded",
		zap.String("submission_id", submission.ID.String()),
		zap.String("assignment_id", submission.AssignmentID.String()),
		zap.String("student_id", submission.StudentID),
		zap.Int("attachments", len(submission.Attachments)),
		zap.Bool("late", submission.Late))

	return submission, nil
}

// List returns submissions for an assignment, newest first
func (s *SubmissionService) List(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, ErrDatabaseError.Wrap(err)
	}

	limit, offset = normalizePage(limit, offset)

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID, limit, offset)
	if err != nil {
		return nil, ErrDatabaseError.Wrap(err)
	}
	return submissions, nil
}
