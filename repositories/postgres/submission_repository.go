package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/models"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/repositories"
)

// SubmissionRepository implements the repositories.SubmissionRepository interface
type SubmissionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *DB, logger *zap.Logger) repositories.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a submission followed by its attachments in order
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	query := `
		INSERT INTO submissions (id, assignment_id, student_id, student_name, text, late, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		s.ID,
		s.AssignmentID,
		s.StudentID,
		s.StudentName,
		s.Text,
		s.Late,
		s.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	attachmentQuery := `
		INSERT INTO submission_attachments (submission_id, position, name, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, a := range s.Attachments {
		if _, err := executor.ExecContext(ctx, attachmentQuery, s.ID, i, a.Name, a.ContentType, a.Size); err != nil {
			return fmt.Errorf("failed to create attachment %q: %w", a.Name, err)
		}
	}

	r.logger.Debug("submission created",
		zap.String("id", s.ID.String()),
		zap.String("assignment_id", s.AssignmentID.String()),
		zap.Int("attachments", len(s.Attachments)))
	return nil
}

// ListByAssignment retrieves submissions for an assignment, newest first.
// Attachments are loaded in a second query for the whole page.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, student_name, text, late, submitted_at
		FROM submissions
		WHERE assignment_id = $1
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, assignmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0)
	byID := make(map[uuid.UUID]*models.Submission)
	ids := make([]string, 0)

	for rows.Next() {
		s := &models.Submission{Attachments: []models.Attachment{}}
		if err := rows.Scan(
			&s.ID,
			&s.AssignmentID,
			&s.StudentID,
			&s.StudentName,
			&s.Text,
			&s.Late,
			&s.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
		byID[s.ID] = s
		ids = append(ids, s.ID.String())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	if len(ids) == 0 {
		return submissions, nil
	}

	if err := r.loadAttachments(ctx, executor, ids, byID); err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *SubmissionRepository) loadAttachments(ctx context.Context, executor Executor, ids []string, byID map[uuid.UUID]*models.Submission) error {
	query := `
		SELECT submission_id, name, content_type, size_bytes
		FROM submission_attachments
		WHERE submission_id = ANY($1::uuid[])
		ORDER BY submission_id, position
	`

	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var submissionID uuid.UUID
		var a models.Attachment
		if err := rows.Scan(&submissionID, &a.Name, &a.ContentType, &a.Size); err != nil {
			return fmt.Errorf("failed to scan attachment: %w", err)
		}
		if s, ok := byID[submissionID]; ok {
			s.Attachments = append(s.Attachments, a)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating attachments: %w", err)
	}
	return nil
}
