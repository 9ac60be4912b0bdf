package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptySubmission is returned when a submission carries neither text nor files
var ErrEmptySubmission = errors.New("submission must contain text or at least one file")

// Attachment describes one file attached to a submission.
// Content is stored outside this service; only metadata is recorded.
type Attachment struct {
	Name        string `json:"name" db:"name"`
	ContentType string `json:"contentType" db:"content_type"`
	Size        int64  `json:"size" db:"size_bytes"`
}

// Submission represents a student's answer to an assignment
type Submission struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	AssignmentID uuid.UUID    `json:"assignmentId" db:"assignment_id"`
	StudentID    string       `json:"studentId" db:"student_id"`
	StudentName  string       `json:"studentName" db:"student_name"`
	Text         string       `json:"text" db:"text"`
	Late         bool         `json:"late" db:"late"`
	Attachments  []Attachment `json:"attachments"`
	SubmittedAt  time.Time    `json:"submittedAt" db:"submitted_at"`
}

// TableName returns the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}

// NewSubmission creates a new Submission instance.
// Attachments is never nil so an empty list serialises as [].
func NewSubmission(assignmentID uuid.UUID, studentID, studentName, text string, attachments []Attachment) *Submission {
	list := make([]Attachment, len(attachments))
	copy(list, attachments)

	return &Submission{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		StudentName:  studentName,
		Text:         text,
		Attachments:  list,
		SubmittedAt:  time.Now().UTC(),
	}
}

// Validate checks that the submission carries some content
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.Text) == "" && len(s.Attachments) == 0 {
		return ErrEmptySubmission
	}
	return nil
}

// AttachmentNames returns attachment names in submission order
func (s *Submission) AttachmentNames() []string {
	names := make([]string, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		names = append(names, a.Name)
	}
	return names
}
