package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment represents a piece of coursework published by a teacher
type Assignment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	TeacherID   string    `json:"teacherId" db:"teacher_id"`
	DueDate     time.Time `json:"dueDate" db:"due_date"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Assignment model
func (Assignment) TableName() string {
	return "assignments"
}

// NewAssignment creates a new Assignment instance
func NewAssignment(teacherID, title, description string, dueDate time.Time) *Assignment {
	now := time.Now().UTC()
	return &Assignment{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
		DueDate:     dueDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsPastDue reports whether at is after the due date
func (a *Assignment) IsPastDue(at time.Time) bool {
	return at.After(a.DueDate)
}
