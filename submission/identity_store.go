package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNotSignedIn is returned when no student identity is stored
var ErrNotSignedIn = errors.New("no signed-in student")

// FileIdentityStore reads the student identity from a JSON file of the form
// {"id": "...", "name": "...", "token": "..."}.
type FileIdentityStore struct {
	path string
}

// NewFileIdentityStore creates a store backed by path
func NewFileIdentityStore(path string) *FileIdentityStore {
	return &FileIdentityStore{path: path}
}

// Load reads and validates the stored identity
func (s *FileIdentityStore) Load(_ context.Context) (Student, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Student{}, ErrNotSignedIn
		}
		return Student{}, fmt.Errorf("read identity: %w", err)
	}

	var student Student
	if err := json.Unmarshal(raw, &student); err != nil {
		return Student{}, fmt.Errorf("decode identity %s: %w", s.path, err)
	}
	if student.ID == "" {
		return Student{}, ErrNotSignedIn
	}
	return student, nil
}

// Save writes the identity, readable only by the current user
func (s *FileIdentityStore) Save(student Student) error {
	raw, err := json.MarshalIndent(student, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// StaticIdentityStore always returns the same identity
type StaticIdentityStore struct {
	Student Student
}

// Load returns the configured identity
func (s StaticIdentityStore) Load(context.Context) (Student, error) {
	if s.Student.ID == "" {
		return Student{}, ErrNotSignedIn
	}
	return s.Student, nil
}
