package submission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultFailureMessage is shown when the server gives no reason for a failure
const DefaultFailureMessage = "Failed to submit assignment. Please try again."

// ErrBusy is returned when Submit is called while another submission is in flight
var ErrBusy = errors.New("submission already in progress")

// ErrEmptyAck is reported when a Submitter returns neither an Ack nor an error
var ErrEmptyAck = errors.New("submitter returned no acknowledgement")

// File is one attachment selected by the student
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Student is the identity the client submits as
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// Payload is everything sent for one submission
type Payload struct {
	AssignmentID string
	StudentID    string
	StudentName  string
	Text         string
	Files        []File
}

// FileNames returns attachment names in order; never nil
func (p Payload) FileNames() []string {
	names := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		names = append(names, f.Name)
	}
	return names
}

// Ack is the server's acknowledgement of a stored submission
type Ack struct {
	ID          string    `json:"id"`
	Late        bool      `json:"late"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submitter delivers a payload to the server
type Submitter interface {
	Submit(ctx context.Context, p Payload) (*Ack, error)
}

// IdentityStore provides the identity of the signed-in student
type IdentityStore interface {
	Load(ctx context.Context) (Student, error)
}

// SubmissionFailed reports a rejected or undeliverable submission.
// Message is safe to show to the student.
type SubmissionFailed struct {
	Message string
	Err     error
}

func (e *SubmissionFailed) Error() string {
	return e.Message
}

func (e *SubmissionFailed) Unwrap() error {
	return e.Err
}

// State is what the submission surface shows
type State struct {
	Open       bool
	Submitting bool
	Error      string
}

// Packager drives one submission surface. At most one submission is in
// flight at a time; concurrent calls get ErrBusy without reaching the Submitter.
type Packager struct {
	submitter Submitter
	identity  IdentityStore
	logger    *zap.Logger

	busy atomic.Bool

	mu    sync.Mutex
	state State
}

// NewPackager creates a Packager with its surface open
func NewPackager(submitter Submitter, identity IdentityStore, logger *zap.Logger) *Packager {
	return &Packager{
		submitter: submitter,
		identity:  identity,
		logger:    logger,
		state:     State{Open: true},
	}
}

// Submit packages text and files for assignmentID and sends them.
// On success the surface closes; on failure it stays open with an error
// message and a *SubmissionFailed is returned. Nothing is retried.
func (p *Packager) Submit(ctx context.Context, assignmentID, text string, files []File) (*Ack, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.busy.Store(false)

	p.setState(State{Open: true, Submitting: true})

	student, err := p.identity.Load(ctx)
	if err != nil {
		return nil, p.fail(err)
	}

	list := make([]File, len(files))
	copy(list, files)

	ack, err := p.submitter.Submit(ctx, Payload{
		AssignmentID: assignmentID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		Text:         text,
		Files:        list,
	})
	if err != nil {
		return nil, p.fail(err)
	}
	if ack == nil {
		return nil, p.fail(ErrEmptyAck)
	}

	p.logger.Info("assignment submitted",
		zap.String("assignment_id", assignmentID),
		zap.String("submission_id", ack.ID),
		zap.Int("files", len(list)))

	p.setState(State{Open: false})
	return ack, nil
}

// Reopen shows a fresh surface, clearing any previous error
func (p *Packager) Reopen() {
	p.setState(State{Open: true})
}

// State returns the current surface state
func (p *Packager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Busy reports whether a submission is in flight
func (p *Packager) Busy() bool {
	return p.busy.Load()
}

func (p *Packager) fail(err error) error {
	failed := &SubmissionFailed{Message: failureMessage(err), Err: err}

	p.logger.Warn("assignment submission failed", zap.Error(err))
	p.setState(State{Open: true, Error: failed.Message})
	return failed
}

func (p *Packager) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// failureMessage prefers the message reported by the server
func failureMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return DefaultFailureMessage
}
