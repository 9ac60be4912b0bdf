package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/middleware"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/models"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/services"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/utils"
)

// multipartMemory is the part of a multipart body kept in memory; the rest spills to disk
const multipartMemory = 8 << 20

// SubmissionService defines the submission operations used by the handler
type SubmissionService interface {
	Submit(ctx context.Context, caller *auth.Identity, in services.SubmitInput) (*models.Submission, error)
	List(ctx context.Context, assignmentID uuid.UUID, limit, offset int) ([]*models.Submission, error)
}

// SubmissionForm holds the plain multipart fields of a submission
type SubmissionForm struct {
	StudentID   string `form:"studentId" validate:"required,max=128"`
	StudentName string `form:"studentName" validate:"max=255"`
	Content     string `form:"submissionContent" validate:"required"`
}

// SubmissionContent is the JSON document carried in the submissionContent field
type SubmissionContent struct {
	Text  string   `json:"text"`
	Files []string `json:"files"`
}

// SubmissionHandler handles submission-related HTTP requests
type SubmissionHandler struct {
	service  SubmissionService
	maxBytes int64
	logger   *zap.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler accepting bodies up to maxBytes
func NewSubmissionHandler(service SubmissionService, maxBytes int64, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// HandleCreate handles POST /api/v1/assignments/{id}/submissions
func (h *SubmissionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	assignmentID, ok := assignmentIDParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = utils.WriteRequestTooLarge(w, "Submission exceeds the upload limit")
			return
		}
		h.logger.Debug("invalid multipart body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("failed to remove multipart temp files", zap.Error(err))
		}
	}()

	form := SubmissionForm{
		StudentID:   r.FormValue("studentId"),
		StudentName: r.FormValue("studentName"),
		Content:     r.FormValue("submissionContent"),
	}
	if err := utils.ValidateStruct(form); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	var content SubmissionContent
	if err := json.Unmarshal([]byte(form.Content), &content); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid submissionContent", nil)
		return
	}

	files := r.MultipartForm.File["files"]
	attachments := make([]models.Attachment, 0, len(files))
	for _, fh := range files {
		attachments = append(attachments, models.Attachment{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
	}

	submission, err := h.service.Submit(ctx, middleware.GetIdentityFromContext(ctx), services.SubmitInput{
		AssignmentID: assignmentID,
		StudentID:    form.StudentID,
		StudentName:  form.StudentName,
		Text:         content.Text,
		Attachments:  attachments,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, submission)
}

// HandleList handles GET /api/v1/assignments/{id}/submissions
func (h *SubmissionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := assignmentIDParam(w, r)
	if !ok {
		return
	}
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	submissions, err := h.service.List(r.Context(), assignmentID, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, submissions)
}
