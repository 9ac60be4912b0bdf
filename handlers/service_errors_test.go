package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/services"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/utils"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{"not found", services.ErrAssignmentNotFound, http.StatusNotFound, "Assignment not found"},
		{"validation", services.ErrEmptySubmission, http.StatusBadRequest, "Submission must contain text or at least one file"},
		{"unauthorized", services.ErrUnauthorized, http.StatusUnauthorized, "Authentication required."},
		{"forbidden", services.ErrStudentMismatch, http.StatusForbidden, "You can only submit on your own behalf"},
		{"conflict", services.ErrSubmissionInProgress, http.StatusConflict, "A submission for this assignment is already in progress"},
		{"misconfigured", services.ErrRTCNotConfigured, http.StatusInternalServerError, "Server configuration error."},
		{"internal hides cause", services.ErrDatabaseError.Wrap(errors.New("pq: password authentication failed")), http.StatusInternalServerError, "An internal error occurred"},
		{"wrapped domain error", fmt.Errorf("submit: %w", services.ErrStudentMismatch), http.StatusForbidden, "You can only submit on your own behalf"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.False(t, response.Success)
			assert.Equal(t, tt.expectedMessage, response.Message)
			assert.NotContains(t, response.Message, "pq:")
		})
	}
}

func TestHandleServiceError_Details(t *testing.T) {
	w := httptest.NewRecorder()

	HandleServiceError(w, services.ErrInvalidInput.WithDetail("title", "title is required"), zap.NewNop())

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "title is required", response.Details["title"])
}

func TestHandleServiceError_LogsMisconfiguration(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	HandleServiceError(httptest.NewRecorder(), services.ErrRTCNotConfigured, zap.New(core))

	entries := logs.FilterMessage("server misconfigured").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())
	assert.Equal(t, 0, w.Body.Len())
}

func TestHandleValidationError(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		type req struct {
			Title string `json:"title" validate:"required"`
		}
		w := httptest.NewRecorder()

		HandleValidationError(w, utils.ValidateStruct(&req{}), zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Validation failed", response.Message)
		assert.Equal(t, "title is required", response.Details["title"])
	})

	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()

		HandleValidationError(w, errors.New("bad json"), zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
