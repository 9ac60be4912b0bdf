package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
)

// MockTokenVerifier is a mock implementation of TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func mustNotBeCalled(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})
}

func TestAuthenticate(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid token attaches identity", func(t *testing.T) {
		mockVerifier := new(MockTokenVerifier)
		middleware := NewAuthMiddleware(mockVerifier, logger)

		identity := &auth.Identity{ID: "stu-1", Role: auth.RoleStudent}
		mockVerifier.On("Verify", mock.Anything, "valid-token").Return(identity, nil)

		handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			extracted := GetIdentityFromContext(r.Context())
			require.NotNil(t, extracted)
			assert.Equal(t, "stu-1", extracted.ID)
			assert.Equal(t, auth.RoleStudent, extracted.Role)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockVerifier.AssertExpectations(t)
	})

	missingCases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"scheme only", "Bearer"},
		{"scheme with blank token", "Bearer    "},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"token without scheme", "valid-token"},
	}
	for _, tc := range missingCases {
		t.Run("missing credential: "+tc.name, func(t *testing.T) {
			mockVerifier := new(MockTokenVerifier)
			middleware := NewAuthMiddleware(mockVerifier, logger)
			handler := middleware.Authenticate(mustNotBeCalled(t))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, msgMissingCredential, body["message"])
			mockVerifier.AssertNotCalled(t, "Verify")
		})
	}

	t.Run("invalid token returns 403", func(t *testing.T) {
		mockVerifier := new(MockTokenVerifier)
		middleware := NewAuthMiddleware(mockVerifier, logger)

		mockVerifier.On("Verify", mock.Anything, "bad-token").
			Return(nil, fmt.Errorf("%w: signature is invalid", auth.ErrInvalidCredential))

		handler := middleware.Authenticate(mustNotBeCalled(t))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, msgInvalidCredential, body["message"])
		mockVerifier.AssertExpectations(t)
	})

	t.Run("unknown verifier error is treated as invalid", func(t *testing.T) {
		mockVerifier := new(MockTokenVerifier)
		middleware := NewAuthMiddleware(mockVerifier, logger)

		mockVerifier.On("Verify", mock.Anything, "odd-token").Return(nil, errors.New("boom"))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer odd-token")
		w := httptest.NewRecorder()

		middleware.Authenticate(mustNotBeCalled(t)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("misconfiguration returns 500 and is logged as error", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		mockVerifier := new(MockTokenVerifier)
		middleware := NewAuthMiddleware(mockVerifier, zap.New(core))

		mockVerifier.On("Verify", mock.Anything, "any-token").Return(nil, auth.ErrServerMisconfigured)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer any-token")
		w := httptest.NewRecorder()

		middleware.Authenticate(mustNotBeCalled(t)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, msgServerMisconfigured, body["message"])

		entries := logs.FilterMessage("server misconfigured").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
		assert.Zero(t, logs.FilterMessage("credential verification failed").Len())
	})
}

func TestAuthenticateWithVerifier(t *testing.T) {
	logger := zap.NewNop()
	secret := "integration-secret"

	sign := func(claims jwt.MapClaims, key string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return token
	}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{"valid", secret, "Bearer " + sign(jwt.MapClaims{"id": "t-1", "role": "teacher", "exp": exp}, secret), http.StatusOK},
		{"lowercase scheme", secret, "bearer " + sign(jwt.MapClaims{"id": "t-1", "role": "teacher", "exp": exp}, secret), http.StatusOK},
		{"wrong signature", secret, "Bearer " + sign(jwt.MapClaims{"id": "t-1", "role": "teacher", "exp": exp}, "other"), http.StatusForbidden},
		{"missing id", secret, "Bearer " + sign(jwt.MapClaims{"role": "teacher", "exp": exp}, secret), http.StatusForbidden},
		{"missing role", secret, "Bearer " + sign(jwt.MapClaims{"id": "t-1", "exp": exp}, secret), http.StatusForbidden},
		{"missing header", secret, "", http.StatusUnauthorized},
		{"secret not configured", "", "Bearer " + sign(jwt.MapClaims{"id": "t-1", "role": "teacher", "exp": exp}, secret), http.StatusInternalServerError},
		{"missing header beats misconfiguration", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := auth.NewVerifier(auth.VerifierConfig{Secret: tt.secret})
			middleware := NewAuthMiddleware(verifier, logger)

			handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	logger := zap.NewNop()
	middleware := NewAuthMiddleware(new(MockTokenVerifier), logger)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no identity returns 401", func(t *testing.T) {
		handler := middleware.RequireRoles(auth.RoleTeacher)(mustNotBeCalled(t))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, msgUnauthenticated, body["message"])
	})

	for _, role := range auth.Roles {
		for _, allowed := range [][]auth.Role{
			{auth.RoleTeacher, auth.RoleAdmin},
			{auth.RoleStudent},
			{auth.RoleAdmin},
		} {
			set := auth.NewRoleSet(allowed...)
			t.Run(fmt.Sprintf("%s against [%s]", role, set), func(t *testing.T) {
				handler := middleware.RequireRoles(allowed...)(ok)

				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req = req.WithContext(WithIdentity(req.Context(), &auth.Identity{ID: "u-1", Role: role}))
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, req)

				if set.Allows(role) {
					assert.Equal(t, http.StatusOK, w.Code)
					return
				}
				assert.Equal(t, http.StatusForbidden, w.Code)
				body := decodeBody(t, w)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, ForbiddenMessage(set, role), body["message"])
			})
		}
	}

	t.Run("forbidden message enumerates roles", func(t *testing.T) {
		handler := middleware.RequireRoles(auth.RoleTeacher, auth.RoleAdmin)(mustNotBeCalled(t))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req = req.WithContext(WithIdentity(req.Context(), &auth.Identity{ID: "stu-9", Role: auth.RoleStudent}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		body := decodeBody(t, w)
		assert.Equal(t, "Access denied. Required roles: teacher, admin. Your role: student", body["message"])
	})

	t.Run("chained after Authenticate", func(t *testing.T) {
		mockVerifier := new(MockTokenVerifier)
		chained := NewAuthMiddleware(mockVerifier, logger)
		mockVerifier.On("Verify", mock.Anything, "teacher-token").
			Return(&auth.Identity{ID: "t-1", Role: auth.RoleTeacher}, nil)

		handler := chained.Authenticate(chained.RequireRoles(auth.RoleTeacher)(ok))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer teacher-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetIdentityFromContext(ctx))
	assert.Empty(t, GetRequestIDFromContext(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithIdentity(ctx, &auth.Identity{ID: "a-1", Role: auth.RoleAdmin})

	assert.Equal(t, "req-1", GetRequestIDFromContext(ctx))
	assert.Equal(t, "a-1", GetIdentityFromContext(ctx).ID)
}
