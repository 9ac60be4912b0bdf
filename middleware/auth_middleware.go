package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/utils"
)

// TokenVerifier defines the interface for verifying bearer credentials
type TokenVerifier interface {
	// Verify validates a credential and returns the identity it asserts
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

// AuthMiddleware provides authentication and role authorization middleware
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

const (
	msgMissingCredential   = "Access denied. No token provided."
	msgInvalidCredential   = "Invalid or expired token."
	msgServerMisconfigured = "Server configuration error."
	msgUnauthenticated     = "Authentication required."
)

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// attaches the verified identity to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing credential",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, msgMissingCredential)
			return
		}

		identity, err := m.verifier.Verify(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrServerMisconfigured):
				// Broken deployment, not a bad client
				m.logger.Error("server misconfigured",
					zap.String("request_id", requestID),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, msgServerMisconfigured)
			case errors.Is(err, auth.ErrMissingCredential):
				m.logger.Warn("missing credential",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path))
				_ = utils.WriteUnauthorized(w, msgMissingCredential)
			default:
				m.logger.Warn("credential verification failed",
					zap.String("request_id", requestID),
					zap.Error(err))
				_ = utils.WriteForbidden(w, msgInvalidCredential)
			}
			return
		}

		ctx = WithIdentity(ctx, identity)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", identity.ID),
			zap.String("role", identity.Role.String()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles is a middleware that allows the request only when the
// authenticated identity holds one of roles. It must run after Authenticate.
func (m *AuthMiddleware) RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := auth.NewRoleSet(roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			identity := GetIdentityFromContext(ctx)
			if identity == nil {
				m.logger.Error("identity not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, msgUnauthenticated)
				return
			}

			if !allowed.Allows(identity.Role) {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("user_id", identity.ID),
					zap.Stringer("required_roles", allowed),
					zap.String("role", identity.Role.String()))
				_ = utils.WriteForbidden(w, ForbiddenMessage(allowed, identity.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ForbiddenMessage renders the diagnostic message returned on a role mismatch
func ForbiddenMessage(allowed auth.RoleSet, actual auth.Role) string {
	return fmt.Sprintf("Access denied. Required roles: %s. Your role: %s", allowed, actual)
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
