package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims carried by a bearer credential
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Role   string `json:"role"`
}

// VerifierConfig holds configuration for Verifier
type VerifierConfig struct {
	Secret string
	Leeway time.Duration
	// Issuer is optional; when set, tokens with a different iss are rejected
	Issuer string
}

// Verifier validates HS256 bearer credentials against a shared secret.
// It is immutable after construction and safe for concurrent use.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier. An empty secret is accepted here and
// reported as ErrServerMisconfigured on every Verify call.
func NewVerifier(cfg VerifierConfig) *Verifier {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}

	return &Verifier{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(options...),
	}
}

// Configured reports whether a verification secret is set
func (v *Verifier) Configured() bool {
	return len(v.secret) > 0
}

// Verify validates token and returns the identity it asserts.
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if !v.Configured() {
		return nil, ErrServerMisconfigured
	}
	if token == "" {
		return nil, ErrMissingCredential
	}

	parsed, err := v.parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidCredential)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidCredential
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrInvalidCredential)
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role claim", ErrInvalidCredential)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	return &Identity{ID: claims.UserID, Role: role}, nil
}
