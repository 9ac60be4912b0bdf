package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-value"

// Test helper to sign a token with arbitrary claims
func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return tokenString
}

func validClaims(id, role string) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: id,
		Role:   role,
	}
}

func TestVerify_Success(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})
	token := signToken(t, testSecret, validClaims("stu-42", "student"))

	identity, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "stu-42", identity.ID)
	assert.Equal(t, RoleStudent, identity.Role)
}

func TestVerify_WithoutExpiration(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})
	token := signToken(t, testSecret, jwt.MapClaims{"id": "t-1", "role": "teacher"})

	identity, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, identity.Role)
}

func TestVerify_ServerMisconfigured(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{})
	assert.False(t, verifier.Configured())

	// A perfectly valid token still fails: the secret check comes first
	token := signToken(t, testSecret, validClaims("stu-42", "student"))

	identity, err := verifier.Verify(context.Background(), token)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, ErrServerMisconfigured)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_InvalidCredentials(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rsaToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("a-1", "admin")).SignedString(rsaKey)
	require.NoError(t, err)

	expired := validClaims("stu-1", "student")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "another-secret", validClaims("stu-1", "student"))},
		{"malformed", "not.a.jwt"},
		{"garbage", "abc"},
		{"expired", signToken(t, testSecret, expired)},
		{"unexpected algorithm", rsaToken},
		{"missing id", signToken(t, testSecret, jwt.MapClaims{"role": "student"})},
		{"empty id", signToken(t, testSecret, validClaims("", "student"))},
		{"missing role", signToken(t, testSecret, jwt.MapClaims{"id": "stu-1"})},
		{"empty role", signToken(t, testSecret, validClaims("stu-1", ""))},
		{"unknown role", signToken(t, testSecret, validClaims("stu-1", "janitor"))},
		{"numeric id", signToken(t, testSecret, jwt.MapClaims{"id": 12, "role": "student"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := verifier.Verify(context.Background(), tt.token)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestVerify_EmptyToken(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret})

	_, err := verifier.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestVerify_Leeway(t *testing.T) {
	claims := validClaims("stu-1", "student")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Second))
	token := signToken(t, testSecret, claims)

	strict := NewVerifier(VerifierConfig{Secret: testSecret})
	_, err := strict.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	lenient := NewVerifier(VerifierConfig{Secret: testSecret, Leeway: time.Minute})
	identity, err := lenient.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "stu-1", identity.ID)
}

func TestVerify_Issuer(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret, Issuer: "edutrackr"})

	claims := validClaims("t-1", "teacher")
	claims.Issuer = "someone-else"
	_, err := verifier.Verify(context.Background(), signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidCredential)

	claims.Issuer = "edutrackr"
	identity, err := verifier.Verify(context.Background(), signToken(t, testSecret, claims))
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, identity.Role)
}
