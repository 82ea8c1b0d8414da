package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	id := uuid.New()

	token, err := svc.Generate(id, "admin@example.com", "scanner")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.AdminID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "scanner", claims.Role)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "admin@example.com", "admin")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTExpired(t *testing.T) {
	token, err := NewJWTService("test-secret", -1).Generate(uuid.New(), "admin@example.com", "admin")
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTGarbage(t *testing.T) {
	_, err := NewJWTService("test-secret", 1).Validate("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
