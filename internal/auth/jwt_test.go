package auth

import (
	"testing"
	"time"

	"FlexPBX-Admin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService(duration time.Duration) *JWTService {
	return NewJWTService(&JWTConfig{
		SecretKey:        []byte("test-secret"),
		APITokenDuration: duration,
		Issuer:           "FlexPBX-Admin",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := testJWTService(time.Hour)

	token, err := svc.GenerateAPIToken("supervisor-bot", domain.RoleSupervisor)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "supervisor-bot", claims.Username)
	assert.Equal(t, domain.RoleSupervisor, claims.Role)
	assert.Equal(t, "FlexPBX-Admin", claims.Issuer)
	assert.Equal(t, "supervisor-bot", claims.Subject)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := testJWTService(-time.Minute)

	token, err := svc.GenerateAPIToken("supervisor-bot", domain.RoleSupervisor)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := testJWTService(time.Hour).GenerateAPIToken("supervisor-bot", domain.RoleSupervisor)
	require.NoError(t, err)

	other := NewJWTService(&JWTConfig{
		SecretKey:        []byte("different-secret"),
		APITokenDuration: time.Hour,
		Issuer:           "FlexPBX-Admin",
	})

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_GarbageToken(t *testing.T) {
	_, err := testJWTService(time.Hour).ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromBearer("Bearer abc123"))
	assert.Empty(t, ExtractTokenFromBearer("bearer abc123"))
	assert.Empty(t, ExtractTokenFromBearer("Basic dXNlcjpwYXNz"))
	assert.Empty(t, ExtractTokenFromBearer("Bearer "))
	assert.Empty(t, ExtractTokenFromBearer(""))
}
