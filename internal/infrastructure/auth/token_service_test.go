package auth

import (
	"testing"
	"time"

	"github.com/b2bmarket/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService(expiration time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:          "test-secret-key-for-token-signing",
		TokenExpiration: expiration,
		Issuer:          "marketplace-test",
	})
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := testTokenService(time.Hour)

	token, err := svc.GenerateToken([]string{"seller-1", "seller-1-legacy"}, RoleSeller)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, claims.Role)
	assert.Equal(t, "marketplace-test", claims.Issuer)

	ids := claims.Identities()
	assert.True(t, ids.Owns("seller-1"))
	assert.True(t, ids.Owns("seller-1-legacy"))
	assert.False(t, ids.Owns("seller-2"))
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	svc := testTokenService(-time.Minute)

	token, err := svc.GenerateToken([]string{"buyer-1"}, RoleBuyer)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenServiceRejectsForeignSignature(t *testing.T) {
	token, err := testTokenService(time.Hour).GenerateToken([]string{"buyer-1"}, RoleBuyer)
	require.NoError(t, err)

	other := NewTokenService(config.JWTConfig{
		Secret:          "a-completely-different-secret-key",
		TokenExpiration: time.Hour,
		Issuer:          "marketplace-test",
	})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc := testTokenService(time.Hour)
	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
