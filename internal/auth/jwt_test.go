package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestJWTService() *JWTService {
	return NewJWTService(testSecret, 15*time.Minute)
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	service := newTestJWTService()

	token, exp, err := service.GenerateAccessToken(2, "alex@gmail.com", RoleBoth)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(service.TTL()), exp, 2*time.Second)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), claims.UserID)
	assert.Equal(t, "2", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, []string{AuthorityClient, AuthorityAdmin}, claims.Authorities)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	service := NewJWTService(testSecret, -time.Minute)

	token, _, err := service.GenerateAccessToken(1, "maria@gmail.com", RoleClient)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// sign builds a token outside JWTService so each rejection rule can be hit alone.
func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	service := newTestJWTService()
	valid := Claims{
		UserID:      2,
		Authorities: []string{AuthorityAdmin},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	good, _, err := service.GenerateAccessToken(2, "alex@gmail.com", RoleBoth)
	require.NoError(t, err)

	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"
	noExpiry := valid
	noExpiry.ExpiresAt = nil

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-valid-token",
		"tampered":     good + "xpto",
		"other key":    sign(t, jwt.SigningMethodHS256, []byte("another-secret"), valid),
		"alg none":     sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid),
		"hs512":        sign(t, jwt.SigningMethodHS512, []byte(testSecret), valid),
		"other issuer": sign(t, jwt.SigningMethodHS256, []byte(testSecret), otherIssuer),
		"no expiry":    sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := service.ValidateAccessToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
