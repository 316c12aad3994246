package jwt

import (
	"testing"
	"time"

	"triage-waitlist/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:     true,
		Secret:      "test-secret",
		Issuer:      "triage-waitlist",
		TokenExpiry: time.Hour,
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService(testAuthConfig())

	token, tokenID, err := svc.GenerateToken("nurse-42")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "nurse-42", claims.Subject)
	assert.Equal(t, tokenID, claims.TokenID)
	assert.Equal(t, "triage-waitlist", claims.Issuer)
}

func TestJWTService_RejectsEmptySubject(t *testing.T) {
	svc := NewJWTService(testAuthConfig())

	_, _, err := svc.GenerateToken("")
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService(testAuthConfig()).GenerateToken("nurse-42")
	require.NoError(t, err)

	other := testAuthConfig()
	other.Secret = "another-secret"

	_, err = NewJWTService(other).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	token, _, err := NewJWTService(testAuthConfig()).GenerateToken("nurse-42")
	require.NoError(t, err)

	other := testAuthConfig()
	other.Issuer = "someone-else"

	_, err = NewJWTService(other).ValidateToken(token)
	assert.ErrorIs(t, err, gojwt.ErrTokenInvalidIssuer)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenExpiry = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateToken("nurse-42")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewJWTService(testAuthConfig())

	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.RegisteredClaims{
		Subject:   "intruder",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
