package security

import (
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "cwrk-planet/auth-service"
	testAudience = "cwrk-planet"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, method jwt.SigningMethod, claims jwt.StandardClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func validClaims(now time.Time) jwt.StandardClaims {
	return jwt.StandardClaims{
		Subject:   "u1",
		Issuer:    testIssuer,
		Audience:  testAudience,
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestVerify_OK(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer, testAudience, 30*time.Second)
	tokenStr := signToken(t, testSecret, jwt.SigningMethodHS256, validClaims(time.Now()))

	id, err := v.Verify(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestVerify_MissingToken(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer, testAudience, 30*time.Second)

	_, err := v.Verify("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_Expired(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer, testAudience, 30*time.Second)

	claims := validClaims(time.Now().Add(-2 * time.Hour))
	tokenStr := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Verify(tokenStr)
	// истёкший токен отличим от битого: клиенту нужен refresh, а не re-login
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.NotErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer, testAudience, 30*time.Second)
	tokenStr := signToken(t, []byte("other-secret"), jwt.SigningMethodHS256, validClaims(time.Now()))

	_, err := v.Verify(tokenStr)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer, testAudience, 30*time.Second)

	_, err := v.Verify("not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_WrongIssuer(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer, testAudience, 30*time.Second)

	claims := validClaims(time.Now())
	claims.Issuer = "someone-else"
	tokenStr := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Verify(tokenStr)
	assert.ErrorIs(t, err, domain.ErrInvalidIssuer)
}

func TestVerify_EmptySubject(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer, testAudience, 30*time.Second)

	claims := validClaims(time.Now())
	claims.Subject = ""
	tokenStr := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Verify(tokenStr)
	assert.ErrorIs(t, err, domain.ErrInvalidSubject)
}
