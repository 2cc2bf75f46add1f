package security

import (
	"errors"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/golang-jwt/jwt"
)

// Используется SigningMethodHS256: auth-сервис подписывает access-токены общим секретом.
type TokenVerifier struct {
	secret    []byte
	issuer    string
	audience  string
	clockSkew time.Duration
	now       func() time.Time
}

func NewTokenVerifier(secret []byte, issuer, audience string, clockSkew time.Duration) *TokenVerifier {
	return &TokenVerifier{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
		now:       time.Now,
	}
}

type AccessClaims struct {
	jwt.StandardClaims // включает Issuer, Audience, ExpiresAt, NotBefore, IssuedAt, Subject
}

// Verify разбирает и проверяет токен; возвращает identity из sub.
// Истёкший токен отличается от битого: клиенту достаточно refresh, а не re-login.
func (v *TokenVerifier) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", domain.ErrUnauthorized
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, domain.ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrInvalidToken
	}
	if !token.Valid {
		return "", domain.ErrInvalidToken
	}

	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return "", domain.ErrInvalidIssuer
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return "", domain.ErrInvalidAudience
	}

	now := v.now()

	// временные клеймы с допуском clockSkew
	if claims.NotBefore > 0 && now.Before(time.Unix(claims.NotBefore, 0).Add(-v.clockSkew)) {
		return "", domain.ErrTokenExpired
	}
	if claims.ExpiresAt > 0 && now.After(time.Unix(claims.ExpiresAt, 0).Add(v.clockSkew)) {
		return "", domain.ErrTokenExpired
	}

	if claims.Subject == "" {
		return "", domain.ErrInvalidSubject
	}

	return claims.Subject, nil
}
