package domain

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidIssuer    = errors.New("invalid issuer")
	ErrInvalidAudience  = errors.New("invalid audience")
	ErrTokenExpired     = errors.New("token expired or not valid yet")
	ErrInvalidSubject   = errors.New("invalid subject")
	ErrStoreUnavailable = errors.New("conversation store unavailable")
	ErrEmptyMessage     = errors.New("empty message")
	ErrMessageTooLong   = errors.New("message too long")
	ErrNotFound         = errors.New("not found")
)
