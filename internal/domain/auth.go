package domain

import (
	"context"
	"time"
)

// Аутентификация:
// - /api/auth/login -> выдать токен
// - /api/auth/logout -> отозвать токен (jti в блэклист до exp)
// - /api/auth/reset-password -> одноразовый токен сброса, /confirm -> новый пароль

type Token string

type TokenClaims struct {
	JTI       string // уникальный id токена
	UserID    UserID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Хеширование паролей
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// Управление токенами (JWT: реализация в internal/auth/token)
type TokenManager interface {
	Issue(ctx context.Context, userID UserID, email string) (Token, TokenClaims, error)
	Parse(ctx context.Context, t Token) (TokenClaims, error)
}

// Токены сброса пароля. Access-токеном не принимаются, и наоборот.
type ResetTokens interface {
	IssueReset(ctx context.Context, userID UserID, email string) (Token, TokenClaims, error)
	ParseReset(ctx context.Context, t Token) (TokenClaims, error)
}

// Блэклист/ревокация токенов (Redis)
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
