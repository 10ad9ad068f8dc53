package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
)

// Users: операции service.Users, нужные хендлерам.
type Users interface {
	Signup(ctx context.Context, email, password, firstName, lastName string) (domain.User, error)
	Authenticate(ctx context.Context, email, password string) (domain.User, error)
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, token domain.Token, newPassword string) error
}

// Handler обслуживает /api/auth/*.
type Handler struct {
	Log       *zap.Logger
	Users     Users
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   string      `json:"expires_at"`
	User        domain.User `json:"user"`
}
