package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
)

// UserLoader: актуальные данные пользователя по id из токена.
type UserLoader interface {
	ByID(ctx context.Context, id domain.UserID) (domain.User, error)
}

type AuthDeps struct {
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
	Users     UserLoader
	Log       *zap.Logger
}

// RequireAuth пропускает запрос только с валидным, не отозванным токеном активного пользователя.
// В контекст кладутся domain.User и клеймы токена.
func RequireAuth(deps AuthDeps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, deps)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauth) {
					deps.Log.Error("auth check failed", zap.String("req_id", RequestIDFromCtx(r.Context())), zap.Error(err))
				}
				writeError(w, http.StatusUnauthorized, domain.ErrCodeUnauth, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth: то же, но запрос без токена (или с плохим) идёт дальше анонимным.
func OptionalAuth(deps AuthDeps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctx, err := authenticate(r, deps); err == nil {
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, deps AuthDeps) (context.Context, error) {
	raw := BearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		return nil, domain.ErrUnauth
	}
	claims, err := deps.Tokens.Parse(r.Context(), domain.Token(raw))
	if err != nil {
		return nil, domain.ErrUnauth
	}
	revoked, err := deps.Blacklist.IsRevoked(r.Context(), claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrUnauth
	}
	u, err := deps.Users.ByID(r.Context(), claims.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.ErrUnauth
	case err != nil:
		return nil, err
	case !u.IsActive:
		return nil, domain.ErrUnauth
	}
	ctx := domain.WithUser(r.Context(), u)
	return domain.WithClaims(ctx, claims), nil
}

func BearerToken(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
