package domain

import "context"

// Ключ для хранения аутентифицированного пользователя в контексте HTTP-запроса
type ctxKey int

const (
	userCtxKey ctxKey = iota + 1
	claimsCtxKey
)

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

func UserFromCtx(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userCtxKey).(User)
	return u, ok
}

// Клеймы нужны logout-у: jti и exp текущего токена
func WithClaims(ctx context.Context, c TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

func ClaimsFromCtx(ctx context.Context) (TokenClaims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(TokenClaims)
	return c, ok
}
