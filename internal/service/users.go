// Package service: бизнес-операции над пользователями, резюме и каталогом шаблонов.
// Чтения идут через кеш, каждая мутация сбрасывает кеш пользователя до возврата.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/cache"
	"github.com/EgorLis/resume-builder/internal/domain"
)

// LoginThrottle: backoff после неудачных входов (ratelimit.AuthBackoff).
type LoginThrottle interface {
	Blocked(ctx context.Context, identity string) bool
	RecordFailure(ctx context.Context, identity string) time.Duration
	Reset(ctx context.Context, identity string)
}

// ThrottledError: вход временно заблокирован. errors.Is(err, domain.ErrTooManyRequests) == true.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed logins, retry after %s", e.RetryAfter)
}

func (e *ThrottledError) Unwrap() error { return domain.ErrTooManyRequests }

// DefaultLockout: Retry-After, когда точное время разблокировки неизвестно.
const DefaultLockout = time.Minute

// OnceRevoker: атомарно помечает jti использованным (blacklist.Store).
type OnceRevoker interface {
	RevokeOnce(ctx context.Context, jti string, exp time.Time) (bool, error)
}

// ResetSender доставляет токен сброса пользователю.
type ResetSender interface {
	SendReset(ctx context.Context, user domain.User, token domain.Token, expiresAt time.Time) error
}

// LogResetSender пишет токен в лог на уровне debug: почтовой доставки нет.
type LogResetSender struct {
	Log *zap.Logger
}

func (s LogResetSender) SendReset(_ context.Context, user domain.User, token domain.Token, expiresAt time.Time) error {
	s.Log.Debug("password reset token",
		zap.String("user_id", user.ID.String()),
		zap.String("token", string(token)),
		zap.Time("expires_at", expiresAt))
	return nil
}

var userByIDOp = cache.Op{Category: cache.UserData, Name: "user_by_id"}

func userByIDKey(id domain.UserID) string { return cache.HashArgs([]any{id.String()}) }

type Users struct {
	log      *zap.Logger
	repo     domain.UsersRepo
	hasher   domain.PasswordHasher
	throttle LoginThrottle
	store    *cache.Store
	now      func() time.Time

	resets domain.ResetTokens
	used   OnceRevoker
	sender ResetSender

	byID func(context.Context, domain.UserID) (domain.User, error)
}

func NewUsers(repo domain.UsersRepo, hasher domain.PasswordHasher, throttle LoginThrottle, store *cache.Store, log *zap.Logger) *Users {
	if log == nil {
		log = zap.NewNop()
	}
	u := &Users{log: log, repo: repo, hasher: hasher, throttle: throttle, store: store, now: time.Now}
	u.byID = cache.Wrap(store, userByIDOp, userByIDKey,
		func(ctx context.Context, id domain.UserID) (domain.User, error) {
			user, err := repo.UserByID(ctx, id)
			user.PassHash = ""
			return user, err
		})
	return u
}

// Signup создаёт пользователя. Занятый email: domain.ErrConflict.
func (u *Users) Signup(ctx context.Context, email, password, firstName, lastName string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if !domain.ValidEmail(email) {
		return domain.User{}, fmt.Errorf("invalid email: %w", domain.ErrBadParams)
	}
	if !domain.ValidPassword(password) {
		return domain.User{}, fmt.Errorf("password must be at least 8 characters with a letter and a digit: %w", domain.ErrBadParams)
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := u.now().UTC()
	user, err := u.repo.CreateUser(ctx, domain.User{
		ID:        uuid.New(),
		Email:     email,
		PassHash:  hash,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.User{}, err
	}
	u.log.Info("user signed up", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate проверяет пару email/пароль. Неверные данные и неактивный аккаунт: domain.ErrUnauth,
// после серии неудач вход блокируется (*ThrottledError).
func (u *Users) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if u.throttle != nil && u.throttle.Blocked(ctx, email) {
		return domain.User{}, &ThrottledError{RetryAfter: DefaultLockout}
	}

	user, err := u.repo.UserByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.User{}, u.failed(ctx, email)
	case err != nil:
		return domain.User{}, err
	}

	ok, err := u.hasher.Verify(password, user.PassHash)
	if err != nil {
		u.log.Warn("password hash verify failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return domain.User{}, u.failed(ctx, email)
	}
	if !ok || !user.IsActive {
		return domain.User{}, u.failed(ctx, email)
	}

	if u.throttle != nil {
		u.throttle.Reset(ctx, email)
	}
	return user, nil
}

func (u *Users) failed(ctx context.Context, email string) error {
	if u.throttle != nil {
		if wait := u.throttle.RecordFailure(ctx, email); wait > 0 {
			u.log.Warn("login locked out", zap.Duration("retry_after", wait))
		}
	}
	return fmt.Errorf("invalid credentials: %w", domain.ErrUnauth)
}

// ByID: пользователь по id без хэша пароля (кешируется в категории user_data).
func (u *Users) ByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return u.byID(ctx, id)
}

func (u *Users) Ping(ctx context.Context) error { return u.repo.Ping(ctx) }

// WithPasswordReset включает сброс пароля. sender == nil: LogResetSender.
func (u *Users) WithPasswordReset(tokens domain.ResetTokens, used OnceRevoker, sender ResetSender) *Users {
	if sender == nil {
		sender = LogResetSender{Log: u.log}
	}
	u.resets, u.used, u.sender = tokens, used, sender
	return u
}

var errInvalidResetToken = fmt.Errorf("invalid reset token: %w", domain.ErrBadParams)

// RequestReset выпускает токен сброса и передаёт его ResetSender.
// Неизвестный или неактивный email не считается ошибкой: ответ не должен
// выдавать, зарегистрирован ли адрес.
func (u *Users) RequestReset(ctx context.Context, email string) error {
	if u.resets == nil {
		return fmt.Errorf("password reset is not configured: %w", domain.ErrUnexpected)
	}
	email = domain.NormalizeEmail(email)

	user, err := u.repo.UserByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u.log.Info("password reset for unknown email")
		return nil
	case err != nil:
		return err
	}
	if !user.IsActive {
		u.log.Info("password reset for inactive user", zap.String("user_id", user.ID.String()))
		return nil
	}

	tok, claims, err := u.resets.IssueReset(ctx, user.ID, user.Email)
	if err != nil {
		return err
	}
	if err := u.sender.SendReset(ctx, user, tok, claims.ExpiresAt); err != nil {
		return fmt.Errorf("send reset token: %w", err)
	}
	u.log.Info("password reset requested", zap.String("user_id", user.ID.String()))
	return nil
}

// ConfirmReset меняет пароль по токену сброса. Токен одноразовый.
// Неверный, просроченный или уже использованный токен: domain.ErrBadParams.
func (u *Users) ConfirmReset(ctx context.Context, token domain.Token, newPassword string) error {
	if u.resets == nil {
		return fmt.Errorf("password reset is not configured: %w", domain.ErrUnexpected)
	}
	if !domain.ValidPassword(newPassword) {
		return fmt.Errorf("password must be at least 8 characters with a letter and a digit: %w", domain.ErrBadParams)
	}

	claims, err := u.resets.ParseReset(ctx, token)
	if err != nil {
		u.log.Warn("reset token rejected", zap.Error(err))
		return errInvalidResetToken
	}

	user, err := u.repo.UserByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errInvalidResetToken
	case err != nil:
		return err
	}
	if user.Email != claims.Email || !user.IsActive {
		return errInvalidResetToken
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if u.used != nil {
		first, err := u.used.RevokeOnce(ctx, claims.JTI, claims.ExpiresAt)
		if err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}
		if !first {
			return errInvalidResetToken
		}
	}

	if err := u.repo.UpdatePassword(ctx, user.ID, hash, u.now().UTC()); err != nil {
		return err
	}

	u.store.Delete(ctx, userByIDOp.Key(userByIDKey(user.ID)))
	if u.throttle != nil {
		u.throttle.Reset(ctx, user.Email)
	}
	u.log.Info("password reset", zap.String("user_id", user.ID.String()))
	return nil
}
