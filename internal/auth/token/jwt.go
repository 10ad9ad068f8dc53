package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/EgorLis/resume-builder/internal/domain"
)

// PurposeReset: значение клейма typ у токена сброса пароля.
const PurposeReset = "password_reset"

// ResetTTL: срок жизни токена сброса пароля.
const ResetTTL = time.Hour

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, issuer string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// внутренний тип для подписи/парсинга с jwt.RegisteredClaims
type jwtClaims struct {
	UserID  uuid.UUID `json:"uid"`
	Email   string    `json:"email"`
	Purpose string    `json:"typ,omitempty"` // пусто у access-токена
	jwt.RegisteredClaims
}

var (
	_ domain.TokenManager = (*Manager)(nil)
	_ domain.ResetTokens  = (*Manager)(nil)
)

// Issue выпускает JWT и возвращает доменные клеймы
func (m *Manager) Issue(_ context.Context, userID domain.UserID, email string) (domain.Token, domain.TokenClaims, error) {
	return m.issue(userID, email, "", m.ttl)
}

// IssueReset выпускает токен сброса пароля на ResetTTL.
func (m *Manager) IssueReset(_ context.Context, userID domain.UserID, email string) (domain.Token, domain.TokenClaims, error) {
	return m.issue(userID, email, PurposeReset, ResetTTL)
}

func (m *Manager) issue(userID domain.UserID, email, purpose string, ttl time.Duration) (domain.Token, domain.TokenClaims, error) {
	now := m.now().UTC().Truncate(time.Second)
	jti := uuid.NewString()
	cl := jwtClaims{
		UserID:  userID,
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(m.secret)
	if err != nil {
		return "", domain.TokenClaims{}, fmt.Errorf("sign token: %w", err)
	}
	return domain.Token(tokenStr), toDomain(cl), nil
}

// Parse валидирует подпись, issuer и сроки. Любая проблема с токеном: domain.ErrUnauth.
// Токен сброса пароля здесь не принимается.
func (m *Manager) Parse(_ context.Context, raw domain.Token) (domain.TokenClaims, error) {
	return m.parse(raw, "")
}

// ParseReset принимает только токены с typ=password_reset.
func (m *Manager) ParseReset(_ context.Context, raw domain.Token) (domain.TokenClaims, error) {
	return m.parse(raw, PurposeReset)
}

func (m *Manager) parse(raw domain.Token, purpose string) (domain.TokenClaims, error) {
	var out jwtClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	tkn, err := jwt.ParseWithClaims(string(raw), &out, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrUnauth, err)
	}
	if !tkn.Valid || out.ID == "" || out.UserID == uuid.Nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrUnauth, errors.New("invalid claims"))
	}
	if out.Purpose != purpose {
		return domain.TokenClaims{}, fmt.Errorf("%w: unexpected token type %q", domain.ErrUnauth, out.Purpose)
	}
	return toDomain(out), nil
}

func toDomain(cl jwtClaims) domain.TokenClaims {
	return domain.TokenClaims{
		JTI:       cl.ID,
		UserID:    cl.UserID,
		Email:     cl.Email,
		IssuedAt:  cl.IssuedAt.Time,
		ExpiresAt: cl.ExpiresAt.Time,
	}
}
