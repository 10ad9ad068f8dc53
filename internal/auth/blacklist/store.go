package blacklist

import (
	"context"
	"time"

	"github.com/EgorLis/resume-builder/internal/domain"
)

// KV: то, что нужно от Redis-клиента.
type KV interface {
	SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Store хранит отозванные jti до истечения токена.
type Store struct {
	kv  KV
	now func() time.Time
}

var _ domain.TokenBlacklist = (*Store)(nil)

func NewStore(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Revoke помечает jti отозванным до exp (TTL = exp-now, минимум минута).
func (s *Store) Revoke(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.RevokeOnce(ctx, jti, exp)
	return err
}

// RevokeOnce: как Revoke, но сообщает, был ли jti отозван именно этим вызовом.
// Используется для одноразовых токенов.
func (s *Store) RevokeOnce(ctx context.Context, jti string, exp time.Time) (bool, error) {
	ttl := exp.Sub(s.now())
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return s.kv.SetNX(ctx, domain.CacheKeyTokenJTI(jti), []byte("1"), ttl)
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.kv.Exists(ctx, domain.CacheKeyTokenJTI(jti))
}
