package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/resume-builder/internal/domain"
)

var userColumns = []string{"id", "email", "pass_hash", "first_name", "last_name", "is_active", "created_at", "updated_at"}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.FirstName, &u.LastName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser: занятый email даёт domain.ErrConflict.
func (r *PGRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	q := r.qb().Insert(r.table("users")).
		Columns(userColumns...).
		Values(u.ID, u.Email, u.PassHash, u.FirstName, u.LastName, u.IsActive, u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING id, email, pass_hash, first_name, last_name, is_active, created_at, updated_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.User{}, err
	}
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	out, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err := r.done("CreateUser", start, err); err != nil {
		return domain.User{}, err
	}
	return out, nil
}

func (r *PGRepo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.userBy(ctx, "UserByEmail", sq.Eq{"email": email})
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.userBy(ctx, "UserByID", sq.Eq{"id": id})
}

func (r *PGRepo) userBy(ctx context.Context, op string, where sq.Eq) (domain.User, error) {
	q := r.qb().Select(userColumns...).From(r.table("users")).Where(where)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.User{}, err
	}
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err := r.done(op, start, err); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UpdatePassword: нет такого пользователя: domain.ErrNotFound.
func (r *PGRepo) UpdatePassword(ctx context.Context, id domain.UserID, passHash string, at time.Time) error {
	sqlStr, args, err := r.qb().Update(r.table("users")).
		Set("pass_hash", passHash).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	r.logSQL("UpdatePassword", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err := r.done("UpdatePassword", start, err); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
