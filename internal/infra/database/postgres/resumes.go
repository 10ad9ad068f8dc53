package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/resume-builder/internal/domain"
)

var resumeColumns = []string{"id", "user_id", "title", "is_default", "content", "style", "source_key", "created_at", "updated_at"}

type scanner interface{ Scan(...any) error }

func scanResume(row scanner) (domain.Resume, error) {
	var (
		res            domain.Resume
		content, style []byte
		sourceKey      *string
	)
	if err := row.Scan(&res.ID, &res.UserID, &res.Title, &res.IsDefault, &content, &style, &sourceKey, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return domain.Resume{}, err
	}
	if err := decodeBody(content, style, &res.ResumeContent, &res.ResumeStyle); err != nil {
		return domain.Resume{}, fmt.Errorf("resume %s: %w", res.ID, err)
	}
	if sourceKey != nil {
		res.SourceKey = *sourceKey
	}
	return res, nil
}

func decodeBody(content, style []byte, c *domain.ResumeContent, st *domain.ResumeStyle) error {
	*c = domain.EmptyContent()
	if len(content) > 0 {
		if err := json.Unmarshal(content, c); err != nil {
			return fmt.Errorf("decode content: %w", err)
		}
	}
	if len(style) > 0 {
		if err := json.Unmarshal(style, st); err != nil {
			return fmt.Errorf("decode style: %w", err)
		}
	}
	return nil
}

func encodeBody(c domain.ResumeContent, st domain.ResumeStyle) (content, style []byte, err error) {
	if content, err = json.Marshal(c); err != nil {
		return nil, nil, fmt.Errorf("encode content: %w", err)
	}
	if style, err = json.Marshal(st); err != nil {
		return nil, nil, fmt.Errorf("encode style: %w", err)
	}
	return content, style, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PGRepo) CreateResume(ctx context.Context, res domain.Resume) (domain.Resume, error) {
	content, style, err := encodeBody(res.ResumeContent, res.ResumeStyle)
	if err != nil {
		return domain.Resume{}, err
	}
	q := r.qb().Insert(r.table("resumes")).
		Columns(resumeColumns...).
		Values(res.ID, res.UserID, res.Title, res.IsDefault, content, style, nullable(res.SourceKey), res.CreatedAt, res.UpdatedAt).
		Suffix("RETURNING id, user_id, title, is_default, content, style, source_key, created_at, updated_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.Resume{}, err
	}
	r.logSQL("CreateResume", sqlStr, args)

	start := time.Now()
	out, err := scanResume(r.pool.QueryRow(ctx, sqlStr, args...))
	if err := r.done("CreateResume", start, err); err != nil {
		return domain.Resume{}, err
	}
	return out, nil
}

func (r *PGRepo) ResumeByID(ctx context.Context, id domain.ResumeID, owner domain.UserID) (domain.Resume, error) {
	q := r.qb().Select(resumeColumns...).From(r.table("resumes")).
		Where(sq.Eq{"id": id, "user_id": owner})
	return r.oneResume(ctx, "ResumeByID", q)
}

func (r *PGRepo) LatestResume(ctx context.Context, owner domain.UserID) (domain.Resume, error) {
	q := r.qb().Select(resumeColumns...).From(r.table("resumes")).
		Where(sq.Eq{"user_id": owner}).
		OrderBy("updated_at DESC", "id").
		Limit(1)
	return r.oneResume(ctx, "LatestResume", q)
}

func (r *PGRepo) oneResume(ctx context.Context, op string, q sq.SelectBuilder) (domain.Resume, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.Resume{}, err
	}
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	res, err := scanResume(r.pool.QueryRow(ctx, sqlStr, args...))
	if err := r.done(op, start, err); err != nil {
		return domain.Resume{}, err
	}
	return res, nil
}

func (r *PGRepo) ListResumes(ctx context.Context, owner domain.UserID, offset, limit int) ([]domain.Resume, error) {
	q := r.qb().Select(resumeColumns...).From(r.table("resumes")).
		Where(sq.Eq{"user_id": owner}).
		OrderBy("updated_at DESC", "id").
		Offset(uint64(offset)).
		Limit(uint64(limit))

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.logSQL("ListResumes", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, r.done("ListResumes", start, err)
	}
	defer rows.Close()

	out := make([]domain.Resume, 0, limit)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, r.done("ListResumes", start, err)
		}
		out = append(out, res)
	}
	if err := r.done("ListResumes", start, rows.Err()); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) CountResumes(ctx context.Context, owner domain.UserID) (int, error) {
	q := r.qb().Select("count(*)").From(r.table("resumes")).Where(sq.Eq{"user_id": owner})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	r.logSQL("CountResumes", sqlStr, args)

	start := time.Now()
	var n int
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n)
	if err := r.done("CountResumes", start, err); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PGRepo) UpdateResume(ctx context.Context, res domain.Resume) (domain.Resume, error) {
	content, style, err := encodeBody(res.ResumeContent, res.ResumeStyle)
	if err != nil {
		return domain.Resume{}, err
	}
	q := r.qb().Update(r.table("resumes")).
		Set("title", res.Title).
		Set("content", content).
		Set("style", style).
		Set("updated_at", res.UpdatedAt).
		Where(sq.Eq{"id": res.ID, "user_id": res.UserID}).
		Suffix("RETURNING id, user_id, title, is_default, content, style, source_key, created_at, updated_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.Resume{}, err
	}
	r.logSQL("UpdateResume", sqlStr, args)

	start := time.Now()
	out, err := scanResume(r.pool.QueryRow(ctx, sqlStr, args...))
	if err := r.done("UpdateResume", start, err); err != nil {
		return domain.Resume{}, err
	}
	return out, nil
}

// DeleteResume удаляет резюме; версии уходят каскадом.
func (r *PGRepo) DeleteResume(ctx context.Context, id domain.ResumeID, owner domain.UserID) error {
	q := r.qb().Delete(r.table("resumes")).Where(sq.Eq{"id": id, "user_id": owner})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	r.logSQL("DeleteResume", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err := r.done("DeleteResume", start, err); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDefaultResume в одной транзакции снимает флаг с остальных резюме владельца.
func (r *PGRepo) SetDefaultResume(ctx context.Context, id domain.ResumeID, owner domain.UserID) error {
	start := time.Now()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.done("SetDefaultResume.begin", start, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// сначала снимаем флаг: частичный уникальный индекс не допускает двух основных
	unset, args, err := r.qb().Update(r.table("resumes")).
		Set("is_default", false).
		Where(sq.And{sq.Eq{"user_id": owner}, sq.NotEq{"id": id}, sq.Eq{"is_default": true}}).
		ToSql()
	if err != nil {
		return err
	}
	r.logSQL("SetDefaultResume.unset", unset, args)
	if _, err := tx.Exec(ctx, unset, args...); err != nil {
		return r.done("SetDefaultResume.unset", start, err)
	}

	set, args, err := r.qb().Update(r.table("resumes")).
		Set("is_default", true).
		Where(sq.Eq{"id": id, "user_id": owner}).
		ToSql()
	if err != nil {
		return err
	}
	r.logSQL("SetDefaultResume.set", set, args)
	tag, err := tx.Exec(ctx, set, args...)
	if err != nil {
		return r.done("SetDefaultResume.set", start, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return r.done("SetDefaultResume", start, tx.Commit(ctx))
}
