package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/resume-builder/internal/domain"
)

var versionColumns = []string{"id", "resume_id", "user_id", "version", "title", "content", "style", "created_at"}

func scanVersion(row scanner) (domain.ResumeVersion, error) {
	var (
		v              domain.ResumeVersion
		content, style []byte
	)
	if err := row.Scan(&v.ID, &v.ResumeID, &v.UserID, &v.Version, &v.Title, &content, &style, &v.CreatedAt); err != nil {
		return domain.ResumeVersion{}, err
	}
	if err := decodeBody(content, style, &v.Content, &v.Style); err != nil {
		return domain.ResumeVersion{}, fmt.Errorf("version %s: %w", v.ID, err)
	}
	return v, nil
}

// CreateVersion назначает следующий номер версии резюме (уникальность: ограничением в БД).
func (r *PGRepo) CreateVersion(ctx context.Context, v domain.ResumeVersion) (domain.ResumeVersion, error) {
	content, style, err := encodeBody(v.Content, v.Style)
	if err != nil {
		return domain.ResumeVersion{}, err
	}
	next := sq.Expr("(SELECT COALESCE(MAX(version), 0) + 1 FROM "+r.table("resume_versions")+" WHERE resume_id = ?)", v.ResumeID)
	q := r.qb().Insert(r.table("resume_versions")).
		Columns(versionColumns...).
		Values(v.ID, v.ResumeID, v.UserID, next, v.Title, content, style, v.CreatedAt).
		Suffix("RETURNING id, resume_id, user_id, version, title, content, style, created_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.ResumeVersion{}, err
	}
	r.logSQL("CreateVersion", sqlStr, args)

	start := time.Now()
	out, err := scanVersion(r.pool.QueryRow(ctx, sqlStr, args...))
	if err := r.done("CreateVersion", start, err); err != nil {
		return domain.ResumeVersion{}, err
	}
	return out, nil
}

func (r *PGRepo) ListVersions(ctx context.Context, resumeID domain.ResumeID, owner domain.UserID) ([]domain.ResumeVersion, error) {
	q := r.qb().Select(versionColumns...).From(r.table("resume_versions")).
		Where(sq.Eq{"resume_id": resumeID, "user_id": owner}).
		OrderBy("version DESC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.logSQL("ListVersions", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, r.done("ListVersions", start, err)
	}
	defer rows.Close()

	var out []domain.ResumeVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, r.done("ListVersions", start, err)
		}
		out = append(out, v)
	}
	if err := r.done("ListVersions", start, rows.Err()); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) VersionByID(ctx context.Context, id domain.VersionID, resumeID domain.ResumeID, owner domain.UserID) (domain.ResumeVersion, error) {
	q := r.qb().Select(versionColumns...).From(r.table("resume_versions")).
		Where(sq.Eq{"id": id, "resume_id": resumeID, "user_id": owner})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.ResumeVersion{}, err
	}
	r.logSQL("VersionByID", sqlStr, args)

	start := time.Now()
	v, err := scanVersion(r.pool.QueryRow(ctx, sqlStr, args...))
	if err := r.done("VersionByID", start, err); err != nil {
		return domain.ResumeVersion{}, err
	}
	return v, nil
}
