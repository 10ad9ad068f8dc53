package domain

import (
	"context"
	"time"
)

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
	UpdatePassword(ctx context.Context, id UserID, passHash string, at time.Time) error
}

type ResumesRepo interface {
	CreateResume(ctx context.Context, r Resume) (Resume, error)
	// Все выборки ограничены владельцем: чужое резюме: ErrNotFound.
	ResumeByID(ctx context.Context, id ResumeID, owner UserID) (Resume, error)
	LatestResume(ctx context.Context, owner UserID) (Resume, error)
	ListResumes(ctx context.Context, owner UserID, offset, limit int) ([]Resume, error)
	CountResumes(ctx context.Context, owner UserID) (int, error)
	UpdateResume(ctx context.Context, r Resume) (Resume, error)
	DeleteResume(ctx context.Context, id ResumeID, owner UserID) error
	// Снимает флаг со всех резюме владельца и ставит на указанное.
	SetDefaultResume(ctx context.Context, id ResumeID, owner UserID) error

	CreateVersion(ctx context.Context, v ResumeVersion) (ResumeVersion, error)
	ListVersions(ctx context.Context, resumeID ResumeID, owner UserID) ([]ResumeVersion, error)
	VersionByID(ctx context.Context, id VersionID, resumeID ResumeID, owner UserID) (ResumeVersion, error)
}
