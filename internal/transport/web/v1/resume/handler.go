package resume

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Resumes: операции service.Resumes, нужные хендлерам.
type Resumes interface {
	Create(ctx context.Context, uid domain.UserID, in service.NewResume) (domain.Resume, error)
	List(ctx context.Context, uid domain.UserID, page, limit int) (domain.ResumePage, error)
	Latest(ctx context.Context, uid domain.UserID) (domain.Resume, error)
	Get(ctx context.Context, uid domain.UserID, id domain.ResumeID) (domain.Resume, error)
	Update(ctx context.Context, uid domain.UserID, id domain.ResumeID, patch domain.ResumePatch) (domain.Resume, error)
	UpdateLatest(ctx context.Context, uid domain.UserID, patch domain.ResumePatch) (domain.Resume, error)
	Delete(ctx context.Context, uid domain.UserID, id domain.ResumeID) error
	SetDefault(ctx context.Context, uid domain.UserID, id domain.ResumeID) error
	Versions(ctx context.Context, uid domain.UserID, id domain.ResumeID) ([]domain.ResumeVersion, error)
	RestoreVersion(ctx context.Context, uid domain.UserID, id domain.ResumeID, vid domain.VersionID) (domain.Resume, error)
}

// Handler обслуживает /api/resumes/*.
type Handler struct {
	Log     *zap.Logger
	Resumes Resumes
	Storage domain.BlobStorage
}

// fail логирует и пишет ошибку: клиентские: warn, остальные: error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, reqID, op, msg string, err error, kv ...any) {
	if status, _ := v1.MapDomainError(err); status >= http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		logx.Error(h.Log, reqID, op, msg, err, kv...)
	} else {
		logx.Warn(h.Log, reqID, op, msg, append(kv, "error", err.Error())...)
	}
	v1.WriteDomainError(w, r, err)
}
