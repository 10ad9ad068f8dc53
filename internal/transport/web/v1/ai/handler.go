package ai

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// MaxUpload: предел multipart-загрузки резюме.
const MaxUpload = 10 << 20

// Gateway: операции ai.Gateway. Ошибок нет: при сбое провайдера возвращаются значения по умолчанию.
type Gateway interface {
	ParseResume(ctx context.Context, text string, hints domain.ParseHints) domain.ResumeContent
	OptimizeResume(ctx context.Context, c domain.ResumeContent, job domain.JobDescription) domain.ResumeContent
	GenerateResume(ctx context.Context, job domain.JobDescription, background string) domain.ResumeContent
	GenerateCoverLetter(ctx context.Context, c domain.ResumeContent, job domain.JobDescription) string
	ScoreResume(ctx context.Context, c domain.ResumeContent, job *domain.JobDescription) domain.ScoreResult
}

type ResumeCreator interface {
	Create(ctx context.Context, uid domain.UserID, in service.NewResume) (domain.Resume, error)
}

// Handler обслуживает /api/ai/* и /api/resumes/score.
type Handler struct {
	Log     *zap.Logger
	AI      Gateway
	Resumes ResumeCreator
	Storage domain.BlobStorage
}

type jobRequest struct {
	Title        string   `json:"title" validate:"max=200"`
	Company      string   `json:"company" validate:"max=200"`
	Description  string   `json:"description" validate:"required,max=20000"`
	Requirements []string `json:"requirements" validate:"omitempty,max=100,dive,max=1000"`
}

func (j jobRequest) job() domain.JobDescription {
	return domain.JobDescription{
		Title:        j.Title,
		Company:      j.Company,
		Description:  j.Description,
		Requirements: j.Requirements,
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, reqID, op, msg string, err error, kv ...any) {
	if status, _ := v1.MapDomainError(err); status >= http.StatusInternalServerError {
		logx.Error(h.Log, reqID, op, msg, err, kv...)
	} else {
		logx.Warn(h.Log, reqID, op, msg, append(kv, "error", err.Error())...)
	}
	v1.WriteDomainError(w, r, err)
}
