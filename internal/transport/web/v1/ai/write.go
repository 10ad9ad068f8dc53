package ai

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

type optimizeRequest struct {
	Resume         domain.ResumeContent `json:"resume"`
	JobDescription jobRequest           `json:"job_description"`
}

type generateRequest struct {
	JobDescription jobRequest `json:"job_description"`
	UserBackground string     `json:"user_background" validate:"max=20000"`
}

type coverLetterResponse struct {
	CoverLetter string `json:"cover_letter"`
}

// Optimize godoc
// @Summary     Optimize resume for a job
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body optimizeRequest true "resume, job_description"
// @Success     200 {object} domain.APIEnvelope{data=domain.ResumeContent}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Router      /api/ai/optimize-resume [post]
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	const op = "ai.optimize"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req optimizeRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, reqID, op, "bad request", err)
		return
	}

	out := h.AI.OptimizeResume(r.Context(), req.Resume, req.JobDescription.job())
	logx.Info(h.Log, reqID, op, "ok", "skills", len(out.Skills), "experience", len(out.Experience))
	v1.WriteOKData(w, r, out)
}

// Generate godoc
// @Summary     Generate resume from a job description
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body generateRequest true "job_description, user_background"
// @Success     200 {object} domain.APIEnvelope{data=domain.ResumeContent}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Router      /api/ai/generate-resume [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	const op = "ai.generate"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req generateRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, reqID, op, "bad request", err)
		return
	}

	out := h.AI.GenerateResume(r.Context(), req.JobDescription.job(), req.UserBackground)
	logx.Info(h.Log, reqID, op, "ok", "skills", len(out.Skills))
	v1.WriteOKData(w, r, out)
}

// CoverLetter godoc
// @Summary     Generate cover letter
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body optimizeRequest true "resume, job_description"
// @Success     200 {object} domain.APIEnvelope{data=coverLetterResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Router      /api/ai/generate-cover-letter [post]
func (h *Handler) CoverLetter(w http.ResponseWriter, r *http.Request) {
	const op = "ai.cover_letter"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req optimizeRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, reqID, op, "bad request", err)
		return
	}

	letter := h.AI.GenerateCoverLetter(r.Context(), req.Resume, req.JobDescription.job())
	logx.Info(h.Log, reqID, op, "ok", "chars", len(letter))
	v1.WriteOKData(w, r, coverLetterResponse{CoverLetter: letter})
}
