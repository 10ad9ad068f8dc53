package ai

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

type scoreRequest struct {
	Resume         domain.ResumeContent `json:"resume"`
	JobDescription *jobRequest          `json:"job_description"`
}

// Score godoc
// @Summary     Score resume
// @Description Оценка 0..100 с разбивкой по секциям. job_description опционален.
// @Tags        resumes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body scoreRequest true "resume, job_description"
// @Success     200 {object} domain.APIEnvelope{data=domain.ScoreResult}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Router      /api/resumes/score [post]
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	const op = "ai.score"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req scoreRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, reqID, op, "bad request", err)
		return
	}

	var job *domain.JobDescription
	if req.JobDescription != nil {
		j := req.JobDescription.job()
		job = &j
	}
	res := h.AI.ScoreResume(r.Context(), req.Resume, job)
	logx.Info(h.Log, reqID, op, "ok", "overall", res.OverallScore, "confidence", res.Confidence)
	v1.WriteOKData(w, r, res)
}
