package resume

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Get godoc
// @Summary     Get resume
// @Tags        resumes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "resume id"
// @Success     200 {object} domain.APIEnvelope{data=domain.Resume}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.get"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, err := v1.CurrentUser(r)
	if err != nil {
		h.fail(w, r, reqID, op, "unauthorized", err)
		return
	}
	id, err := v1.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, r, reqID, op, "bad resume id", err)
		return
	}

	res, err := h.Resumes.Get(r.Context(), me.ID, id)
	if err != nil {
		h.fail(w, r, reqID, op, "get failed", err, "resume_id", id)
		return
	}

	w.Header().Set("Last-Modified", v1.HTTPTime(res.UpdatedAt))
	logx.Info(h.Log, reqID, op, "ok", "resume_id", id)
	v1.WriteOKData(w, r, res)
}

// Latest godoc
// @Summary     Get my latest resume
// @Description Последнее изменённое резюме пользователя.
// @Tags        resumes
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=domain.Resume}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/my-resume [get]
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.latest"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, err := v1.CurrentUser(r)
	if err != nil {
		h.fail(w, r, reqID, op, "unauthorized", err)
		return
	}

	res, err := h.Resumes.Latest(r.Context(), me.ID)
	if err != nil {
		h.fail(w, r, reqID, op, "latest failed", err, "user_id", me.ID)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "resume_id", res.ID)
	v1.WriteOKData(w, r, res)
}

// Versions godoc
// @Summary     Resume versions
// @Description Снимки резюме, новые первыми.
// @Tags        resumes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "resume id"
// @Success     200 {object} domain.APIEnvelope{data=[]domain.ResumeVersion}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/{id}/versions [get]
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.versions"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, err := v1.CurrentUser(r)
	if err != nil {
		h.fail(w, r, reqID, op, "unauthorized", err)
		return
	}
	id, err := v1.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, r, reqID, op, "bad resume id", err)
		return
	}

	vs, err := h.Resumes.Versions(r.Context(), me.ID, id)
	if err != nil {
		h.fail(w, r, reqID, op, "versions failed", err, "resume_id", id)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "resume_id", id, "count", len(vs))
	v1.WriteOKData(w, r, vs)
}
