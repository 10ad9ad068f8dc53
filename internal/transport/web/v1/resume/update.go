package resume

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Update godoc
// @Summary     Update resume
// @Description Частичное обновление; перед изменением сохраняется версия.
// @Tags        resumes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "resume id"
// @Param       request body updateRequest true "fields to change"
// @Success     200 {object} domain.APIEnvelope{data=domain.Resume}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.update"
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
	var req updateRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, reqID, op, "bad request", err)
		return
	}

	res, err := h.Resumes.Update(r.Context(), me.ID, id, req.patch())
	if err != nil {
		h.fail(w, r, reqID, op, "update failed", err, "resume_id", id)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "resume_id", id)
	v1.WriteOKData(w, r, res)
}

// UpdateLatest godoc
// @Summary     Update my latest resume
// @Tags        resumes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body updateRequest true "fields to change"
// @Success     200 {object} domain.APIEnvelope{data=domain.Resume}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/my-resume [put]
func (h *Handler) UpdateLatest(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.update_latest"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, err := v1.CurrentUser(r)
	if err != nil {
		h.fail(w, r, reqID, op, "unauthorized", err)
		return
	}
	var req updateRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, reqID, op, "bad request", err)
		return
	}

	res, err := h.Resumes.UpdateLatest(r.Context(), me.ID, req.patch())
	if err != nil {
		h.fail(w, r, reqID, op, "update failed", err, "user_id", me.ID)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "resume_id", res.ID)
	v1.WriteOKData(w, r, res)
}

// SetDefault godoc
// @Summary     Make resume default
// @Tags        resumes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "resume id"
// @Success     200 {object} domain.APIEnvelope{data=domain.SuccessResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/{id}/set-default [post]
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.set_default"
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

	if err := h.Resumes.SetDefault(r.Context(), me.ID, id); err != nil {
		h.fail(w, r, reqID, op, "set default failed", err, "resume_id", id)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "resume_id", id)
	v1.WriteOKData(w, r, domain.SuccessResponse{Success: true, Message: "Default resume updated"})
}

// Restore godoc
// @Summary     Restore resume version
// @Description Текущее состояние сохраняется новой версией, затем резюме откатывается к выбранной.
// @Tags        resumes
// @Produce     json
// @Security    BearerAuth
// @Param       id  path string true "resume id"
// @Param       vid path string true "version id"
// @Success     200 {object} domain.APIEnvelope{data=domain.Resume}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/{id}/versions/{vid}/restore [post]
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.restore"
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
	vid, err := v1.UUIDParam(r, "vid")
	if err != nil {
		h.fail(w, r, reqID, op, "bad version id", err)
		return
	}

	res, err := h.Resumes.RestoreVersion(r.Context(), me.ID, id, vid)
	if err != nil {
		h.fail(w, r, reqID, op, "restore failed", err, "resume_id", id, "version_id", vid)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "resume_id", id, "version_id", vid)
	v1.WriteOKData(w, r, res)
}
