package resume

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// List godoc
// @Summary     List resumes
// @Description Свежие изменения первыми, без содержимого.
// @Tags        resumes
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "page (>= 1)" default(1)
// @Param       limit query int false "page size (1..100)" default(10)
// @Success     200 {object} domain.APIEnvelope{data=listResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/resumes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.list"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)

	me, err := v1.CurrentUser(r)
	if err != nil {
		h.fail(w, r, reqID, op, "unauthorized", err)
		return
	}
	page, err := v1.IntQuery(r, "page", 1)
	if err != nil {
		h.fail(w, r, reqID, op, "bad page", err)
		return
	}
	limit, err := v1.IntQuery(r, "limit", service.DefaultPageLimit)
	if err != nil {
		h.fail(w, r, reqID, op, "bad limit", err)
		return
	}

	p, err := h.Resumes.List(r.Context(), me.ID, page, limit)
	if err != nil {
		h.fail(w, r, reqID, op, "list failed", err, "page", page, "limit", limit)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(p.Items), "total", p.Total)
	v1.WriteOKData(w, r, listResponse{Resumes: p.Items, TotalCount: p.Total, Page: p.Page, Limit: p.Limit})
}
