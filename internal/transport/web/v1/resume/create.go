package resume

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Create godoc
// @Summary     Create resume
// @Description Тело опционально; без него создаётся пустое резюме "My Resume". Title можно передать и query-параметром.
// @Tags        resumes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       title   query string        false "title"
// @Param       request body  createRequest false "title, template_id, content"
// @Success     201 {object} domain.APIEnvelope{data=domain.ResumeSummary}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Router      /api/resumes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.create"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, err := v1.CurrentUser(r)
	if err != nil {
		h.fail(w, r, reqID, op, "unauthorized", err)
		return
	}

	req := createRequest{Title: r.URL.Query().Get("title")}
	if r.ContentLength != 0 {
		if err := v1.DecodeJSON(w, r, &req); err != nil {
			h.fail(w, r, reqID, op, "bad request", err)
			return
		}
	}

	in := service.NewResume{Title: req.Title, Style: domain.ResumeStyle{TemplateID: req.TemplateID}}
	if req.Content != nil {
		in.Content = *req.Content
	}
	res, err := h.Resumes.Create(r.Context(), me.ID, in)
	if err != nil {
		h.fail(w, r, reqID, op, "create failed", err, "user_id", me.ID)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "resume_id", res.ID)
	v1.WriteCreatedData(w, r, res.Summary())
}
