package resume

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Delete godoc
// @Summary     Delete resume
// @Description Удаляет резюме и его версии. Оригинал загрузки в хранилище остаётся: ключи контентно-адресуемые и могут разделяться.
// @Tags        resumes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "resume id"
// @Success     200 {object} domain.APIEnvelope{data=domain.SuccessResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.delete"
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

	if err := h.Resumes.Delete(r.Context(), me.ID, id); err != nil {
		h.fail(w, r, reqID, op, "delete failed", err, "resume_id", id)
		return
	}

	logx.Info(h.Log, reqID, op, "deleted", "resume_id", id)
	v1.WriteOKData(w, r, domain.SuccessResponse{Success: true, Message: "Resume deleted"})
}
