package resume

import (
	"io"
	"net/http"
	"strconv"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Source godoc
// @Summary     Download original upload
// @Description Исходный файл, из которого было распознано резюме. Поддерживаются Range, HEAD и If-None-Match.
// @Tags        resumes
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       id    path   string true  "resume id"
// @Param       Range header string false "bytes=START-END"
// @Success     200 {file} []byte
// @Success     206 {file} []byte
// @Success     304 "not modified"
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/resumes/{id}/source [get]
func (h *Handler) Source(w http.ResponseWriter, r *http.Request) {
	const op = "resumes.source"
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
		h.fail(w, r, reqID, op, "resume not found", err, "resume_id", id)
		return
	}
	if res.SourceKey == "" || h.Storage == nil {
		h.fail(w, r, reqID, op, "resume has no source file", domain.ErrNotFound, "resume_id", id)
		return
	}

	rangeHdr := r.Header.Get("Range")
	if r.Method == http.MethodHead {
		rangeHdr = ""
	}
	obj, err := h.Storage.Get(r.Context(), res.SourceKey, rangeHdr)
	if err != nil {
		h.fail(w, r, reqID, op, "storage get failed", err, "resume_id", id, "range", rangeHdr)
		return
	}
	defer obj.Body.Close()

	etag := `"` + trimQuotes(obj.ETag) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", v1.HTTPTime(res.CreatedAt))
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.Header().Set("Accept-Ranges", "bytes")

	// Conditional по ETag (If-None-Match)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		logx.Info(h.Log, reqID, op, "not modified by etag", "resume_id", id)
		return
	}

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLen, 10))

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		logx.Info(h.Log, reqID, op, "head ok", "resume_id", id, "len", obj.ContentLen)
		return
	}

	if obj.ContentRange != "" {
		w.Header().Set("Content-Range", obj.ContentRange)
		w.WriteHeader(http.StatusPartialContent)
		logx.Info(h.Log, reqID, op, "partial content", "resume_id", id, "range", obj.ContentRange, "len", obj.ContentLen)
	} else {
		w.WriteHeader(http.StatusOK)
		logx.Info(h.Log, reqID, op, "file ok", "resume_id", id, "len", obj.ContentLen)
	}

	_, _ = io.Copy(w, obj.Body)
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
