package ai

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/extract"
	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// ParseAndSave godoc
// @Summary     Parse uploaded resume and save it
// @Description multipart: file (pdf, docx, txt). Текст извлекается, размечается подсказками и разбирается моделью; оригинал сохраняется в хранилище.
// @Tags        ai
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "resume file"
// @Success     201 {object} domain.APIEnvelope{data=domain.Resume}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/ai/parse-and-save-resume [post]
func (h *Handler) ParseAndSave(w http.ResponseWriter, r *http.Request) {
	const op = "ai.parse_and_save"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, err := v1.CurrentUser(r)
	if err != nil {
		h.fail(w, r, reqID, op, "unauthorized", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUpload)
	if err := r.ParseMultipartForm(MaxUpload); err != nil {
		h.fail(w, r, reqID, op, "parse form failed", fmt.Errorf("multipart: %v: %w", err, domain.ErrBadParams))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fh, hdr, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, reqID, op, "missing file", fmt.Errorf("file: %v: %w", err, domain.ErrBadParams))
		return
	}
	defer fh.Close()

	filename := filepath.Base(hdr.Filename)
	if !extract.Supported(filename) {
		h.fail(w, r, reqID, op, "unsupported file", domain.ErrUnsupportedFile, "filename", filename)
		return
	}
	content, err := io.ReadAll(fh)
	if err != nil {
		h.fail(w, r, reqID, op, "read file failed", fmt.Errorf("read upload: %v: %w", err, domain.ErrBadParams))
		return
	}

	text, err := extract.Text(filename, content)
	if err != nil {
		// битый или пустой документ: ошибка клиента
		if !errors.Is(err, domain.ErrUnsupportedFile) && !errors.Is(err, domain.ErrBadParams) {
			err = fmt.Errorf("%v: %w", err, domain.ErrBadParams)
		}
		h.fail(w, r, reqID, op, "extract text failed", err, "filename", filename)
		return
	}
	hints := extract.Hints(text)

	// оригинал в хранилище: без него резюме всё равно создаём
	var sourceKey string
	if h.Storage != nil {
		res, err := h.Storage.Put(r.Context(), bytes.NewReader(content), filename, extract.ContentType(filename))
		if err != nil {
			logx.Error(h.Log, reqID, op, "storage put failed", err, "filename", filename)
		} else {
			sourceKey = res.StorageKey
		}
	}

	parsed := h.AI.ParseResume(r.Context(), text, hints)
	saved, err := h.Resumes.Create(r.Context(), me.ID, service.NewResume{
		Title:     "Resume from " + filename,
		Content:   parsed,
		SourceKey: sourceKey,
	})
	if err != nil {
		h.fail(w, r, reqID, op, "save failed", err, "user_id", me.ID)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "resume_id", saved.ID, "filename", filename,
		"bytes", len(content), "sections", len(hints.DetectedSections), "source_key", sourceKey)
	v1.WriteCreatedData(w, r, saved)
}
