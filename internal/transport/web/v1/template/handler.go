package template

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Catalog: операции service.Templates, нужные хендлерам.
type Catalog interface {
	All(ctx context.Context) ([]service.Template, error)
	ByCategory(ctx context.Context, category string) ([]service.Template, error)
	ByProfession(ctx context.Context, profession string) ([]service.Template, error)
	Get(ctx context.Context, id string) (service.Template, error)
	Search(ctx context.Context, query string) ([]service.Template, error)
	Categories(ctx context.Context) ([]string, error)
	Professions(ctx context.Context) ([]string, error)
	ClearCache(ctx context.Context) int
}

// Handler обслуживает /api/templates/*.
type Handler struct {
	Log       *zap.Logger
	Templates Catalog
}

type listResponse struct {
	Templates  []service.Template `json:"templates"`
	TotalCount int                `json:"total_count"`
	Category   string             `json:"category,omitempty"`
	Profession string             `json:"profession,omitempty"`
	Query      string             `json:"query,omitempty"`
}

type detailResponse struct {
	ID       string             `json:"id"`
	Metadata service.Template   `json:"metadata"`
	Style    domain.ResumeStyle `json:"style"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	TotalCount int      `json:"total_count"`
}

type professionsResponse struct {
	Professions []string `json:"professions"`
	TotalCount  int      `json:"total_count"`
}

type clearResponse struct {
	domain.SuccessResponse
	Deleted int `json:"deleted"`
}

// List godoc
// @Summary     List templates
// @Tags        templates
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=listResponse}
// @Failure     429 {object} domain.APIEnvelope
// @Router      /api/templates [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "templates.list", func(ctx context.Context) ([]service.Template, listResponse, error) {
		ts, err := h.Templates.All(ctx)
		return ts, listResponse{}, err
	})
}

// ByCategory godoc
// @Summary     Templates by category
// @Tags        templates
// @Produce     json
// @Param       category path string true "category"
// @Success     200 {object} domain.APIEnvelope{data=listResponse}
// @Router      /api/templates/category/{category} [get]
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	h.list(w, r, "templates.by_category", func(ctx context.Context) ([]service.Template, listResponse, error) {
		ts, err := h.Templates.ByCategory(ctx, category)
		return ts, listResponse{Category: category}, err
	})
}

// ByProfession godoc
// @Summary     Templates recommended for a profession
// @Tags        templates
// @Produce     json
// @Param       profession path string true "profession"
// @Success     200 {object} domain.APIEnvelope{data=listResponse}
// @Router      /api/templates/profession/{profession} [get]
func (h *Handler) ByProfession(w http.ResponseWriter, r *http.Request) {
	profession := chi.URLParam(r, "profession")
	h.list(w, r, "templates.by_profession", func(ctx context.Context) ([]service.Template, listResponse, error) {
		ts, err := h.Templates.ByProfession(ctx, profession)
		return ts, listResponse{Profession: profession}, err
	})
}

// Search godoc
// @Summary     Search templates
// @Description По названию, описанию и профессиям; query не короче 2 символов.
// @Tags        templates
// @Produce     json
// @Param       query query string true "search query"
// @Success     200 {object} domain.APIEnvelope{data=listResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Router      /api/templates/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	h.list(w, r, "templates.search", func(ctx context.Context) ([]service.Template, listResponse, error) {
		ts, err := h.Templates.Search(ctx, query)
		return ts, listResponse{Query: query}, err
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op string, load func(context.Context) ([]service.Template, listResponse, error)) {
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	ts, resp, err := load(r.Context())
	if err != nil {
		logx.Warn(h.Log, reqID, op, "load failed", "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}
	if ts == nil {
		ts = []service.Template{}
	}
	resp.Templates, resp.TotalCount = ts, len(ts)

	logx.Info(h.Log, reqID, op, "ok", "count", len(ts))
	v1.WriteOKData(w, r, resp)
}

// Get godoc
// @Summary     Template details
// @Tags        templates
// @Produce     json
// @Param       id path string true "template id"
// @Success     200 {object} domain.APIEnvelope{data=detailResponse}
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/templates/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "templates.get"
	reqID := mw.RequestIDFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	t, err := h.Templates.Get(r.Context(), id)
	if err != nil {
		logx.Warn(h.Log, reqID, op, "template not found", "template_id", id, "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, detailResponse{ID: t.ID, Metadata: t, Style: t.Style()})
}

// Categories godoc
// @Summary     Template categories
// @Tags        templates
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=categoriesResponse}
// @Router      /api/templates/categories/list [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Templates.Categories(r.Context())
	if err != nil {
		logx.Error(h.Log, mw.RequestIDFromCtx(r.Context()), "templates.categories", "load failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, categoriesResponse{Categories: cs, TotalCount: len(cs)})
}

// Professions godoc
// @Summary     Professions covered by templates
// @Tags        templates
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=professionsResponse}
// @Router      /api/templates/professions/list [get]
func (h *Handler) Professions(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Templates.Professions(r.Context())
	if err != nil {
		logx.Error(h.Log, mw.RequestIDFromCtx(r.Context()), "templates.professions", "load failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, professionsResponse{Professions: ps, TotalCount: len(ps)})
}

// ClearCache godoc
// @Summary     Clear template cache
// @Tags        templates
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=clearResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Router      /api/templates/clear-cache [post]
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	const op = "templates.clear_cache"
	reqID := mw.RequestIDFromCtx(r.Context())

	n := h.Templates.ClearCache(r.Context())
	logx.Info(h.Log, reqID, op, "ok", "deleted", n)
	v1.WriteOKData(w, r, clearResponse{
		SuccessResponse: domain.SuccessResponse{Success: true, Message: "Template cache cleared successfully"},
		Deleted:         n,
	})
}
