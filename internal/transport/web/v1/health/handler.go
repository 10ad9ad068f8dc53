package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

type Handler struct {
	Log     *zap.Logger
	DB      Pinger
	Cache   Pinger
	Storage Pinger
}

type readiness struct {
	Status  string `json:"status"`
	DB      string `json:"db"`
	Cache   string `json:"cache"`
	Storage string `json:"storage"`
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Проверка, жив ли сервис (не зависит от БД/кэша)
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=string}
// @Router       /api/healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	v1.WriteOKData(w, r, "ok")
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Пинг БД, хранилища и кеша. Недоступный кеш не делает сервис неготовым: он работает без кеша.
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=readiness}
// @Failure      503  {object}  domain.APIEnvelope{data=readiness}
// @Router       /api/readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out := readiness{
		Status:  "ready",
		DB:      h.check(ctx, reqID, op, "db", h.DB),
		Cache:   h.check(ctx, reqID, op, "cache", h.Cache),
		Storage: h.check(ctx, reqID, op, "storage", h.Storage),
	}
	if out.Cache == "error" {
		out.Status = "degraded"
	}
	if out.DB == "error" || out.Storage == "error" {
		out.Status = "unavailable"
		v1.WriteEnvelope(w, r, http.StatusServiceUnavailable, domain.APIEnvelope{
			Error: &domain.APIError{Code: domain.ErrCodeUnexpected, Text: "not ready"},
			Data:  out,
		})
		return
	}

	logx.Info(h.Log, reqID, op, out.Status)
	v1.WriteOKData(w, r, out)
}

func (h *Handler) check(ctx context.Context, reqID, op, name string, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, name+" ping failed", err)
		return "error"
	}
	return "ok"
}
