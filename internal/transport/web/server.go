package web

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/metrics"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/ai"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/auth"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/health"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/resume"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/template"
)

// Deps: всё, что нужно HTTP-слою; собирается в app.Build.
type Deps struct {
	Log         *zap.Logger
	Metrics     *metrics.Collector
	Limiter     mw.Limiter
	Auth        mw.AuthDeps
	CORSOrigins []string
	// TrustedProxies: сети, чьим X-Forwarded-For можно верить
	TrustedProxies []netip.Prefix

	Users     auth.Users
	Resumes   resume.Resumes
	AI        ai.Gateway
	Templates template.Catalog
	Storage   domain.BlobStorage

	DB    health.Pinger
	Cache health.Pinger
}

type Server struct {
	log    *zap.Logger
	server *http.Server
}

func New(addr string, d Deps) *Server {
	h := handlers{
		health: &health.Handler{Log: d.Log.Named("health"), DB: d.DB, Cache: d.Cache, Storage: d.Storage},
		auth: &auth.Handler{
			Log:       d.Log.Named("auth"),
			Users:     d.Users,
			Tokens:    d.Auth.Tokens,
			Blacklist: d.Auth.Blacklist,
		},
		resumes:   &resume.Handler{Log: d.Log.Named("resumes"), Resumes: d.Resumes, Storage: d.Storage},
		ai:        &ai.Handler{Log: d.Log.Named("ai"), AI: d.AI, Resumes: d.Resumes, Storage: d.Storage},
		templates: &template.Handler{Log: d.Log.Named("templates"), Templates: d.Templates},
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(h, d),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second, // генерация cover letter: до 120s
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, log: d.Log}
}

// Handler: корневой обработчик (для httptest).
func (ws *Server) Handler() http.Handler { return ws.server.Handler }

// Run блокируется до остановки сервера.
func (ws *Server) Run() error {
	ws.log.Info("server started", zap.String("addr", ws.server.Addr))
	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Warn("forced to shutdown", zap.Error(err))
	}
	ws.log.Info("server exited gracefully")
}
