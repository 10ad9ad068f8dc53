package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EgorLis/resume-builder/internal/docs"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/ai"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/auth"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/health"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/resume"
	"github.com/EgorLis/resume-builder/internal/transport/web/v1/template"
)

// Лимиты запросов на окно limitWindow
const (
	limitWindow     = 60 * time.Second
	limitAuthIP     = 10
	limitSession    = 60
	limitResumes    = 120
	limitAIUpload   = 10
	limitAI         = 20
	limitTemplates  = 300
	limitClearCache = 10
)

type handlers struct {
	health    *health.Handler
	auth      *auth.Handler
	resumes   *resume.Handler
	ai        *ai.Handler
	templates *template.Handler
}

func newRouter(h handlers, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RealIP(d.TrustedProxies))
	r.Use(mw.WithRequestID)
	r.Use(mw.Logging(d.Log, d.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Range", "If-None-Match", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader, "Retry-After", "Content-Range", "ETag"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := mw.RequireAuth(d.Auth)
	optionalAuth := mw.OptionalAuth(d.Auth)
	perIP := func(n int) func(http.Handler) http.Handler {
		return mw.RateLimitIP(d.Limiter, d.Metrics, n, limitWindow)
	}
	perUser := func(n int) func(http.Handler) http.Handler {
		return mw.RateLimitUser(d.Limiter, d.Metrics, n, limitWindow)
	}

	r.Route("/api", func(r chi.Router) {
		// health
		r.Get("/healthz", h.health.Liveness)
		r.Get("/readyz", h.health.Readiness)

		r.Route("/auth", func(r chi.Router) {
			r.With(perIP(limitAuthIP)).Post("/signup", h.auth.Signup)
			r.With(perIP(limitAuthIP)).Post("/login", h.auth.Login)
			r.With(perIP(limitAuthIP)).Post("/reset-password", h.auth.ResetPassword)
			r.With(perIP(limitAuthIP)).Post("/reset-password/confirm", h.auth.ConfirmReset)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, perUser(limitSession))
				r.Get("/me", h.auth.Me)
				r.Post("/logout", h.auth.Logout)
			})
		})

		r.Route("/resumes", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(perUser(limitAI)).Post("/score", h.ai.Score)

			r.Group(func(r chi.Router) {
				r.Use(perUser(limitResumes))
				r.Post("/", h.resumes.Create)
				r.Get("/", h.resumes.List)
				r.Get("/my-resume", h.resumes.Latest)
				r.Put("/my-resume", h.resumes.UpdateLatest)
				r.Get("/{id}", h.resumes.Get)
				r.Put("/{id}", h.resumes.Update)
				r.Delete("/{id}", h.resumes.Delete)
				r.Post("/{id}/set-default", h.resumes.SetDefault)
				r.Get("/{id}/versions", h.resumes.Versions)
				r.Post("/{id}/versions/{vid}/restore", h.resumes.Restore)
				r.Get("/{id}/source", h.resumes.Source)
				r.Head("/{id}/source", h.resumes.Source)
			})
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(perUser(limitAIUpload)).Post("/parse-and-save-resume", h.ai.ParseAndSave)
			r.Group(func(r chi.Router) {
				r.Use(perUser(limitAI))
				r.Post("/optimize-resume", h.ai.Optimize)
				r.Post("/generate-resume", h.ai.Generate)
				r.Post("/generate-cover-letter", h.ai.CoverLetter)
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.With(requireAuth, perUser(limitClearCache)).Post("/clear-cache", h.templates.ClearCache)
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth, perUser(limitTemplates))
				r.Get("/", h.templates.List)
				r.Get("/search", h.templates.Search)
				r.Get("/categories/list", h.templates.Categories)
				r.Get("/professions/list", h.templates.Professions)
				r.Get("/category/{category}", h.templates.ByCategory)
				r.Get("/profession/{profession}", h.templates.ByProfession)
				r.Get("/{id}", h.templates.Get)
			})
		})
	})

	r.Handle("/metrics", d.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
