package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/ai"
	"github.com/EgorLis/resume-builder/internal/auth/blacklist"
	"github.com/EgorLis/resume-builder/internal/auth/password"
	"github.com/EgorLis/resume-builder/internal/auth/token"
	"github.com/EgorLis/resume-builder/internal/cache"
	"github.com/EgorLis/resume-builder/internal/config"
	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/infra/cache/memory"
	redisx "github.com/EgorLis/resume-builder/internal/infra/cache/redis"
	"github.com/EgorLis/resume-builder/internal/infra/database/postgres"
	"github.com/EgorLis/resume-builder/internal/infra/llm"
	s3storage "github.com/EgorLis/resume-builder/internal/infra/storage/s3"
	"github.com/EgorLis/resume-builder/internal/metrics"
	"github.com/EgorLis/resume-builder/internal/ratelimit"
	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
)

// kv: общий контракт Redis и in-memory бэкенда.
type kv interface {
	cache.Backend
	blacklist.KV
	ratelimit.Counter
	ratelimit.FailureStore
}

var (
	_ kv = (*redisx.Client)(nil)
	_ kv = (*memory.Cache)(nil)
)

// loginThreshold: неудачных входов подряд до блокировки.
const loginThreshold = 5

type App struct {
	config *config.Config
	server *web.Server
	log    *zap.Logger
	store  *cache.Store
	repo   *postgres.PGRepo
}

func Build(ctx context.Context) (*App, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}

	base, err := logx.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed init logger: %w", err)
	}
	base = base.Named("app")
	base.Info("configuration loaded", zap.Stringer("config", cfg))

	m := metrics.NewCollector("resume_builder")

	base.Info("init cache backend")
	backend := newBackend(cfg, base)
	generic, user, aiTTL := cfg.CacheTTLs()
	store := cache.NewStore(backend, cache.TTLs{
		cache.Generic:    generic,
		cache.UserData:   user,
		cache.AIResponse: aiTTL,
		cache.Templates:  generic,
	}, base.Named("cache"), m)
	// недоступный кеш не валит старт: стор работает как «всегда промах»
	_ = store.Connect(ctx)

	var limiter mw.Limiter = ratelimit.NewSlidingWindow(time.Now)
	if cfg.RateLimitBackend == "redis" {
		limiter = ratelimit.NewFixedWindow(backend, base.Named("ratelimit"), time.Now)
	}
	throttle := ratelimit.NewAuthBackoff(backend, loginThreshold, base.Named("auth_backoff"))

	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)
	bl := blacklist.NewStore(backend)

	base.Info("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, base.Named("postgres"), cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		_ = store.Disconnect()
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Info("PostgreSQL is initialized")

	storage, err := newStorage(ctx, cfg, base)
	if err != nil {
		pgRepo.Close()
		_ = store.Disconnect()
		return nil, err
	}

	parser, writer := newCompleters(cfg, base, m)
	gateway := ai.NewGateway(parser, writer, store, base.Named("ai"))

	users := service.NewUsers(pgRepo, hasher, throttle, store, base.Named("users")).
		WithPasswordReset(tm, bl, nil)
	resumes := service.NewResumes(pgRepo, store, base.Named("resumes"))
	templates, err := service.NewTemplates(store, base.Named("templates"))
	if err != nil {
		pgRepo.Close()
		_ = store.Disconnect()
		return nil, fmt.Errorf("failed load templates: %w", err)
	}

	proxies, _ := cfg.Proxies() // проверено в config.validate

	base.Info("init Server")
	server := web.New(cfg.AppPort, web.Deps{
		Log:     base.Named("server"),
		Metrics: m,
		Limiter: limiter,
		Auth: mw.AuthDeps{
			Tokens:    tm,
			Blacklist: bl,
			Users:     users,
			Log:       base.Named("auth"),
		},
		CORSOrigins:    cfg.Origins(),
		TrustedProxies: proxies,
		Users:          users,
		Resumes:        resumes,
		AI:             gateway,
		Templates:      templates,
		Storage:        storage,
		DB:             pgRepo,
		Cache:          store,
	})

	base.Info("build ended")
	return &App{config: cfg, server: server, log: base, store: store, repo: pgRepo}, nil
}

func newBackend(cfg *config.Config, log *zap.Logger) kv {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR is empty, using in-memory cache")
		return memory.New(log.Named("memory"))
	}
	return redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, log.Named("redis"))
}

// newStorage возвращает nil-интерфейс, если S3_ENDPOINT не задан: загрузки идут без сохранения оригинала.
func newStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (domain.BlobStorage, error) {
	if cfg.S3Endpoint == "" {
		log.Warn("S3_ENDPOINT is empty, uploaded originals are not stored")
		return nil, nil
	}
	log.Info("init S3 storage")
	s3, err := s3storage.New(s3storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		PathStyle: cfg.S3PathStyle,
	}, log.Named("s3"))
	if err != nil {
		return nil, fmt.Errorf("failed init s3: %w", err)
	}
	if err := s3.EnsureBucket(ctx, cfg.S3Region); err != nil {
		return nil, fmt.Errorf("failed init s3 bucket: %w", err)
	}
	log.Info("S3 storage is initialized")
	return s3, nil
}

// newCompleters создаёт клиентов для провайдеров с ключом и раздаёт роли.
// Если провайдер роли не настроен, берётся любой доступный.
func newCompleters(cfg *config.Config, log *zap.Logger, m *metrics.Collector) (parser, writer ai.Completer) {
	providers := []llm.Config{
		{Name: "openai", APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		{Name: "groq", APIKey: cfg.GroqAPIKey, Model: cfg.GroqModel, BaseURL: or(cfg.GroqBaseURL, llm.GroqBaseURL)},
		{Name: "gemini", APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, BaseURL: or(cfg.GeminiBaseURL, llm.GeminiBaseURL)},
	}

	clients := make(map[string]ai.Completer)
	var first ai.Completer
	for _, p := range providers {
		if p.APIKey == "" {
			continue
		}
		p.Timeout = cfg.AITimeout
		c := llm.New(p, llm.DefaultBreakerConfig(), log.Named("llm"), m)
		clients[p.Name] = c
		if first == nil {
			first = c
		}
	}
	if first == nil {
		log.Warn("no AI provider configured, AI endpoints return defaults")
		return nil, nil
	}

	pick := func(role, name string) ai.Completer {
		if c, ok := clients[name]; ok {
			return c
		}
		log.Warn("AI provider not configured, falling back",
			zap.String("role", role), zap.String("wanted", name), zap.String("using", first.Name()))
		return first
	}
	return pick("parse", cfg.AIParseProvider), pick("write", cfg.AIWriteProvider)
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("start application...")

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Run() }()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if runErr != nil {
			a.log.Error("server stopped", zap.Error(runErr))
		}
	}
	a.log.Info("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	// бэкенд общий для кеша, лимитера, blacklist и backoff: закрывается один раз
	// после остановки сервера, независимо от того, поднялся ли он на старте
	if err := a.store.Disconnect(); err != nil {
		a.log.Warn("cache backend close failed", zap.Error(err))
	}
	a.repo.Close()
	_ = a.log.Sync()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
