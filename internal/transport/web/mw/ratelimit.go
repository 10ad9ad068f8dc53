package mw

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/metrics"
)

// Limiter: ratelimit.SlidingWindow или ratelimit.FixedWindow.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

// RateLimitIP ограничивает запросы по ключу ip:{ip}:{path}. Ставится до авторизации.
func RateLimitIP(l Limiter, m *metrics.Collector, limit int, window time.Duration) func(http.Handler) http.Handler {
	return rateLimit(l, m, "ip", limit, window, func(r *http.Request) string {
		return "ip:" + ClientIP(r) + ":" + r.URL.Path
	})
}

// RateLimitUser ограничивает по user:{userID}:{path}; без пользователя в контексте: по IP.
func RateLimitUser(l Limiter, m *metrics.Collector, limit int, window time.Duration) func(http.Handler) http.Handler {
	return rateLimit(l, m, "user", limit, window, func(r *http.Request) string {
		id := ClientIP(r)
		if u, ok := domain.UserFromCtx(r.Context()); ok {
			id = u.ID.String()
		}
		return "user:" + id + ":" + r.URL.Path
	})
}

func rateLimit(l Limiter, m *metrics.Collector, scope string, limit int, window time.Duration, key func(*http.Request) string) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), key(r), limit, window) {
				m.Limited(scope)
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, domain.ErrCodeTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP: адрес клиента без порта (RemoteAddr переписывает только RealIP для доверенных прокси).
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeError: конверт ошибки для ответов из middleware (v1 импортирует mw, не наоборот).
func writeError(w http.ResponseWriter, status, code int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.Fail(code, text))
}
