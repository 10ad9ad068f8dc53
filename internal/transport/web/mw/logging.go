package mw

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/metrics"
)

// metaWriter запоминает статус и размер ответа.
type metaWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (m *metaWriter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *metaWriter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.size += n
	return n, err
}

// Unwrap даёт http.ResponseController доступ к исходному writer (Flush при стриминге).
func (m *metaWriter) Unwrap() http.ResponseWriter { return m.ResponseWriter }

// Logging: middleware: финиш запроса, статус, размер, длительность + HTTP-метрики.
func Logging(l *zap.Logger, m *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			mw := &metaWriter{ResponseWriter: w}

			next.ServeHTTP(mw, r)

			if mw.status == 0 {
				mw.status = http.StatusOK
			}
			dur := time.Since(start)
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			m.HTTPRequest(r.Method, route, mw.status, dur)

			fields := []zap.Field{
				zap.String("req_id", RequestIDFromCtx(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", mw.status),
				zap.Int("size", mw.size),
				zap.Int64("duration_ms", dur.Milliseconds()),
			}
			switch {
			case mw.status >= 500:
				l.Error("request", fields...)
			case mw.status >= 400:
				l.Warn("request", fields...)
			default:
				l.Info("request", fields...)
			}
		})
	}
}
