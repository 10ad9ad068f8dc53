package mw

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey    ctxKey = "req_id"
	RequestIDHeader        = "X-Request-ID"
)

// входящий id принимаем, только если он похож на разумный идентификатор
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,64}$`)

// WithRequestID берёт X-Request-ID из запроса или генерирует новый и кладёт его в контекст и ответ.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
