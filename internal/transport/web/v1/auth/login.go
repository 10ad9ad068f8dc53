package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/EgorLis/resume-builder/internal/service"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// Login godoc
// @Summary     Authenticate user
// @Description Возвращает JWT при валидных email и пароле. После серии неудач вход временно блокируется.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body loginRequest true "email, password"
// @Success     200 {object} domain.APIEnvelope{data=tokenResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req loginRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		logx.Warn(h.Log, reqID, op, "bad request", "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}

	u, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		var throttled *service.ThrottledError
		if errors.As(err, &throttled) {
			w.Header().Set("Retry-After", strconv.Itoa(int(throttled.RetryAfter.Seconds())))
		}
		logx.Warn(h.Log, reqID, op, "authentication failed", "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}

	token, claims, err := h.Tokens.Issue(r.Context(), u.ID, u.Email)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue token failed", err, "user_id", u.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID)
	v1.WriteOKData(w, r, tokenResponse{
		AccessToken: string(token),
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.UTC().Format(time.RFC3339),
		User:        u,
	})
}
