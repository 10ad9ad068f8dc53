package auth

import (
	"net/http"
	"time"

	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

type signupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// Signup godoc
// @Summary     Register new user
// @Description Регистрация по email и паролю; сразу возвращает токен.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body signupRequest true "email, password, first_name, last_name"
// @Success     201 {object} domain.APIEnvelope{data=tokenResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "auth.signup"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req signupRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		logx.Warn(h.Log, reqID, op, "bad request", "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}

	u, err := h.Users.Signup(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		logx.Error(h.Log, reqID, op, "signup failed", err)
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
	v1.WriteCreatedData(w, r, tokenResponse{
		AccessToken: string(token),
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.UTC().Format(time.RFC3339),
		User:        u,
	})
}
