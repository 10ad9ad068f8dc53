package auth

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

// Logout godoc
// @Summary     Logout (revoke token)
// @Description Завершает сессию: помечает текущий токен отозванным до истечения exp.
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=domain.SuccessResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "auth.logout"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	claims, ok := domain.ClaimsFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if err := h.Blacklist.Revoke(r.Context(), claims.JTI, claims.ExpiresAt); err != nil {
		logx.Error(h.Log, reqID, op, "revoke failed", err, "jti", claims.JTI)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", claims.UserID, "jti", claims.JTI)
	v1.WriteOKData(w, r, domain.SuccessResponse{Success: true, Message: "Successfully logged out"})
}

// Me godoc
// @Summary     Current user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=domain.User}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := v1.CurrentUser(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, u)
}
