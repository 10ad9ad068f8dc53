package auth

import (
	"net/http"

	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/transport/web/logx"
	"github.com/EgorLis/resume-builder/internal/transport/web/mw"
	v1 "github.com/EgorLis/resume-builder/internal/transport/web/v1"
)

const resetRequestedMessage = "If the email exists in our system, you will receive a password reset link"

type resetRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type resetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// ResetPassword godoc
// @Summary     Request password reset
// @Description Выпускает одноразовый токен сброса на час. Ответ одинаков для известных и неизвестных email.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body resetRequest true "email"
// @Success     200 {object} domain.APIEnvelope{data=domain.SuccessResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	const op = "auth.reset_password"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req resetRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		logx.Warn(h.Log, reqID, op, "bad request", "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Users.RequestReset(r.Context(), req.Email); err != nil {
		logx.Error(h.Log, reqID, op, "reset request failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteOKData(w, r, domain.SuccessResponse{Success: true, Message: resetRequestedMessage})
}

// ConfirmReset godoc
// @Summary     Confirm password reset
// @Description Меняет пароль по токену из /reset-password. Токен одноразовый.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body resetConfirmRequest true "token, new_password"
// @Success     200 {object} domain.APIEnvelope{data=domain.SuccessResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     429 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/reset-password/confirm [post]
func (h *Handler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	const op = "auth.reset_password_confirm"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req resetConfirmRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		logx.Warn(h.Log, reqID, op, "bad request", "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Users.ConfirmReset(r.Context(), domain.Token(req.Token), req.NewPassword); err != nil {
		logx.Warn(h.Log, reqID, op, "reset confirm failed", "error", err.Error())
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteOKData(w, r, domain.SuccessResponse{Success: true, Message: "Password has been reset successfully"})
}
