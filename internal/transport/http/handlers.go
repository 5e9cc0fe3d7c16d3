package http

import (
	"context"
	"net/http"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
	"worklog-auth/internal/httpx"
	"worklog-auth/internal/service"
)

const (
	msgVerificationSent = "If the email is registered and not yet verified, a verification link has been sent."
	msgResetSent        = "If the email is registered, a password reset link has been sent."
)

type handler struct {
	svc    Services
	cookie CookieConfig
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.svc.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

func (h *handler) sendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Verification.RequestEmailVerification(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: msgVerificationSent})
}

// verifyEmail takes the token from the query string (the emailed link) or
// from a JSON body.
func (h *handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	req := dto.VerifyEmailRequest{Token: r.URL.Query().Get("token")}
	if req.Token == "" {
		if err := httpx.Decode(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := httpx.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Verification.ConfirmEmailVerification(r.Context(), req.Token); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Email verified successfully"})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.svc.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Verification.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: msgResetSent})
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Verification.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password has been reset"})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	tok := refreshCookie(r)
	if tok == "" {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	resp, err := h.svc.Sessions.Refresh(r.Context(), tok)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) sendEmailMfaCode(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	if err := h.svc.MFA.SendEmailCode(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Verification code sent"})
}

func (h *handler) setupAuthenticator(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	resp, err := h.svc.MFA.SetupAuthenticator(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) verifyAuthenticator(w http.ResponseWriter, r *http.Request) {
	var req dto.MfaCodeRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, _ := UserFromContext(r.Context())
	res, err := h.svc.MFA.VerifyAuthenticator(r.Context(), user, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setRefreshCookie(w, res.Session.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, dto.MfaVerifiedResponse{
		TokenResponse: res.Session.Access,
		RecoveryCodes: res.RecoveryCodes,
	})
}

func (h *handler) verifyEmailMfa(w http.ResponseWriter, r *http.Request) {
	h.completeWith(w, r, h.svc.MFA.VerifyEmailCode)
}

func (h *handler) verifyRecoveryCode(w http.ResponseWriter, r *http.Request) {
	h.completeWith(w, r, h.svc.MFA.VerifyRecoveryCode)
}

type secondFactor func(ctx context.Context, user *domain.User, code string) (*service.FullSession, error)

func (h *handler) completeWith(w http.ResponseWriter, r *http.Request, verify secondFactor) {
	var req dto.MfaCodeRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, _ := UserFromContext(r.Context())
	sess, err := verify(r.Context(), user, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setRefreshCookie(w, sess.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, sess.Access)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	tok := refreshCookie(r)
	if tok == "" {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	user, _ := UserFromContext(r.Context())
	if err := h.svc.Sessions.Logout(r.Context(), tok, user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	h.clearRefreshCookie(w)
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *handler) regenerateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	codes, err := h.svc.MFA.RegenerateRecoveryCodes(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.RecoveryCodesResponse{RecoveryCodes: codes})
}

func (h *handler) disableAuthenticator(w http.ResponseWriter, r *http.Request) {
	var req dto.MfaCodeRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, _ := UserFromContext(r.Context())
	if err := h.svc.MFA.Disable(r.Context(), user, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Authenticator MFA disabled"})
}

func (h *handler) jwks(w http.ResponseWriter, _ *http.Request) {
	keys := []map[string]any{}
	if h.svc.Signer != nil {
		if jwk := h.svc.Signer.PublicJWK(); jwk != nil {
			keys = append(keys, jwk)
		}
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteUserRequest
	if err := httpx.Bind(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	deleted, err := h.svc.Auth.DeleteAccount(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.DeleteUserResponse{Deleted: deleted})
}
