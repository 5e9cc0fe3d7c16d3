package http

import (
	"errors"
	"log/slog"
	"net/http"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/httpx"
	"worklog-auth/internal/observability/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrInvalidOrExpiredToken),
		errors.Is(err, domain.ErrInvalidMfaCode),
		errors.Is(err, domain.ErrMfaNotSetUp),
		errors.Is(err, domain.ErrMfaAlreadyEnabled),
		errors.Is(err, domain.ErrMfaAlreadyDisabled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error onto the HTTP taxonomy. Server side
// failures get a fixed message; the cause is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"trace_id", middleware.TraceIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		msg = domain.ErrInternal.Error()
		if errors.Is(err, domain.ErrDeliveryFailed) {
			msg = domain.ErrDeliveryFailed.Error()
		}
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer`)
	}
	httpx.WriteJSON(w, status, errorResponse{Error: msg})
}
