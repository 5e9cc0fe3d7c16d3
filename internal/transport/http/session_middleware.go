package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/observability/middleware"
	"worklog-auth/internal/service"
)

type ctxKey string

const ctxKeyUser ctxKey = "session_user"

func contextWithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns the user attached by RequireFullSession or
// RequirePendingSession.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(*domain.User)
	return u, ok && u != nil
}

func bearerToken(r *http.Request) string {
	raw := r.Header.Get("Authorization")
	if len(raw) < len("bearer ") || !strings.EqualFold(raw[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[len("bearer "):])
}

func requireSession(sessions service.SessionService, full bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				writeError(w, r, domain.ErrUnauthorized)
				return
			}
			user, err := sessions.Authenticate(r.Context(), tok, full)
			if err != nil {
				slog.DebugContext(r.Context(), "session rejected",
					"request_id", middleware.RequestIDFromContext(r.Context()),
					"full", full,
				)
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), user)))
		})
	}
}

// RequireFullSession admits only tokens issued after a completed second factor.
func RequireFullSession(sessions service.SessionService) func(http.Handler) http.Handler {
	return requireSession(sessions, true)
}

// RequirePendingSession admits only the temporary token handed out by login.
func RequirePendingSession(sessions service.SessionService) func(http.Handler) http.Handler {
	return requireSession(sessions, false)
}
