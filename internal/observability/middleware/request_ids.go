package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const (
	CtxKeyRequestID ctxKey = "request_id"
	CtxKeyTraceID   ctxKey = "trace_id"

	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	maxIDLength = 128
)

func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// incomingID accepts a caller supplied id unless it is empty or oversized.
func incomingID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxIDLength {
		return generateID()
	}
	return v
}

func WithRequestAndTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := incomingID(r.Header.Get(HeaderRequestID))
		traceID := incomingID(r.Header.Get(HeaderTraceID))

		ctx := context.WithValue(r.Context(), CtxKeyRequestID, reqID)
		ctx = context.WithValue(ctx, CtxKeyTraceID, traceID)
		r = r.WithContext(ctx)

		w.Header().Set(HeaderRequestID, reqID)
		w.Header().Set(HeaderTraceID, traceID)

		slog.Default().Debug("incoming request",
			"request_id", reqID,
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r)
	})
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyTraceID).(string); ok {
		return v
	}
	return ""
}

// LogAttrs returns the request correlation ids as slog key/value pairs.
func LogAttrs(ctx context.Context) []any {
	return []any{"request_id", RequestIDFromContext(ctx), "trace_id", TraceIDFromContext(ctx)}
}
