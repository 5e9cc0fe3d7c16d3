package middleware

import (
	"context"
	"net/http"

	"worklog-auth/internal/netutil"
)

type ClientInfo struct {
	IP        string
	UserAgent string
}

const ctxKeyClient ctxKey = "client_info"

// WithClientInfo stores the caller's normalized IP and user agent so services
// can attach them to audit records.
func WithClientInfo(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := ClientInfo{
				IP:        netutil.ClientIP(r, trustProxy),
				UserAgent: netutil.TruncateUserAgent(r.UserAgent()),
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClientInfo(r.Context(), info)))
		})
	}
}

func ContextWithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, ctxKeyClient, info)
}

func ClientInfoFromContext(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(ctxKeyClient).(ClientInfo)
	return info
}
