package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"worklog-auth/internal/jwtsigner"
	"worklog-auth/internal/netutil"
	"worklog-auth/internal/observability/middleware"
	"worklog-auth/internal/service"
)

// Options carries the transport level settings of the router.
type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	TrustProxy         bool
	EnableTestRoutes   bool
	Cookie             CookieConfig
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// Services are the application services the handlers delegate to.
type Services struct {
	Auth         service.AuthService
	Verification service.VerificationService
	Sessions     service.SessionService
	MFA          service.MFAService
	Signer       *jwtsigner.Signer
}

func NewRouter(svc Services, opts Options) http.Handler {
	h := &handler{svc: svc, cookie: opts.Cookie}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithRequestAndTrace)
	r.Use(middleware.WithClientInfo(opts.TrustProxy))
	r.Use(middleware.WithMetrics)
	r.Use(chimw.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	r.Get("/.well-known/jwks.json", h.jwks)

	r.Route("/v1/auth", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			trustProxy := opts.TrustProxy
			r.Use(httprate.Limit(opts.RateLimitPerMinute, time.Minute,
				httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
					return netutil.ClientIP(r, trustProxy), nil
				}),
			))
		}

		r.Post("/register", h.register)
		r.Post("/send-verification", h.sendVerification)
		r.Post("/verify-email", h.verifyEmail)
		r.Post("/login", h.login)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/reset-password", h.resetPassword)
		r.Post("/refresh", h.refresh)

		r.Group(func(r chi.Router) {
			r.Use(RequirePendingSession(svc.Sessions))
			r.Post("/send-email-mfa-code", h.sendEmailMfaCode)
			r.Post("/setup-authenticator-mfa", h.setupAuthenticator)
			r.Post("/verify-authenticator-mfa", h.verifyAuthenticator)
			r.Post("/verify-email-mfa", h.verifyEmailMfa)
			r.Post("/verify-recovery-code", h.verifyRecoveryCode)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireFullSession(svc.Sessions))
			r.Get("/me", h.me)
			r.Post("/logout", h.logout)
			r.Post("/regenerate-recovery-codes", h.regenerateRecoveryCodes)
			r.Post("/disable-authenticator-mfa", h.disableAuthenticator)
		})
	})

	if opts.EnableTestRoutes {
		r.Post("/v1/testing/delete-user", h.deleteUser)
	}

	return r
}

// MetricsHandler exposes the default prometheus registry.
func MetricsHandler() http.Handler { return promhttp.Handler() }
