package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"worklog-auth/internal/config"
	"worklog-auth/internal/jwtsigner"
	"worklog-auth/internal/observability/logging"
	"worklog-auth/internal/observability/metrics"
	"worklog-auth/internal/security"
	"worklog-auth/internal/service/impl"
	"worklog-auth/internal/store"
	transport "worklog-auth/internal/transport/http"
	"worklog-auth/pkg/db"
	"worklog-auth/pkg/mailer"
)

const serviceName = "auth"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	slog.Info("starting service", "env", cfg.Environment, "db_driver", cfg.DBDriver)

	gdb, err := db.OpenGorm(db.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.DBLogSQL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	st := store.New(gdb)
	if cfg.DBAutoMigrate {
		if err := st.AutoMigrate(context.Background()); err != nil {
			return err
		}
	}

	signer, err := jwtsigner.New(jwtsigner.Config{
		Algorithm:  cfg.JWTAlgorithm,
		Secret:     cfg.JWTSecret,
		PrivateKey: cfg.JWTPrivateKey,
		KeyID:      cfg.JWTKeyID,
		Issuer:     cfg.JWTIssuer,
	})
	if err != nil {
		return err
	}
	box, err := security.NewSecretBox(cfg.MfaEncryptionKey)
	if err != nil {
		return err
	}

	var sender mailer.Sender = mailer.LogSender{Logger: slog.Default()}
	if cfg.SMTPAddr != "" {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Addr:        cfg.SMTPAddr,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			ImplicitTLS: cfg.SMTPImplicitTLS,
		})
	} else {
		slog.Warn("SMTP_ADDR not set, emails will only be logged")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer, serviceName)

	email := impl.NewEmailService(impl.EmailConfig{
		AppName:              cfg.AppName,
		From:                 cfg.SMTPFrom,
		Timeout:              cfg.NotifyTimeout,
		EmailVerificationTTL: cfg.EmailVerificationTTL,
		PasswordResetTTL:     cfg.PasswordResetTTL,
		MfaCodeTTL:           cfg.EmailMfaTTL,
	}, sender)
	passwords := impl.NewPasswordServiceArgon2id()
	sessions := impl.NewSessionService(impl.SessionConfig{
		AccessTTL:    cfg.AccessTTL,
		TemporaryTTL: cfg.TempTTL,
		RefreshTTL:   cfg.RefreshTTL,
	}, st, impl.NewSessionTokenService(signer))
	verification := impl.NewVerificationService(impl.VerificationConfig{
		AppURL:               cfg.AppURL,
		EmailVerificationTTL: cfg.EmailVerificationTTL,
		PasswordResetTTL:     cfg.PasswordResetTTL,
	}, st, passwords, email)
	mfa := impl.NewMFAService(impl.MFAConfig{
		Issuer:       cfg.AppName,
		EmailCodeTTL: cfg.EmailMfaTTL,
	}, st, box, sessions, email)

	router := transport.NewRouter(transport.Services{
		Auth:         impl.NewAuthServiceImpl(st, passwords, sessions, verification),
		Verification: verification,
		Sessions:     sessions,
		MFA:          mfa,
		Signer:       signer,
	}, transport.Options{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequestTimeout:     cfg.RequestTimeout,
		TrustProxy:         cfg.TrustProxy,
		EnableTestRoutes:   cfg.EnableTestRoutes,
		Cookie: transport.CookieConfig{
			Secure:   cfg.CookieSecure,
			SameSite: cfg.CookieSameSite,
			MaxAge:   cfg.RefreshTTL,
		},
		Metrics: transport.MetricsHandler(),
	})
	if cfg.EnableTestRoutes {
		slog.Warn("testing routes enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("auth service listening", "addr", srv.Addr, "issuer", cfg.JWTIssuer, "alg", signer.Algorithm())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
