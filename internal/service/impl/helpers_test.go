package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
	"worklog-auth/internal/security"
	"worklog-auth/internal/store"
	"worklog-auth/pkg/db"
)

type sentEmail struct {
	to      string
	payload string // link or code
}

type recordingEmailService struct {
	mu            sync.Mutex
	verifications []sentEmail
	resets        []sentEmail
	codes         []sentEmail
	err           error
}

func (r *recordingEmailService) SendVerification(ctx context.Context, to, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifications = append(r.verifications, sentEmail{to: to, payload: link})
	return r.err
}

func (r *recordingEmailService) SendPasswordReset(ctx context.Context, to, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, sentEmail{to: to, payload: link})
	return r.err
}

func (r *recordingEmailService) SendMfaCode(ctx context.Context, to, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, sentEmail{to: to, payload: code})
	return r.err
}

func (r *recordingEmailService) lastToken(t *testing.T, sent []sentEmail) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(sent) == 0 {
		t.Fatal("no email recorded")
	}
	u, err := url.Parse(sent[len(sent)-1].payload)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return u.Query().Get("token")
}

type testEnv struct {
	store        *store.Store
	email        *recordingEmailService
	passwords    *PasswordServiceImpl
	tokens       *SessionTokenServiceImpl
	sessions     *SessionServiceImpl
	verification *VerificationServiceImpl
	auth         *AuthServiceImpl
	mfa          *MFAServiceImpl
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenGorm(db.Config{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := newTestStore(t)

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	box, err := security.NewSecretBox(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("secret box: %v", err)
	}

	env := &testEnv{store: st, email: &recordingEmailService{}}
	env.passwords = NewPasswordServiceWithParams(testArgon2Params)
	env.tokens = NewSessionTokenService(newTestSigner(t))
	env.sessions = NewSessionService(SessionConfig{
		AccessTTL:    30 * time.Minute,
		TemporaryTTL: 5 * time.Minute,
		RefreshTTL:   7 * 24 * time.Hour,
	}, st, env.tokens)
	env.verification = NewVerificationService(VerificationConfig{
		AppURL:               "https://app.worklog.test",
		EmailVerificationTTL: 24 * time.Hour,
		PasswordResetTTL:     time.Hour,
	}, st, env.passwords, env.email)
	env.auth = NewAuthServiceImpl(st, env.passwords, env.sessions, env.verification)
	env.mfa = NewMFAService(MFAConfig{Issuer: "Worklog", EmailCodeTTL: 5 * time.Minute}, st, box, env.sessions, env.email)
	return env
}

// registerVerified creates a user whose email is already confirmed.
func (e *testEnv) registerVerified(t *testing.T, email, password string) *domain.User {
	t.Helper()
	ctx := context.Background()
	if _, err := e.auth.Register(ctx, dto.RegisterRequest{Email: email, Password: password}); err != nil {
		t.Fatalf("register: %v", err)
	}
	tok := e.email.lastToken(t, e.email.verifications)
	if err := e.verification.ConfirmEmailVerification(ctx, tok); err != nil {
		t.Fatalf("verify email: %v", err)
	}
	u, err := e.store.Users().GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	return u
}

func (e *testEnv) countRows(t *testing.T, model any, userID domain.UserID) int64 {
	t.Helper()
	var n int64
	if err := e.store.DB.Model(model).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
