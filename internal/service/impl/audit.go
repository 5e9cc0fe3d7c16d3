package impl

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/observability/middleware"
	"worklog-auth/internal/store"
)

// recordAudit writes an audit row through tx so it commits or rolls back with
// the change it describes.
func recordAudit(ctx context.Context, tx *store.Store, userID domain.UserID, action string, event any) error {
	info := middleware.ClientInfoFromContext(ctx)
	uid := userID
	return tx.Audit().Record(ctx, &uid, action, event, info.IP, info.UserAgent)
}

func userIDString(id domain.UserID) string { return strconv.FormatUint(id, 10) }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// logAttrs prefixes the request correlation ids to args.
func logAttrs(ctx context.Context, args ...any) []any {
	return append(middleware.LogAttrs(ctx), args...)
}

// internalError logs err and hides it behind domain.ErrInternal unless it
// already is a domain error.
func internalError(ctx context.Context, msg string, err error) error {
	if isDomainError(err) {
		return err
	}
	slog.ErrorContext(ctx, msg, logAttrs(ctx, "err", err)...)
	return domain.ErrInternal
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidRequest,
		domain.ErrInvalidCredentials,
		domain.ErrEmailNotVerified,
		domain.ErrAlreadyExists,
		domain.ErrInvalidOrExpiredToken,
		domain.ErrInvalidMfaCode,
		domain.ErrUnauthorized,
		domain.ErrMfaNotSetUp,
		domain.ErrMfaAlreadyEnabled,
		domain.ErrMfaAlreadyDisabled,
		domain.ErrDeliveryFailed,
		domain.ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
