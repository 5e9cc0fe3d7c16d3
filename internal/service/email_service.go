package service

import "context"

type EmailService interface {
	SendVerification(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
	SendMfaCode(ctx context.Context, to, code string) error
}
