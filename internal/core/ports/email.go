package ports

import "context"

// EmailService defines the interface for transactional email dispatch
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, token, displayName string) error
	SendMagicLinkEmail(ctx context.Context, email, token, displayName string) error
	SendVerificationCodeEmail(ctx context.Context, email, code, displayName string) error
}
