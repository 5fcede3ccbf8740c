package email

import (
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/configs"
	"github.com/thepotential/verification-service/internal/core/ports"
)

// ResendService implements EmailService via the Resend API
type ResendService struct {
	config    *configs.EmailConfig
	logger    *logrus.Logger
	client    *resend.Client
	templates map[string]*template.Template
}

// NewResendService creates a new Resend-backed email service
func NewResendService(config *configs.EmailConfig, logger *logrus.Logger) (ports.EmailService, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &ResendService{
		config:    config,
		logger:    logger,
		client:    resend.NewClient(config.ResendAPIKey),
		templates: templates,
	}, nil
}

func (e *ResendService) sendEmail(ctx context.Context, to, subject, htmlContent string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", e.config.FromName, e.config.FromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    htmlContent,
	}

	sent, err := e.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"error":   err,
		}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"send_id": sent.Id,
	}).Info("Email sent successfully")

	return nil
}

// SendVerificationEmail sends an email verification link
func (e *ResendService) SendVerificationEmail(ctx context.Context, email, token, displayName string) error {
	data := VerificationEmailData{
		CompanyName:     e.config.CompanyName,
		DisplayName:     displayName,
		VerificationURL: fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", e.config.BaseURL, token),
	}

	htmlContent, err := renderTemplate(e.templates, "verification", data)
	if err != nil {
		return fmt.Errorf("failed to render verification email template: %w", err)
	}

	subject := fmt.Sprintf("Verify Your Email Address - %s", e.config.CompanyName)

	return e.sendEmail(ctx, email, subject, htmlContent)
}

// SendMagicLinkEmail sends a passwordless login link
func (e *ResendService) SendMagicLinkEmail(ctx context.Context, email, token, displayName string) error {
	data := MagicLinkEmailData{
		CompanyName: e.config.CompanyName,
		DisplayName: displayName,
		LoginURL:    fmt.Sprintf("%s/api/v1/auth/verify-magic-link?token=%s", e.config.BaseURL, token),
	}

	htmlContent, err := renderTemplate(e.templates, "magic_link", data)
	if err != nil {
		return fmt.Errorf("failed to render magic link email template: %w", err)
	}

	subject := fmt.Sprintf("Your Login Link - %s", e.config.CompanyName)

	return e.sendEmail(ctx, email, subject, htmlContent)
}

// SendVerificationCodeEmail sends a 6-digit login code
func (e *ResendService) SendVerificationCodeEmail(ctx context.Context, email, code, displayName string) error {
	data := VerificationCodeEmailData{
		CompanyName: e.config.CompanyName,
		DisplayName: displayName,
		Code:        code,
	}

	htmlContent, err := renderTemplate(e.templates, "verification_code", data)
	if err != nil {
		return fmt.Errorf("failed to render verification code email template: %w", err)
	}

	subject := fmt.Sprintf("Your Login Code - %s", e.config.CompanyName)

	return e.sendEmail(ctx, email, subject, htmlContent)
}
