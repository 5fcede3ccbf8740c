package email

import (
	"context"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/configs"
	"github.com/thepotential/verification-service/internal/core/ports"
)

// SendGridService implements EmailService via the SendGrid API
type SendGridService struct {
	config    *configs.EmailConfig
	logger    *logrus.Logger
	client    *sendgrid.Client
	templates map[string]*template.Template
}

// NewSendGridService creates a new SendGrid-backed email service
func NewSendGridService(config *configs.EmailConfig, logger *logrus.Logger) (ports.EmailService, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &SendGridService{
		config:    config,
		logger:    logger,
		client:    sendgrid.NewSendClient(config.SendGridAPIKey),
		templates: templates,
	}, nil
}

// sendEmail sends an email using SendGrid
func (e *SendGridService) sendEmail(to, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail("", to)

	message := mail.NewSingleEmail(from, subject, recipient, "", htmlContent)

	response, err := e.client.Send(message)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"error":   err,
		}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"to":          to,
		"subject":     subject,
		"status_code": response.StatusCode,
	}).Info("Email sent successfully")

	return nil
}

// SendVerificationEmail sends an email verification link
func (e *SendGridService) SendVerificationEmail(ctx context.Context, email, token, displayName string) error {
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

	return e.sendEmail(email, subject, htmlContent)
}

// SendMagicLinkEmail sends a passwordless login link
func (e *SendGridService) SendMagicLinkEmail(ctx context.Context, email, token, displayName string) error {
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

	return e.sendEmail(email, subject, htmlContent)
}

// SendVerificationCodeEmail sends a 6-digit login code
func (e *SendGridService) SendVerificationCodeEmail(ctx context.Context, email, code, displayName string) error {
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

	return e.sendEmail(email, subject, htmlContent)
}
