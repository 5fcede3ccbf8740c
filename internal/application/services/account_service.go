package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/ports"
)

type AccountService struct {
	repo         ports.AccountRepository
	verification ports.VerificationService
	emailService ports.EmailService
	logger       *logrus.Logger
}

func NewAccountService(repo ports.AccountRepository, verification ports.VerificationService, emailService ports.EmailService, logger *logrus.Logger) ports.AccountService {
	return &AccountService{
		repo:         repo,
		verification: verification,
		emailService: emailService,
		logger:       logger,
	}
}

// Signup registers an account and kicks off email verification. A failed
// dispatch does not fail the signup: the account stays usable through the
// resend endpoint.
func (s *AccountService) Signup(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, account.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := &account.Account{
		ID:            uuid.New(),
		Email:         req.Email,
		PasswordHash:  string(hashedPassword),
		DisplayName:   req.DisplayName,
		Role:          account.RoleMember,
		IsActive:      true,
		EmailVerified: false,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		// the UNIQUE constraint catches the race the lookup above cannot
		if errors.Is(err, account.ErrEmailTaken) {
			return nil, account.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.sendVerification(ctx, acct); err != nil {
		// Log but don't fail signup; the user can request a resend
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": acct.ID, "email": acct.Email}).WithError(err).Warn("failed to send verification email")
		}
	}

	return &ports.SignupResult{Account: acct, NeedEmailVerification: true}, nil
}

func (s *AccountService) sendVerification(ctx context.Context, acct *account.Account) error {
	tok, err := s.verification.IssueEmailVerification(ctx, acct.ID.String(), acct.Email)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}
	if err := s.emailService.SendVerificationEmail(ctx, acct.Email, tok, acct.DisplayName); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// ResendVerificationEmail re-issues a verification token for an
// unverified account. Unlike signup, a dispatch failure here is fatal.
func (s *AccountService) ResendVerificationEmail(ctx context.Context, email string) error {
	acct, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.ErrNotFound
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if acct.EmailVerified {
		return account.ErrAlreadyVerified
	}
	return s.sendVerification(ctx, acct)
}

// RequestMagicLink issues a login link and a 6-digit code for the account
// behind email and dispatches both. Unknown addresses return nil so the
// endpoint's response is identical either way.
func (s *AccountService) RequestMagicLink(ctx context.Context, email string) error {
	acct, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"email": email}).Debug("magic link requested for unknown address")
			}
			return nil
		}
		// a store outage is not "unknown address"; let the caller surface it
		return fmt.Errorf("failed to look up account: %w", err)
	}

	tok, err := s.verification.IssueMagicLink(ctx, acct.ID.String(), acct.Email)
	if err != nil {
		return fmt.Errorf("failed to issue magic link: %w", err)
	}
	code, err := s.verification.IssueVerificationCode(ctx, acct.ID.String(), acct.Email)
	if err != nil {
		return fmt.Errorf("failed to issue verification code: %w", err)
	}

	if err := s.emailService.SendMagicLinkEmail(ctx, acct.Email, tok, acct.DisplayName); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}
	if err := s.emailService.SendVerificationCodeEmail(ctx, acct.Email, code, acct.DisplayName); err != nil {
		return fmt.Errorf("failed to send verification code email: %w", err)
	}
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteAccount removes the account and sweeps its outstanding tokens so a
// stale link can never act on a recycled address.
func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.verification.PurgeUserTokens(ctx, id.String()); err != nil {
		// still delete the account; orphaned tokens fail on account lookup
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": id}).WithError(err).Warn("failed to purge tokens during account deletion")
		}
	}
	return s.repo.Delete(ctx, id)
}
