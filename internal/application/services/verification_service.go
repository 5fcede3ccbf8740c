package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/thepotential/verification-service/configs"
	"github.com/thepotential/verification-service/internal/core/domain/token"
	"github.com/thepotential/verification-service/internal/core/ports"
)

// VerificationService implements issuance, redemption and sweep of
// verification tokens on top of a TokenStore.
type VerificationService struct {
	store       ports.TokenStore
	accountRepo ports.AccountRepository
	sessions    ports.SessionService
	ttl         *config.TokenConfig
	logger      *logrus.Logger
}

func NewVerificationService(store ports.TokenStore, accountRepo ports.AccountRepository, sessions ports.SessionService, ttl *config.TokenConfig, logger *logrus.Logger) ports.VerificationService {
	return &VerificationService{
		store:       store,
		accountRepo: accountRepo,
		sessions:    sessions,
		ttl:         ttl,
		logger:      logger,
	}
}

// generateToken returns a 256-bit random identifier, hex encoded.
func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// generateCode returns a 6-digit code uniform over 100000-999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *VerificationService) issueLink(ctx context.Context, purpose token.Purpose, userID, email string, ttl time.Duration) (string, error) {
	tok, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	rec := token.NewLinkRecord(purpose, userID, email, ttl)
	if err := s.store.Set(ctx, purpose.Key(tok), rec, ttl); err != nil {
		return "", fmt.Errorf("failed to store %s token: %w", purpose, err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"purpose": purpose, "user_id": userID}).Debug("token issued")
	}
	return tok, nil
}

// IssueEmailVerification creates a link token proving ownership of email.
// The store write is the only side effect; the caller sends the email.
func (s *VerificationService) IssueEmailVerification(ctx context.Context, userID, email string) (string, error) {
	return s.issueLink(ctx, token.PurposeEmailVerification, userID, email, s.ttl.VerificationTTL)
}

// IssueMagicLink creates a short-lived passwordless login link token.
func (s *VerificationService) IssueMagicLink(ctx context.Context, userID, email string) (string, error) {
	return s.issueLink(ctx, token.PurposeMagicLink, userID, email, s.ttl.MagicLinkTTL)
}

// IssueVerificationCode creates a 6-digit login code keyed by email. The
// code is short, so the record is looked up by the email the user submits
// back, not by the code itself. Re-issuing overwrites any outstanding code
// for the same address.
func (s *VerificationService) IssueVerificationCode(ctx context.Context, userID, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	rec := token.NewCodeRecord(userID, email, code, s.ttl.CodeTTL)
	if err := s.store.Set(ctx, token.PurposeVerificationCode.Key(email), rec, s.ttl.CodeTTL); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"purpose": token.PurposeVerificationCode, "user_id": userID}).Debug("code issued")
	}
	return code, nil
}
