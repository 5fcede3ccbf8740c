package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/session"
	"github.com/thepotential/verification-service/internal/core/domain/token"
)

// claim atomically removes the record for key and checks its expiry. At
// most one of two racing verifies observes the record, which is what
// enforces single-use. An expired record comes back as token.ErrExpired;
// the removal doubles as the opportunistic delete.
func (s *VerificationService) claim(ctx context.Context, key string) (*token.Record, error) {
	rec, err := s.store.GetDel(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.IsExpired() {
		return nil, token.ErrExpired
	}
	return rec, nil
}

// restore puts a claimed record back with its remaining TTL after a failed
// privileged action, so the user can retry without a fresh token. Best
// effort: a failure here only costs the retry, not correctness.
func (s *VerificationService) restore(ctx context.Context, key string, rec *token.Record) {
	ttl := rec.Remaining()
	if ttl <= 0 {
		return
	}
	if err := s.store.Set(ctx, key, rec, ttl); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"purpose": rec.Purpose, "user_id": rec.UserID}).WithError(err).Warn("failed to restore token after downstream failure")
	}
}

func (s *VerificationService) accountForRecord(ctx context.Context, rec *token.Record) (*account.Account, error) {
	id, err := uuid.Parse(rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("malformed user id in token record: %w", err)
	}
	return s.accountRepo.GetByID(ctx, id)
}

// VerifyEmail redeems an email_verification token and flips the owning
// account's email_verified flag.
func (s *VerificationService) VerifyEmail(ctx context.Context, tok string) (*account.Account, error) {
	key := token.PurposeEmailVerification.Key(tok)

	rec, err := s.claim(ctx, key)
	if err != nil {
		return nil, err
	}

	acct, err := s.accountForRecord(ctx, rec)
	if err != nil {
		s.restore(ctx, key, rec)
		return nil, fmt.Errorf("%w: %v", token.ErrDownstream, err)
	}

	acct.EmailVerified = true
	acct.UpdatedAt = time.Now()
	if err := s.accountRepo.Update(ctx, acct); err != nil {
		s.restore(ctx, key, rec)
		return nil, fmt.Errorf("%w: %v", token.ErrDownstream, err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": acct.ID, "email": acct.Email}).Info("email verified")
	}
	return acct, nil
}

// VerifyMagicLink redeems a magic_link token and mints a session for the
// owning account.
func (s *VerificationService) VerifyMagicLink(ctx context.Context, tok string) (*account.Account, *session.Session, error) {
	key := token.PurposeMagicLink.Key(tok)

	rec, err := s.claim(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	return s.finishLogin(ctx, key, rec)
}

// VerifyCode redeems a 6-digit login code. The record is fetched without
// consuming first: a wrong code must leave the token in place so the user
// can retry, and only a matching submission proceeds to the atomic claim.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) (*account.Account, *session.Session, error) {
	key := token.PurposeVerificationCode.Key(email)

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if rec.IsExpired() {
		// opportunistic delete; absence is not an error
		if delErr := s.store.Del(ctx, key); delErr != nil && s.logger != nil {
			s.logger.WithError(delErr).Warn("failed to delete expired verification code")
		}
		return nil, nil, token.ErrExpired
	}
	if rec.Code != code {
		return nil, nil, token.ErrCodeMismatch
	}

	claimed, err := s.claim(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if claimed.Code != code {
		// a concurrent re-issue swapped the code between Get and GetDel
		s.restore(ctx, key, claimed)
		return nil, nil, token.ErrCodeMismatch
	}

	return s.finishLogin(ctx, key, claimed)
}

// finishLogin performs the privileged action shared by the passwordless
// flows: load the account, mint a JWT session, stamp last_login_at. The
// claimed record is restored on downstream failure.
func (s *VerificationService) finishLogin(ctx context.Context, key string, rec *token.Record) (*account.Account, *session.Session, error) {
	acct, err := s.accountForRecord(ctx, rec)
	if err != nil {
		s.restore(ctx, key, rec)
		return nil, nil, fmt.Errorf("%w: %v", token.ErrDownstream, err)
	}
	if !acct.IsActive {
		s.restore(ctx, key, rec)
		return nil, nil, fmt.Errorf("%w: account is deactivated", token.ErrDownstream)
	}

	sess, err := s.sessions.Mint(ctx, acct)
	if err != nil {
		s.restore(ctx, key, rec)
		return nil, nil, fmt.Errorf("%w: %v", token.ErrDownstream, err)
	}

	now := time.Now()
	acct.LastLoginAt = &now
	acct.UpdatedAt = now
	if err := s.accountRepo.Update(ctx, acct); err != nil && s.logger != nil {
		// login already succeeded; losing the timestamp is acceptable
		s.logger.WithFields(logrus.Fields{"user_id": acct.ID}).WithError(err).Warn("failed to record last login")
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": acct.ID, "purpose": rec.Purpose}).Info("passwordless login")
	}
	return acct, sess, nil
}
