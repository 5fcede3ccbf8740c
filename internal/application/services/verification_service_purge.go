package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/domain/token"
)

// PurgeAll deletes every token whose key starts with prefix and returns how
// many were removed. Deletes are idempotent, so racing a concurrent consume
// is benign.
func (s *VerificationService) PurgeAll(ctx context.Context, prefix string) (int, error) {
	entries, err := s.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list tokens for purge: %w", err)
	}

	deleted := 0
	for _, e := range entries {
		if err := s.store.Del(ctx, e.Key); err != nil {
			return deleted, fmt.Errorf("failed to delete token %s: %w", e.Key, err)
		}
		deleted++
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"prefix": prefix, "deleted": deleted}).Info("tokens purged")
	}
	return deleted, nil
}

// PurgeUserTokens sweeps every purpose prefix and removes the entries owned
// by userID. Used when an account is deleted.
func (s *VerificationService) PurgeUserTokens(ctx context.Context, userID string) (int, error) {
	purposes := []token.Purpose{
		token.PurposeEmailVerification,
		token.PurposeMagicLink,
		token.PurposeVerificationCode,
	}

	deleted := 0
	for _, p := range purposes {
		entries, err := s.store.GetByPrefix(ctx, p.KeyPrefix())
		if err != nil {
			return deleted, fmt.Errorf("failed to list %s tokens: %w", p, err)
		}
		for _, e := range entries {
			if e.Record == nil || e.Record.UserID != userID {
				continue
			}
			if err := s.store.Del(ctx, e.Key); err != nil {
				return deleted, fmt.Errorf("failed to delete token %s: %w", e.Key, err)
			}
			deleted++
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "deleted": deleted}).Info("user tokens purged")
	}
	return deleted, nil
}
