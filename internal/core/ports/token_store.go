package ports

import (
	"context"
	"time"

	"github.com/thepotential/verification-service/internal/core/domain/token"
)

// TokenStore is the key-value persistence contract for verification tokens.
// Implementations may use Redis or a relational table; callers must tolerate
// benign races (double-delete) since no transactional guarantees are given
// across calls.
type TokenStore interface {
	// Set upserts the record under key with the given TTL.
	Set(ctx context.Context, key string, rec *token.Record, ttl time.Duration) error
	// Get returns the record for key, or token.ErrNotFound.
	Get(ctx context.Context, key string) (*token.Record, error)
	// GetDel atomically removes and returns the record for key, or
	// token.ErrNotFound. This is the single-use claim step: at most one
	// concurrent caller observes the record.
	GetDel(ctx context.Context, key string) (*token.Record, error)
	// Del removes key. Absence is not an error.
	Del(ctx context.Context, key string) error
	// GetByPrefix lists all entries whose key starts with prefix. Order is
	// unspecified. Implementations must not degrade to a blocking full scan.
	GetByPrefix(ctx context.Context, prefix string) ([]token.Entry, error)
}
