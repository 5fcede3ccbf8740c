package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/domain/token"
	"github.com/thepotential/verification-service/internal/core/ports"
)

const (
	// tokenNamespace prefixes Redis keys for verification tokens.
	// It's a static prefix and not a credential; silence gosec G101 here.
	tokenNamespace = "potential:token" //nolint:gosec

	scanBatchSize = 200
)

// TokenRedisRepository implements ports.TokenStore on Redis. Expiry is
// delegated to Redis TTLs; GETDEL gives the atomic single-use claim.
type TokenRedisRepository struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewTokenRedisRepository(client *redis.Client, logger *logrus.Logger) *TokenRedisRepository {
	return &TokenRedisRepository{client: client, logger: logger}
}

var _ ports.TokenStore = (*TokenRedisRepository)(nil)

func (r *TokenRedisRepository) namespaced(key string) string {
	return fmt.Sprintf("%s:%s", tokenNamespace, key)
}

func (r *TokenRedisRepository) Set(ctx context.Context, key string, rec *token.Record, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token already expired")
	}

	b, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.namespaced(key), b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token in redis: %w", err)
	}
	return nil
}

func (r *TokenRedisRepository) Get(ctx context.Context, key string) (*token.Record, error) {
	b, err := r.client.Get(ctx, r.namespaced(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, token.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token from redis: %w", err)
	}
	return unmarshalRecord(b)
}

// GetDel uses GETDEL so that of two racing claims exactly one sees the
// record.
func (r *TokenRedisRepository) GetDel(ctx context.Context, key string) (*token.Record, error) {
	b, err := r.client.GetDel(ctx, r.namespaced(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, token.ErrNotFound
		}
		return nil, fmt.Errorf("failed to claim token in redis: %w", err)
	}
	return unmarshalRecord(b)
}

func (r *TokenRedisRepository) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.namespaced(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete token from redis: %w", err)
	}
	return nil
}

// GetByPrefix walks the namespace with SCAN (never KEYS) and fetches the
// matching values. Entries that vanish mid-scan are skipped.
func (r *TokenRedisRepository) GetByPrefix(ctx context.Context, prefix string) ([]token.Entry, error) {
	pattern := r.namespaced(escapeMatchPrefix(prefix)) + "*"
	nsLen := len(tokenNamespace) + 1

	var entries []token.Entry
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan tokens: %w", err)
		}

		for _, k := range keys {
			b, err := r.client.Get(ctx, k).Bytes()
			if err == redis.Nil {
				continue // expired or deleted between SCAN and GET
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get token %s: %w", k, err)
			}
			rec, err := unmarshalRecord(b)
			if err != nil {
				if r.logger != nil {
					r.logger.WithFields(logrus.Fields{"key": k}).WithError(err).Warn("skipping undecodable token record")
				}
				continue
			}
			entries = append(entries, token.Entry{Key: k[nsLen:], Record: rec})
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return entries, nil
}

// escapeMatchPrefix escapes glob metacharacters so emails embedded in keys
// cannot act as wildcards in the SCAN MATCH pattern. Mirrors the LIKE
// escaping in the database store.
func escapeMatchPrefix(prefix string) string {
	repl := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return repl.Replace(prefix)
}

func marshalRecord(rec *token.Record) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token record: %w", err)
	}
	return b, nil
}

func unmarshalRecord(b []byte) (*token.Record, error) {
	var rec token.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt token record: %w", err)
	}
	return &rec, nil
}
