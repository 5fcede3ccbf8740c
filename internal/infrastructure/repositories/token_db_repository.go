package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/domain/token"
	"github.com/thepotential/verification-service/internal/core/ports"
	"github.com/thepotential/verification-service/internal/infrastructure/db"
)

// TokenDBRepository implements ports.TokenStore on Postgres. The table is a
// plain key/payload pair with an expiry column; the text_pattern_ops index
// created by the migration keeps LIKE-prefix listings a range scan. Unlike
// Redis, rows do not vanish at expiry, so DeleteExpired exists for
// housekeeping; the verifier treats expired rows as absent either way.
type TokenDBRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewTokenDBRepository(database *db.Database, logger *logrus.Logger) *TokenDBRepository {
	return &TokenDBRepository{db: database, logger: logger}
}

var _ ports.TokenStore = (*TokenDBRepository)(nil)

func (r *TokenDBRepository) Set(ctx context.Context, key string, rec *token.Record, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token already expired")
	}

	query := `
		INSERT INTO verification_tokens (key, payload, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`

	payload, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	if _, err := r.db.DB.ExecContext(ctx, query, key, payload, rec.ExpiresAt); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (r *TokenDBRepository) Get(ctx context.Context, key string) (*token.Record, error) {
	var payload []byte
	query := `SELECT payload FROM verification_tokens WHERE key = $1`

	err := r.db.DB.GetContext(ctx, &payload, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, token.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return unmarshalRecord(payload)
}

// GetDel claims via DELETE .. RETURNING, the SQL equivalent of GETDEL: the
// row lock guarantees only one of two racing claims gets the payload back.
func (r *TokenDBRepository) GetDel(ctx context.Context, key string) (*token.Record, error) {
	var payload []byte
	query := `DELETE FROM verification_tokens WHERE key = $1 RETURNING payload`

	err := r.db.DB.GetContext(ctx, &payload, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, token.ErrNotFound
		}
		return nil, fmt.Errorf("failed to claim token: %w", err)
	}
	return unmarshalRecord(payload)
}

func (r *TokenDBRepository) Del(ctx context.Context, key string) error {
	query := `DELETE FROM verification_tokens WHERE key = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (r *TokenDBRepository) GetByPrefix(ctx context.Context, prefix string) ([]token.Entry, error) {
	type row struct {
		Key     string `db:"key"`
		Payload []byte `db:"payload"`
	}

	var rows []row
	query := `SELECT key, payload FROM verification_tokens WHERE key LIKE $1`

	err := r.db.DB.SelectContext(ctx, &rows, query, escapeLikePrefix(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens by prefix: %w", err)
	}

	entries := make([]token.Entry, 0, len(rows))
	for _, rw := range rows {
		rec, err := unmarshalRecord(rw.Payload)
		if err != nil {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"key": rw.Key}).WithError(err).Warn("skipping undecodable token record")
			}
			continue
		}
		entries = append(entries, token.Entry{Key: rw.Key, Record: rec})
	}
	return entries, nil
}

// DeleteExpired drops rows past their expiry. Run at startup; Redis does
// this implicitly via TTLs.
func (r *TokenDBRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.DB.ExecContext(ctx, `DELETE FROM verification_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// escapeLikePrefix escapes LIKE metacharacters so emails embedded in keys
// (which may contain underscores) cannot act as wildcards.
func escapeLikePrefix(prefix string) string {
	repl := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return repl.Replace(prefix)
}
