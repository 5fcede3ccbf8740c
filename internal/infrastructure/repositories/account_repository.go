package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/ports"
	"github.com/thepotential/verification-service/internal/infrastructure/db"
)

// AccountRepository implements the account repository interface
type AccountRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(database *db.Database, logger *logrus.Logger) ports.AccountRepository {
	return &AccountRepository{
		db:     database,
		logger: logger,
	}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, display_name, role, is_active, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.DB.ExecContext(ctx, query,
		a.ID, a.Email, a.PasswordHash, a.DisplayName, a.Role, a.IsActive, a.EmailVerified)
	if err != nil {
		// two concurrent signups can both pass the pre-insert lookup; the
		// UNIQUE constraint on email is the authoritative check
		if isUniqueViolation(err) {
			return account.ErrEmailTaken
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": a.ID, "email": a.Email}).WithError(err).Error("db: failed to create account")
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": a.ID, "email": a.Email}).Info("db: account created")
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var a account.Account
	query := `
		SELECT id, email, password_hash, display_name, role, is_active, email_verified,
			   last_login_at, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id}).WithError(err).Error("db: failed to get account by ID")
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return &a, nil
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var a account.Account
	query := `
		SELECT id, email, password_hash, display_name, role, is_active, email_verified,
			   last_login_at, created_at, updated_at
		FROM accounts
		WHERE email = $1`

	err := r.db.DB.GetContext(ctx, &a, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Error("db: failed to get account by email")
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return &a, nil
}

// Update updates an existing account
func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET email = $2, password_hash = $3, display_name = $4, role = $5,
			is_active = $6, email_verified = $7, last_login_at = $8, updated_at = $9
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query,
		a.ID, a.Email, a.PasswordHash, a.DisplayName, a.Role,
		a.IsActive, a.EmailVerified, a.LastLoginAt, a.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": a.ID}).WithError(err).Error("db: failed to update account")
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return account.ErrNotFound
	}

	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

// Delete deletes an account by ID
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id}).WithError(err).Error("db: failed to delete account")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return account.ErrNotFound
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": id}).Info("db: account deleted")
	}
	return nil
}
