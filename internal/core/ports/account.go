package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/thepotential/verification-service/internal/core/domain/account"
)

// AccountRepository handles account persistence.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByEmail(ctx context.Context, email string) (*account.Account, error)
	Update(ctx context.Context, a *account.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SignupResult is what the account service reports back after registration.
type SignupResult struct {
	Account               *account.Account `json:"user"`
	NeedEmailVerification bool             `json:"needEmailVerification"`
}

// AccountService defines signup, verification-email and passwordless
// login-request operations.
type AccountService interface {
	Signup(ctx context.Context, req *account.SignupRequest) (*SignupResult, error)
	ResendVerificationEmail(ctx context.Context, email string) error
	// RequestMagicLink issues and emails a login link and a 6-digit code.
	// It returns nil for unknown addresses so responses cannot be used to
	// enumerate accounts.
	RequestMagicLink(ctx context.Context, email string) error
	GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}
