package ports

import (
	"context"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/session"
)

// SessionService mints and validates JWT sessions. Passwordless flows mint
// directly; there is no temporary-credential indirection and the account's
// password is never touched by a login.
type SessionService interface {
	Mint(ctx context.Context, a *account.Account) (*session.Session, error)
	Validate(ctx context.Context, accessToken string) (*session.Claims, error)
}
