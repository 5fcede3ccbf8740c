package ports

import (
	"context"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/session"
)

// VerificationService covers the full token lifecycle: issuance, single-use
// redemption and the administrative sweep.
//
// Issue methods only write to the store; sending the email is the caller's
// concern so dispatch policy (fatal or not) stays at the call site.
type VerificationService interface {
	IssueEmailVerification(ctx context.Context, userID, email string) (string, error)
	IssueMagicLink(ctx context.Context, userID, email string) (string, error)
	IssueVerificationCode(ctx context.Context, userID, email string) (string, error)

	// VerifyEmail redeems an email_verification token and marks the owning
	// account's email as verified. Returns the verified account.
	VerifyEmail(ctx context.Context, tok string) (*account.Account, error)
	// VerifyMagicLink redeems a magic_link token and mints a session.
	VerifyMagicLink(ctx context.Context, tok string) (*account.Account, *session.Session, error)
	// VerifyCode redeems a verification_code token looked up by email. A
	// wrong code returns token.ErrCodeMismatch and retains the token.
	VerifyCode(ctx context.Context, email, code string) (*account.Account, *session.Session, error)

	// PurgeAll deletes every token under prefix and returns the count.
	PurgeAll(ctx context.Context, prefix string) (int, error)
	// PurgeUserTokens sweeps all purposes for one account, used when the
	// account itself is being removed.
	PurgeUserTokens(ctx context.Context, userID string) (int, error)
}
