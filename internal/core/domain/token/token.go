package token

import (
	"fmt"
	"time"
)

// Purpose categorizes the privileged action a token authorizes. It doubles
// as the storage key prefix discriminant.
type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposeMagicLink         Purpose = "magic_link"
	PurposeVerificationCode  Purpose = "verification_code"
)

func (p Purpose) String() string {
	return string(p)
}

func (p Purpose) IsValid() bool {
	switch p {
	case PurposeEmailVerification, PurposeMagicLink, PurposeVerificationCode:
		return true
	default:
		return false
	}
}

// KeyPrefix returns the store key prefix for this purpose, e.g.
// "email_verification:". PurgeAll and key construction both use it so the
// two can never drift apart.
func (p Purpose) KeyPrefix() string {
	return string(p) + ":"
}

// Key builds the full store key for an identifier. Link-style purposes are
// keyed by the token itself; the numeric-code purpose is keyed by email,
// since the short code is looked up via the email the user submits back.
func (p Purpose) Key(identifier string) string {
	return p.KeyPrefix() + identifier
}

// Record is the persisted token payload. A single struct with a Purpose
// discriminant stands in for a per-purpose variant type: Code is set only
// for PurposeVerificationCode, and Validate enforces that shape.
type Record struct {
	Purpose   Purpose   `json:"purpose"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Entry pairs a store key with its record, as returned by prefix listings.
type Entry struct {
	Key    string
	Record *Record
}

// NewLinkRecord builds a record for a link-style purpose (email
// verification or magic link).
func NewLinkRecord(purpose Purpose, userID, email string, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		Purpose:   purpose,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// NewCodeRecord builds a record for the numeric-code purpose.
func NewCodeRecord(userID, email, code string, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		Purpose:   PurposeVerificationCode,
		UserID:    userID,
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the record is past its expiry.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Remaining returns the time left before expiry; non-positive means expired.
func (r *Record) Remaining() time.Duration {
	return time.Until(r.ExpiresAt)
}

// Validate checks the record's shape against its purpose discriminant.
func (r *Record) Validate() error {
	if !r.Purpose.IsValid() {
		return fmt.Errorf("unknown token purpose %q", r.Purpose)
	}
	if r.Email == "" {
		return fmt.Errorf("token record missing email")
	}
	if r.Purpose == PurposeVerificationCode {
		if len(r.Code) != 6 {
			return fmt.Errorf("verification code record must carry a 6-digit code")
		}
	} else if r.Code != "" {
		return fmt.Errorf("link token record must not carry a code")
	}
	if r.ExpiresAt.IsZero() {
		return fmt.Errorf("token record missing expiry")
	}
	return nil
}
