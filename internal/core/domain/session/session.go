package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thepotential/verification-service/internal/core/domain/account"
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID uuid.UUID    `json:"user_id"`
	Email  string       `json:"email"`
	Role   account.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the token pair handed to a client after a successful
// passwordless login.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
