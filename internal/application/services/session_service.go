package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	config "github.com/thepotential/verification-service/configs"
	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/session"
	"github.com/thepotential/verification-service/internal/core/ports"
)

// SessionService mints HS256 JWT pairs. This is the native session-minting
// path used by the passwordless flows; no credential on the account is
// touched.
type SessionService struct {
	jwtConfig *config.JWTConfig
	logger    *logrus.Logger
}

func NewSessionService(jwtConfig *config.JWTConfig, logger *logrus.Logger) ports.SessionService {
	return &SessionService{jwtConfig: jwtConfig, logger: logger}
}

func (s *SessionService) Mint(ctx context.Context, a *account.Account) (*session.Session, error) {
	now := time.Now()

	claims := &session.Claims{
		UserID: a.ID,
		Email:  a.Email,
		Role:   a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   a.ID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.RefreshTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	refreshTokenString, err := refreshToken.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &session.Session{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.jwtConfig.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *SessionService) Validate(ctx context.Context, tokenString string) (*session.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &session.Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(*session.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
