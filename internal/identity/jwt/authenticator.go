// Package jwt implements identity.Authenticator with signed JWTs.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bissquit/fieldops/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config contains JWT configuration.
type Config struct {
	SecretKey           string
	Issuer              string
	AccessTokenDuration time.Duration
}

// Authenticator signs HS256 tokens whose subject is the user id.
type Authenticator struct {
	config Config
	now    func() time.Time
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(config Config) *Authenticator {
	if config.Issuer == "" {
		config.Issuer = "fieldops"
	}
	if config.AccessTokenDuration <= 0 {
		config.AccessTokenDuration = 12 * time.Hour
	}
	return &Authenticator{
		config: config,
		now:    time.Now,
	}
}

// GenerateToken issues a token for the user.
func (a *Authenticator) GenerateToken(_ context.Context, userID int64) (*identity.Token, error) {
	now := a.now()
	expiresAt := now.Add(a.config.AccessTokenDuration)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    a.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &identity.Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Truncate(time.Second),
	}, nil
}

// ParseToken verifies the token signature and standard claims.
func (a *Authenticator) ParseToken(_ context.Context, tokenString string) (*identity.Claims, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(_ *jwt.Token) (interface{}, error) {
			return []byte(a.config.SecretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, errors.New("token subject is not a user id")
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	return &identity.Claims{
		UserID:   userID,
		IssuedAt: issuedAt,
	}, nil
}
