// Package auth handles caller identity and permissions: JWT access tokens,
// password hashing, GitHub OAuth, the middleware that resolves the caller
// for each request, and the authorization policy.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. The user registers (POST /api/user/register) or signs in with GitHub
//     (/auth/github/login, then /auth/github/callback).
//  2. Login issues a JWT access token and sets it as the HttpOnly "token"
//     cookie. The body carries the same token for non-browser clients,
//     which send it back as "Authorization: Bearer <token>".
//  3. On each request RequireAuth or OptionalAuth validates the token,
//     loads the user it names and puts the *model.User in the context.
//  4. Services call Authorize(caller, resource, action) to decide whether
//     that user may do what was asked.
//
// WHY JWT?
// The token is self-contained: the user id and expiry are inside it and the
// HMAC signature proves the server issued it. Validating needs only the
// secret. The user row is still loaded afterwards, so a deleted or banned
// account stops working even while its token is unexpired.
//
// JWT STRUCTURE (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"iss":"wisdom-share","sub":"42","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "wisdom-share"

	// DefaultTokenTTL is used when NewTokenService is given a zero TTL.
	DefaultTokenTTL = 24 * time.Hour
)

// TokenService handles JWT creation and validation.
//
// The same secret signs and verifies, so rotating it logs everybody out.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret must be at least 16 characters; in production use
// 32 random bytes, e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. "sub" holds the user id as a decimal string,
// which is what the JWT standard expects of the subject claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for userID valid for the service TTL.
func (s *TokenService) Generate(userID int64) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to get an already-expired token.
func (s *TokenService) GenerateWithDuration(userID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies tokenStr and returns the user ID in its
// subject. Only HS256 tokens from this issuer with an expiry are accepted.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token has no valid subject")
	}

	return userID, nil
}
