package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"safewatch/internal/model"
)

const bearerPrefix = "Bearer "

// Claims represents the signed identity assertion issued at login.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the asserted role is admin.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

// IsResolver reports whether the asserted role is resolver.
func (c *Claims) IsResolver() bool {
	return c != nil && c.Role == model.RoleResolver
}

// JWTService issues and verifies signed identity assertions.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a new JWT service with the given secret. A ttl of
// zero issues tokens without an expiry claim.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue produces a signed token binding the user's id, username, and role.
func (s *JWTService) Issue(user *model.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// VerifyHeader verifies a raw Authorization header value. It accepts only
// the bearer scheme and returns nil for a missing header, a malformed
// scheme, an invalid signature, or a structurally invalid payload. It
// never returns an error to the caller.
func (s *JWTService) VerifyHeader(header string) *Claims {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil
	}
	claims, err := s.ValidateToken(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return nil
	}
	return claims
}

// Secret exposes the signing key for the route-level JWT middleware.
func (s *JWTService) Secret() []byte {
	return s.secret
}
