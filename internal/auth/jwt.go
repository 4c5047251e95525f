// Package auth provides authentication and authorization services for Portico.
// It validates JWT bearer tokens with role-based access control (RBAC);
// accounts and credentials are managed outside Portico, so the service only
// mints tokens for operators and agents and validates what clients present.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/portico-hosting/portico/internal/config"
	"github.com/portico-hosting/portico/models"
)

var (
	// ErrInvalidToken is returned when a JWT token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a JWT token has expired
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents JWT custom claims
type Claims struct {
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	Roles    []models.Role `json:"roles"`
	jwt.RegisteredClaims
}

// JWTService provides JWT authentication services
type JWTService struct {
	secret     []byte
	expiration time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg *config.Config) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Security.JWTSecret),
		expiration: cfg.Security.JWTExpiration,
	}
}

// GenerateAgentToken generates a JWT token for agent authentication
// This token is signed with the shared secret and carries the agent role.
func GenerateAgentToken(secret string, nodeID string, expiration time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}

	now := time.Now()
	expiresAt := now.Add(expiration)

	claims := Claims{
		UserID:   "agent:" + nodeID,
		Username: "agent-" + nodeID,
		Roles:    []models.Role{models.RoleAgent},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "portico-agent",
			Subject:   nodeID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateToken generates a new JWT access token for an externally managed
// identity.
func (s *JWTService) GenerateToken(userID, username string, roles []models.Role) (string, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		UserID:   userID,
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "portico",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
