package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token validation errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Roles a marketplace token may carry
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// Claims is the marketplace JWT payload. PartyIDs carries every identifier
// scheme the platform knows the caller under, since the same legal seller can
// be stored under more than one ID.
type Claims struct {
	PartyIDs []string `json:"party_ids"`
	Role     string   `json:"role"`
	jwt.RegisteredClaims
}

// Identities returns the claim's party IDs as an identity set
func (c *Claims) Identities() shared.IdentitySet {
	ids := make([]shared.PartyID, 0, len(c.PartyIDs))
	for _, id := range c.PartyIDs {
		ids = append(ids, shared.PartyID(id))
	}
	return shared.NewIdentitySet(ids...)
}

// TokenService issues and validates marketplace access tokens
type TokenService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewTokenService creates a token service from configuration
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateToken issues a signed access token for the given identity aliases
func (s *TokenService) GenerateToken(partyIDs []string, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		PartyIDs: partyIDs,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an access token
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
