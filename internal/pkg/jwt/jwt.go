package jwt

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ScopeLookup = "lookup"
	ScopeAdmin  = "admin"
)

// Claims identify an integrating client (an app build or merchant backend).
type Claims struct {
	ClientID uuid.UUID `json:"client_id"`
	Merchant string    `json:"merchant"`
	Scope    string    `json:"scope"`
	jwtv5.RegisteredClaims
}

type JWTService struct {
	secretKey   []byte
	expiryHours int
}

func NewJWTService(secretKey string, expiryHours int) *JWTService {
	return &JWTService{
		secretKey:   []byte(secretKey),
		expiryHours: expiryHours,
	}
}

// GenerateToken issues a client key
func (s *JWTService) GenerateToken(clientID uuid.UUID, merchant, scope string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Hour * time.Duration(s.expiryHours))

	claims := &Claims{
		ClientID: clientID,
		Merchant: merchant,
		Scope:    scope,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   clientID.String(),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates and parses a client key
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(token *jwtv5.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// Allows reports whether the token grants scope. Admin tokens grant everything.
func (c *Claims) Allows(scope string) bool {
	return c.Scope == scope || c.Scope == ScopeAdmin
}
