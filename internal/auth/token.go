package auth

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenService issues and validates HS256 tokens identifying pharmacists.
type TokenService struct {
	secret   []byte
	duration time.Duration
}

// NewTokenService creates a TokenService. Issued tokens are valid for 24 hours.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		duration: 24 * time.Hour,
	}
}

// Issue returns a signed token whose user_id claim is userID.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.duration).Unix(),
		"iat":     now.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and validates a token, returning its claims.
func (s *TokenService) Validate(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// UserID extracts the user_id claim.
func UserID(claims jwt.MapClaims) (string, bool) {
	id, ok := claims["user_id"].(string)
	return id, ok && id != ""
}
