package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "budget_planner"

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs the user identifier into an HS256 token for API clients.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer uses a random per-process secret when secret is empty,
// tokens then stop working after a restart.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	key := []byte(secret)
	if len(key) == 0 {
		random := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, random); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		key = []byte(hex.EncodeToString(random))
	}
	return &TokenIssuer{secret: key, ttl: ttl}, nil
}

func (ti *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and returns the user identifier it carries.
func (ti *TokenIssuer) Parse(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeAuth,
			Message: "Your session expired or is invalid, please login again.",
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeAuth,
			Message: "Your session expired or is invalid, please login again.",
		}
	}
	return claims.UserID, nil
}
