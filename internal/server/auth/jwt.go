// Package auth issues and parses the signed credentials handed out on
// login: HS256 JWTs carrying the account ID and role.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storerate/storerate/internal/common"
	"github.com/storerate/storerate/internal/server/models"
)

// Claims carries the standard claims plus the authenticated identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role"`
}

// GenerateToken signs a token for the given user valid for validityDuration.
func GenerateToken(userID string, role models.Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Role:   string(role),
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns the embedded identity.
// Expired tokens yield common.ErrTokenExpired, anything else invalid
// yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (userID string, role models.Role, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", common.ErrTokenExpired
		}
		return "", "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", "", common.ErrInvalidToken
	}

	parsedRole, err := models.ParseRole(claims.Role)
	if err != nil {
		return "", "", common.ErrInvalidToken
	}

	return claims.UserID, parsedRole, nil
}
