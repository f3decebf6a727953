package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
	ResetTokenTTL   = time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenTypeReset   = "reset"
)

// TokenManager issues and verifies the three JWT flavors: short-lived access
// tokens, long-lived refresh tokens, and single-use password-reset tokens
// signed with the secret concatenated with the user's current password hash so
// they stop verifying the moment the password changes.
type TokenManager struct {
	secret string
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: secret}
}

func (tm *TokenManager) GenerateAccessToken(userID uint) (string, error) {
	return tm.sign(userID, tokenTypeAccess, AccessTokenTTL, tm.secret)
}

func (tm *TokenManager) GenerateRefreshToken(userID uint) (string, error) {
	return tm.sign(userID, tokenTypeRefresh, RefreshTokenTTL, tm.secret)
}

func (tm *TokenManager) GenerateResetToken(userID uint, passwordHash string) (string, error) {
	return tm.sign(userID, tokenTypeReset, ResetTokenTTL, tm.secret+passwordHash)
}

func (tm *TokenManager) VerifyAccessToken(tokenString string) (uint, error) {
	return tm.verify(tokenString, tokenTypeAccess, tm.secret)
}

func (tm *TokenManager) VerifyRefreshToken(tokenString string) (uint, error) {
	return tm.verify(tokenString, tokenTypeRefresh, tm.secret)
}

// VerifyResetToken checks the token against the user's current password hash.
// A token issued before a password change fails here because the signing key
// included the old hash.
func (tm *TokenManager) VerifyResetToken(tokenString, passwordHash string) (uint, error) {
	return tm.verify(tokenString, tokenTypeReset, tm.secret+passwordHash)
}

func (tm *TokenManager) sign(userID uint, tokenType string, ttl time.Duration, key string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(key))
}

func (tm *TokenManager) verify(tokenString, tokenType, key string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(key), nil
	})

	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	if claimedType, _ := claims["type"].(string); claimedType != tokenType {
		return 0, fmt.Errorf("unexpected token type")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid user ID in token claims")
	}

	return uint(userIDFloat), nil
}
