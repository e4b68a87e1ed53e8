package utils

import (
	"strings"
	"time"

	"admission-api/core/config"
	"admission-api/core/constants"
	"admission-api/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClaims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

func tokenTTL(scope string) time.Duration {
	cfg, ok := config.GetSafe()
	switch scope {
	case constants.ScopeTokenRefresh:
		if ok && cfg.JWT.RefreshTTLMinutes > 0 {
			return time.Duration(cfg.JWT.RefreshTTLMinutes) * time.Minute
		}
		return 7 * 24 * time.Hour
	case constants.ScopeTokenResetPassword:
		return 15 * time.Minute
	default:
		if ok && cfg.JWT.AccessTTLMinutes > 0 {
			return time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
		}
		return time.Hour
	}
}

func jwtSecret() []byte {
	if cfg, ok := config.GetSafe(); ok && cfg.JWT.Secret != "" {
		return []byte(cfg.JWT.Secret)
	}
	return []byte("dev-secret-do-not-use")
}

func GenerateToken(userID uuid.UUID, email, role, scope string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL(scope))),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func ValidateAndParseToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "unexpected signing method", nil)
		}
		return jwtSecret(), nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "token expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid token", err)
	}
	if !token.Valid {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid token", nil)
	}
	return claims, nil
}

// GetTokenFromHeader extracts the bearer token from an Authorization header
// value. Empty string when absent or malformed.
func GetTokenFromHeader(header string) string {
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
