package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/config"
)

// GenerateAccessToken creates a signed HS256 access token for uid. The API accepts
// these tokens when JWT_SECRET is configured, next to any OIDC provider tokens.
func GenerateAccessToken(cfg *config.Config, uid, email string, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", errors.New("JWT secret is not configured")
	}
	if uid == "" {
		return "", errors.New("uid is required")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": uid,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}
