package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/middleware"
)

// Revoker persists revoked bearer tokens.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthHandler serves token lifecycle endpoints for already-authenticated callers.
type AuthHandler struct {
	revoker    Revoker
	defaultTTL time.Duration
}

// NewAuthHandler returns a handler that revokes tokens through r. defaultTTL
// is used for tokens without an exp claim.
func NewAuthHandler(r Revoker, defaultTTL time.Duration) *AuthHandler {
	return &AuthHandler{revoker: r, defaultTTL: defaultTTL}
}

// Register routes under /auth. rg must run AuthMiddleware.
func (h *AuthHandler) Register(rg gin.IRouter) {
	rg.POST("/auth/revoke", h.Revoke)
}

// Revoke blacklists the caller's bearer token until it expires.
func (h *AuthHandler) Revoke(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	if token == "" {
		apperr.Respond(c, apperr.Unauthorized("unauthorized"))
		return
	}
	ttl := h.defaultTTL
	if claims, ok := c.Get(middleware.ClaimsKey); ok {
		if m, ok := claims.(map[string]interface{}); ok {
			if exp, err := expFromClaims(m); err == nil {
				ttl = time.Until(exp)
			}
		}
	}
	if err := h.revoker.Revoke(c.Request.Context(), token, ttl); err != nil {
		apperr.Respond(c, apperr.Internal(fmt.Errorf("revoke token: %w", err)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

// expFromClaims returns the `exp` claim as time.Time.
func expFromClaims(claims map[string]interface{}) (time.Time, error) {
	v, ok := claims["exp"]
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	// exp may be float64 (json number) or json.Number; handle common cases
	switch vv := v.(type) {
	case float64:
		return time.Unix(int64(vv), 0), nil
	case int64:
		return time.Unix(vv, 0), nil
	case json.Number:
		i64, err := vv.Int64()
		if err != nil {
			f, err2 := vv.Float64()
			if err2 != nil {
				return time.Time{}, err
			}
			return time.Unix(int64(f), 0), nil
		}
		return time.Unix(i64, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", v)
	}
}
