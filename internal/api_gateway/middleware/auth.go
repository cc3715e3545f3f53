package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jar-backoffice/internal/platform/auth"
)

const (
	OwnerIDKey = "owner_id"
	ActorIDKey = "actor_id"
	RoleKey    = "role"
)

// TokenVerifier resolves a bearer token into a principal
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// Auth requires a bearer token and places the tenant and actor into the context.
// Handlers read the owner only from here, never from the request body.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "missing or invalid Authorization header")
			return
		}

		principal, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(err)
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(OwnerIDKey, principal.OwnerID)
		if principal.StaffID > 0 {
			c.Set(ActorIDKey, principal.StaffID)
		}
		c.Set(RoleKey, principal.Role)
		c.Next()
	}
}

// OwnerID returns the authenticated tenant
func OwnerID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(OwnerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// ActorID returns the authenticated staff member, or nil for owner-level tokens
func ActorID(c *gin.Context) *int64 {
	v, ok := c.Get(ActorIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(int64)
	if !ok {
		return nil
	}
	return &id
}

func abortUnauthorized(c *gin.Context, message string) {
	response := gin.H{"error": gin.H{"code": "UNAUTHORIZED", "message": message}}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
