package middleware

import (
	"net/http"
	"strings"

	"careshift_backend/internal/logger"
	"careshift_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextActorID   = "actor_id"
	ContextActorRole = "actor_role"
)

// ActorClaims is what the external auth service puts into the token. The core
// only needs an identity and a role tag; capability policy stays outside.
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware extracts the acting user from a Bearer token. Issuing tokens
// is not this service's job.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &ActorClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if claims.Subject == "" || !models.IsValidActorRole(claims.Role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set(ContextActorID, claims.Subject)
		c.Set(ContextActorRole, models.ActorRole(claims.Role))
		c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// RequireRoles gates a route group by actor role. Role policy belongs to this
// transport layer; the services below only check resource ownership.
func RequireRoles(roles ...models.ActorRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextActorRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		role := value.(models.ActorRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// ActorID returns the authenticated actor id set by AuthMiddleware.
func ActorID(c *gin.Context) string {
	return c.GetString(ContextActorID)
}
