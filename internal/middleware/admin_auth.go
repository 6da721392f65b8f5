package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminAuth validates bearer tokens and requires either the admin role claim
// or an email on the configured allow-list. The userId is injected so
// moderation handlers can attribute actions to the acting admin.
func AdminAuth(secret string, isAdminEmail func(string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerClaims(c.GetHeader("Authorization"), secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		role, _ := claims["role"].(string)
		email, _ := claims["email"].(string)

		allowed := role == "admin"
		if !allowed && isAdminEmail != nil && strings.TrimSpace(email) != "" {
			allowed = isAdminEmail(email)
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
			return
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			if adminID, err := primitive.ObjectIDFromHex(sub); err == nil {
				c.Set("userId", adminID)
			}
		}

		c.Set("claims", claims)
		c.Next()
	}
}
