package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/models"
	"github.com/mmdatafocus/tpq_backend/utils"
)

const bearerPrefix = "Bearer "

// AuthMiddleware rejects requests without a valid, unrevoked bearer token and
// puts the token's tenant identity in the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if len(auth) <= len(bearerPrefix) || !strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
			abortUnauthorized(c)
			return
		}
		token := strings.TrimSpace(auth[len(bearerPrefix):])

		claims, err := utils.ParseClaims(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		revoked, err := models.IsTokenRevoked(token)
		if err != nil {
			// redis outage should not lock every admin out
			config.LogWarning(config.GetLogger(), "middlewares", "AuthMiddleware", "check revoked token", err)
		}
		if revoked {
			abortUnauthorized(c)
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetAdminIdInContext(ctx, claims.AdminId)
		ctx = utils.SetAdminNameInContext(ctx, claims.AdminName)
		ctx = utils.SetUsernameInContext(ctx, claims.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
