package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/shared_models"
	"github.com/joy095/venue/utils"
	"github.com/joy095/venue/utils/jwt_parse"
)

// AuthMiddleware verifies the bearer token and stores the caller as a utils.Actor.
func AuthMiddleware() gin.HandlerFunc {
	parse := jwt_parse.ParseJWTToken()
	return func(c *gin.Context) {
		parse(c)
		if c.IsAborted() {
			logger.WarnLogger.Warnf("Authentication failed for %s %s", c.Request.Method, c.FullPath())
			return
		}
	}
}

// RequireRole lets the request through only for the listed roles. It must run after AuthMiddleware.
func RequireRole(roles ...shared_models.Role) gin.HandlerFunc {
	allowed := make(map[shared_models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, err := utils.GetActorFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Authentication required"})
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			logger.WarnLogger.Warnf("User %s with role %s denied access to %s", actor.UserID, actor.Role, c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}
