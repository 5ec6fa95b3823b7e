package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/utils"
	"github.com/huangang/framewise/backend/pkg/logger"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// Actor resolves who is making the request. A valid bearer token wins; a
// missing or unusable one falls back to the configured default user, since
// sign-in lives outside this service.
func Actor(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := cfg.DefaultUserID

		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				claims, err := utils.ParseToken(parts[1])
				if err == nil {
					userID = claims.UserID
					c.Set(ContextUsername, claims.Username)
					c.Set(ContextRole, claims.Role)
				} else {
					logger.Debugf("[Auth] ignoring bearer token: %v", err)
				}
			}
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}

func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}
