package middleware

import (
	"net/http"
	"strings"

	"defidojo/backend/internal/service"
	"defidojo/backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ContextKeyAddress is the gin context key holding the player address
const ContextKeyAddress = "player_address"

// Auth resolves the bearer session token to a player address
func Auth(playerService *service.PlayerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.AbortWithCustomError(c, http.StatusUnauthorized, util.ErrCodeUnauthorized, "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			util.AbortWithCustomError(c, http.StatusUnauthorized, util.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		address, err := playerService.ValidateSession(parts[1])
		if err != nil {
			util.AbortWithError(c, err)
			return
		}

		c.Set(ContextKeyAddress, address)
		c.Next()
	}
}

// PlayerAddress extracts the authenticated address from the context
func PlayerAddress(c *gin.Context) string {
	address, _ := c.Get(ContextKeyAddress)
	s, _ := address.(string)
	return s
}
