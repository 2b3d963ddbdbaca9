package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/holosmedia/holos/internal/logger"
)

// TokenParser validates a session token and returns the machine identity
// it is bound to
type TokenParser interface {
	ParseToken(tokenString string) (string, error)
}

// machineIDKey is the gin context key carrying the authenticated machine ID
const machineIDKey = "machine_id"

// SessionAuth returns a Gin middleware that requires a Bearer session
// token issued after activation. Routes registered before this middleware
// stay open so the console can activate itself.
func SessionAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "A session token is required",
			})
			return
		}

		machineID, err := parser.ParseToken(token)
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("client_ip", c.ClientIP()).
				Msg("Session token rejected")

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Session token is invalid or expired",
			})
			return
		}

		c.Set(machineIDKey, machineID)
		c.Next()
	}
}

// MachineID returns the authenticated machine ID from the request context
func MachineID(c *gin.Context) string {
	if v, ok := c.Get(machineIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
