package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// SimpleAuthTokenWithConfig static token check for the private admin listener, empty token disables it
// SimpleAuthTokenWithConfig 私有管理端口的静态 Token 认证，authToken 为空时放行
func SimpleAuthTokenWithConfig(authToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authToken == "" {
			c.Next()
			return
		}

		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("authorization")
		}
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))

		if subtle.ConstantTimeCompare([]byte(token), []byte(authToken)) != 1 {
			app.NewResponse(c).ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Next()
	}
}
