package middleware

import (
	"strings"

	"github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserAuthToken 用户 Token 认证中间件
// 按优先级获取 Token：Authorization 头 -> token 头 -> authorization/token 查询参数
func UserAuthToken(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := requestToken(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := tm.Parse(token)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Set(app.ContextUserKey, user)

		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		return strings.TrimSpace(strings.TrimPrefix(s, "Bearer "))
	}
	if s := c.GetHeader("Token"); s != "" {
		return s
	}
	if s, ok := c.GetQuery("authorization"); ok {
		return s
	}
	return c.Query("token")
}
