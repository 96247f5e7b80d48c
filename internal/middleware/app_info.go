package middleware

import (
	"github.com/gin-gonic/gin"
)

// AppInfo exposes application name and version to handlers
// AppInfo 将应用名称与版本写入上下文，并在响应头中返回
func AppInfo(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Header("X-App-Version", version)

		c.Next()
	}
}
