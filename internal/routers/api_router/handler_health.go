package api_router

import (
	"time"

	"github.com/haierkeys/jot-sync-service/internal/app"
	pkgapp "github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string  `json:"status"`     // "healthy" 或 "unhealthy"
	Version    string  `json:"version"`    // 服务版本号
	Uptime     float64 `json:"uptime"`     // 运行时间（秒）
	Database   string  `json:"database"`   // "connected" 或 "error"
	OpenStores int     `json:"openStores"` // 当前打开的用户笔记库数量
}

// Check 健康检查接口，包括共享认证库连接
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:     "healthy",
		Version:    h.App.Version().Version,
		Uptime:     time.Since(h.App.StartTime).Seconds(),
		Database:   "connected",
		OpenStores: h.App.Stores().OpenCount(),
	}

	if err := h.App.DB.WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
		response.Status = "unhealthy"
		response.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ServerError.WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(response))
}

// AuthCheck 校验 Token 是否有效，通过认证中间件后返回当前 UID
// @Router /api/health/auth [get]
func (h *HealthHandler) AuthCheck(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(gin.H{"uid": uid}))
}
