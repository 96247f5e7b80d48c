// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/app"
	"github.com/haierkeys/jot-sync-service/internal/middleware"
	"github.com/haierkeys/jot-sync-service/internal/service"
	pkgapp "github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"
	apperrors "github.com/haierkeys/jot-sync-service/pkg/errors"
	"github.com/haierkeys/jot-sync-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录带 Trace ID 的错误日志
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
		zap.Error(err))
}

// fail 记录错误并按错误类型输出统一响应
func (h *Handler) fail(c *gin.Context, method string, err error) {
	h.logError(c.Request.Context(), method, err)
	apperrors.ErrorResponseWithCode(c, service.ErrorCode(err), err)
}

// bind 绑定并校验参数，失败时直接输出参数错误
func (h *Handler) bind(c *gin.Context, method string, params any) bool {
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn(method+".BindAndValid errs", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return false
	}
	return true
}

// uid 获取当前用户 ID，未认证时输出错误并返回 false
func (h *Handler) uid(c *gin.Context) (int64, bool) {
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		pkgapp.NewResponse(c).ToResponse(code.ErrorNotUserAuthToken)
		return 0, false
	}
	return uid, true
}
