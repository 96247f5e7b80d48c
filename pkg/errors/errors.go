// Package errors 统一的 API 错误结构
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// TraceIDKey gin.Context 中存储 Trace ID 的键，与 middleware 保持一致
const TraceIDKey = "trace_id"

// AppError 统一应用错误结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 与 Res 保持一致，错误时恒为 false
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus 返回对应的 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

func traceID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if v, ok := c.Get(TraceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// ErrorResponse 统一错误响应处理
// 将错误转换为 AppError 并写入 JSON 响应，未识别的错误按内部错误处理
func ErrorResponse(c *gin.Context, err error) {
	appErr := GetAppError(err)
	if appErr == nil {
		var codeErr *code.Code
		if errors.As(err, &codeErr) {
			appErr = NewAppError(codeErr, nil)
		} else {
			appErr = NewAppError(code.ServerError, err)
		}
	}
	c.JSON(appErr.HTTPStatus(), appErr.WithTraceID(traceID(c)))
}

// ErrorResponseWithCode 使用指定的 Code 对象返回错误响应
func ErrorResponseWithCode(c *gin.Context, codeErr *code.Code, cause error) {
	ErrorResponse(c, NewAppError(codeErr, cause))
}

// IsAppError 检查错误是否为 AppError 类型
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError 从错误链中获取 AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
