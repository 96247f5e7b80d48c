// Package app 提供 HTTP 响应、表单校验与令牌工具
package app

import (
	"strings"

	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo build and schema information reported by /api/version
// VersionInfo /api/version 返回的构建与库结构信息
type VersionInfo struct {
	Version     string `json:"version"`
	GitTag      string `json:"gitTag"`
	BuildTime   string `json:"buildTime"`
	GoVersion   string `json:"goVersion"`
	StoreSchema int    `json:"storeSchema"` // Note store schema version // 笔记库结构版本
}

// Response writes the unified envelope for one request
// Response 为单个请求输出统一响应体
type Response struct {
	Ctx *gin.Context
}

// ListRes list payload carried in Res.Data
// ListRes 放在 Res.Data 中的列表数据
type ListRes struct {
	List  any `json:"list"`
	Total int `json:"total"`
}

// Res is the unified response structure: Code/Status/Msg/Data
// Res 是统一的响应结构：Code/Status/Msg/Data
type Res struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details any    `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{Ctx: ctx}
}

// GetRequestIP returns the client IP with loopback folded to 127.0.0.1
// GetRequestIP 获取客户端 IP，回环地址统一为 127.0.0.1
func GetRequestIP(c *gin.Context) string {
	switch ip := c.ClientIP(); ip {
	case "::1", "::ffff:127.0.0.1":
		return "127.0.0.1"
	default:
		return ip
	}
}

// ToResponse output to browser: unified use of Res
// ToResponse 输出到浏览器：统一使用 Res
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Msg(),
		Data:    codeObj.Data(),
	}

	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	r.send(codeObj.StatusCode(), content)
}

// ToResponseList outputs list response using ListRes as Data
// ToResponseList 输出列表响应，使用 ListRes 作为 Data
func (r *Response) ToResponseList(codeObj *code.Code, list any, totalRows int) {
	r.ToResponse(codeObj.WithData(ListRes{List: list, Total: totalRows}))
}

func (r *Response) send(statusCode int, content any) {
	r.Ctx.JSON(statusCode, content)
}
