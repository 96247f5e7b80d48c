// Package code 定义接口返回码与多语言消息
package code

import (
	"fmt"
	"net/http"
)

// Code 接口返回码，同时实现 error 接口
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误消息
	Lang lang
	// HTTP 状态码，0 表示 200
	httpStatus int
	// 数据
	data any
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError 注册错误码，重复注册时 panic
func NewError(code int, l lang, httpStatus ...int) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()

	c := &Code{code: code, status: false, Lang: l}
	if len(httpStatus) > 0 {
		c.httpStatus = httpStatus[0]
	}
	return c
}

// NewSuss 注册成功码，重复注册时 panic
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本，不携带数据与详情
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		status:     e.status,
		Lang:       e.Lang,
		httpStatus: e.httpStatus,
	}
}

func (e *Code) Error() string {
	if e.haveDetails && len(e.details) > 0 {
		return fmt.Sprintf("%s: %v", e.Msg(), e.details)
	}
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() any {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// Is 按错误码比较，便于 errors.Is 判断克隆后的 Code
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	return ok && t.code == e.code && t.status == e.status
}

// WithData 返回携带数据的副本
func (e *Code) WithData(data any) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	if e.haveDetails {
		c.haveDetails = true
		c.details = e.details
	}
	return c
}

// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	if e.haveData {
		c.haveData = true
		c.data = e.data
	}
	return c
}

// StatusCode 返回对应的 HTTP 状态码
func (e *Code) StatusCode() int {
	if e.httpStatus != 0 {
		return e.httpStatus
	}
	return http.StatusOK
}
