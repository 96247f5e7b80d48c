package code

import "net/http"

// 成功码
var (
	Success       = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessUpdate = NewSuss(3, lang{en: "Updated successfully", zh_cn: "更新成功"})
	SuccessDelete = NewSuss(4, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessSync   = NewSuss(5, lang{en: "Sync completed", zh_cn: "同步完成"})
)

// 通用错误码
var (
	ServerError               = NewError(500, lang{en: "Internal server error", zh_cn: "服务内部错误"}, http.StatusInternalServerError)
	ErrorInvalidParams        = NewError(400, lang{en: "Invalid parameters", zh_cn: "参数错误"}, http.StatusBadRequest)
	ErrorNotFoundAPI          = NewError(404, lang{en: "API not found", zh_cn: "接口不存在"}, http.StatusNotFound)
	ErrorTooManyRequests      = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"}, http.StatusTooManyRequests)
	ErrorRequestTimeout       = NewError(408, lang{en: "Request timeout", zh_cn: "请求超时"}, http.StatusRequestTimeout)
	ErrorDBQuery              = NewError(501, lang{en: "Database query failed", zh_cn: "数据库查询失败"}, http.StatusInternalServerError)
	ErrorNotUserAuthToken     = NewError(401, lang{en: "Missing auth token", zh_cn: "缺少授权令牌"}, http.StatusUnauthorized)
	ErrorInvalidUserAuthToken = NewError(402, lang{en: "Invalid or expired auth token", zh_cn: "授权令牌无效或已过期"}, http.StatusUnauthorized)
	ErrorTokenGenerate        = NewError(403, lang{en: "Failed to generate token", zh_cn: "生成令牌失败"}, http.StatusInternalServerError)
)

// 用户错误码
var (
	ErrorUserRegisterIsDisable   = NewError(1001, lang{en: "User registration is disabled", zh_cn: "用户注册已关闭"}, http.StatusForbidden)
	ErrorUserAlreadyExists       = NewError(1002, lang{en: "Username already exists", zh_cn: "用户名已存在"}, http.StatusConflict)
	ErrorUserEmailAlreadyExists  = NewError(1003, lang{en: "Email already exists", zh_cn: "邮箱已存在"}, http.StatusConflict)
	ErrorUserLoginPasswordFailed = NewError(1004, lang{en: "Incorrect username or password", zh_cn: "用户名或密码错误"}, http.StatusUnauthorized)
	ErrorUserUsernameNotValid    = NewError(1005, lang{en: "Username is not valid", zh_cn: "用户名格式不正确"}, http.StatusBadRequest)
	ErrorUserPasswordNotMatch    = NewError(1006, lang{en: "Passwords do not match", zh_cn: "两次密码不一致"}, http.StatusBadRequest)
	ErrorPasswordNotValid        = NewError(1007, lang{en: "Password is not valid", zh_cn: "密码不符合要求"}, http.StatusBadRequest)
	ErrorUserRegister            = NewError(1008, lang{en: "User registration failed", zh_cn: "用户注册失败"}, http.StatusInternalServerError)
	ErrorUserNotFound            = NewError(1009, lang{en: "User not found", zh_cn: "用户不存在"}, http.StatusNotFound)
)

// 笔记与同步错误码
var (
	ErrorNoteNotFound  = NewError(2001, lang{en: "Note not found", zh_cn: "笔记不存在"}, http.StatusNotFound)
	ErrorNoteAmbiguous = NewError(2002, lang{en: "Note id prefix matches more than one note", zh_cn: "笔记 ID 前缀匹配到多条笔记"}, http.StatusConflict)
	ErrorNoteInvalid   = NewError(2003, lang{en: "Note content or date is not valid", zh_cn: "笔记内容或日期不合法"}, http.StatusBadRequest)
	ErrorStoreCorrupt  = NewError(2004, lang{en: "Note store contains a corrupt record", zh_cn: "笔记库存在损坏的记录"}, http.StatusInternalServerError)
	ErrorStoreTooNew   = NewError(2005, lang{en: "Note store schema is newer than this server supports", zh_cn: "笔记库版本高于服务端支持的版本"}, http.StatusInternalServerError)
	ErrorSyncFailed    = NewError(2006, lang{en: "Sync failed", zh_cn: "同步失败"}, http.StatusInternalServerError)
	ErrorSyncBusy      = NewError(2007, lang{en: "Sync queue is busy, retry later", zh_cn: "同步队列繁忙，请稍后重试"}, http.StatusServiceUnavailable)
)
