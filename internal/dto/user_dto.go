package dto

import (
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/pkg/convert"
	"github.com/haierkeys/jot-sync-service/pkg/timex"
)

// UserCreateRequest User registration request parameters
// 用户注册请求参数
type UserCreateRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`               // User email // 用户邮件
	Username        string `json:"username" form:"username" binding:"required"`               // User name // 用户名
	Password        string `json:"password" form:"password" binding:"required"`               // User password // 用户密码
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required"` // Confirm password // 校验密码
}

// UserLoginRequest User login request parameters
// 用户登录请求参数
type UserLoginRequest struct {
	Credentials string `json:"credentials" form:"credentials" binding:"required"` // Username or Email // 登录凭证（用户名或邮件）
	Password    string `json:"password" form:"password" binding:"required"`       // Password // 密码
}

// UserDTO User data transfer object
// UserDTO 用户数据传输对象
type UserDTO struct {
	UID       int64      `json:"uid"`                  // User ID (primary key) // 用户唯一标识（主键）
	Email     string     `json:"email"`                // Email address // 邮件地址
	Username  string     `json:"username"`             // Username // 用户名
	Token     string     `json:"token"`                // Authentication Token // 认证 Token
	UpdatedAt timex.Time `json:"updatedAt" copier:"-"` // Last updated time // 最后更新时间
	CreatedAt timex.Time `json:"createdAt" copier:"-"` // Account created time // 账号创建时间
}

// NewUserDTO converts a domain user, the password hash is never copied
// NewUserDTO 领域模型转 DTO，不复制密码
func NewUserDTO(u *domain.User, token string) (*UserDTO, error) {
	out := &UserDTO{}
	if err := convert.StructAssign(u, out); err != nil {
		return nil, err
	}
	out.Token = token
	out.CreatedAt = timex.Time(u.CreatedAt)
	out.UpdatedAt = timex.Time(u.UpdatedAt)
	return out, nil
}
