package domain

import "time"

// User 注册用户，UID 同时决定其笔记库文件名
type User struct {
	UID       int64
	Email     string
	Username  string
	Password  string // bcrypt 哈希
	CreatedAt time.Time
	UpdatedAt time.Time
}
