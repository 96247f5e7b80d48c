package model

import "time"

// User 用户表
type User struct {
	UID       int64     `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email     string    `gorm:"column:email;uniqueIndex:idx_user_email;size:255" json:"email"`
	Username  string    `gorm:"column:username;uniqueIndex:idx_user_username;size:255" json:"username"`
	Password  string    `gorm:"column:password;size:255" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName 返回表名
func (*User) TableName() string {
	return "user"
}
