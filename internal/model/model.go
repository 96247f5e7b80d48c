// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移共享认证库中的表
// 笔记库的表结构由 upgrade 包按版本迁移，不在此处处理
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "User":
		return db.AutoMigrate(User{})
	}
	return nil
}
