// Package upgrade 管理笔记库的 schema 版本与前向迁移
package upgrade

import (
	"context"
	"fmt"

	"github.com/haierkeys/jot-sync-service/internal/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Migration 定义单步升级接口
// 每个迁移只负责把 schema 从 From() 升级到 From()+1
type Migration interface {
	From() int
	Description() string
	Up(ctx context.Context, tx *gorm.DB) error
}

// migrations 按源版本索引的迁移表，必须从 0 开始连续
var migrations = []Migration{
	&InitialSchema{},
	&SubjectDateRename{},
}

// LatestVersion 当前程序支持的最高 schema 版本
var LatestVersion = len(migrations)

// Result 一次升级的结果
type Result struct {
	From int
	To   int
}

// Applied 本次是否执行了迁移
func (r Result) Applied() bool {
	return r.To > r.From
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrationManager 创建升级管理器
func NewMigrationManager(db *gorm.DB) *MigrationManager {
	return &MigrationManager{
		db:         db,
		migrations: migrations,
	}
}

// Latest 返回迁移链可达的最高版本
func (m *MigrationManager) Latest() int {
	return len(m.migrations)
}

// CurrentVersion 读取持久化的 schema 版本
func (m *MigrationManager) CurrentVersion(ctx context.Context) (int, error) {
	var v int
	if err := m.db.WithContext(ctx).Raw("PRAGMA user_version").Scan(&v).Error; err != nil {
		return 0, domain.NewStorageError("read schema version", err)
	}
	return v, nil
}

// Run 执行升级
// 版本高于已知最高版本时返回 ErrSchemaTooNew，不做任何修改
func (m *MigrationManager) Run(ctx context.Context) (Result, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{From: current, To: current}

	latest := m.Latest()
	if current > latest {
		return res, errors.Wrapf(domain.ErrSchemaTooNew, "store version %d, supported %d", current, latest)
	}

	for res.To < latest {
		migration := m.migrations[res.To]
		next := res.To + 1

		// 迁移与版本号写入在同一事务内完成
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return err
			}
			return tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", next)).Error
		})
		if err != nil {
			return res, domain.NewStorageError(fmt.Sprintf("migrate %d->%d (%s)", res.To, next, migration.Description()), err)
		}
		res.To = next
	}

	return res, nil
}
