package dao

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// syncStateRepository 实现 domain.SyncStateRepository 接口
type syncStateRepository struct {
	db *gorm.DB
}

// NewSyncStateRepository 创建绑定到指定笔记库的 SyncStateRepository
func NewSyncStateRepository(db *gorm.DB) domain.SyncStateRepository {
	return &syncStateRepository{db: db}
}

// Get 获取键值
func (r *syncStateRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var m model.SyncState
	err := r.db.WithContext(ctx).Where("key = ?", key).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.NewStorageError("sync state get", err)
	}
	return m.Value, true, nil
}

// Set 写入或覆盖键值
func (r *syncStateRepository) Set(ctx context.Context, key, value string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&model.SyncState{Key: key, Value: value}).Error
	return domain.NewStorageError("sync state set", err)
}

var _ domain.SyncStateRepository = (*syncStateRepository)(nil)
