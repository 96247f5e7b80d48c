package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/dto"
	"github.com/haierkeys/jot-sync-service/pkg/logger"
	"github.com/haierkeys/jot-sync-service/pkg/storage"
	"github.com/haierkeys/jot-sync-service/pkg/workerpool"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// backupKeyLayout 快照文件名中的时间格式
const backupKeyLayout = "20060102T150405Z"

// BackupSnapshot 单个用户笔记库的备份内容，包含墓碑
type BackupSnapshot struct {
	UID       int64             `json:"uid"`
	CreatedAt int64             `json:"created_at"`
	Notes     []*dto.NoteRecord `json:"notes"`
}

// BackupService 将用户笔记库导出为 JSON 快照并上传到存储后端
type BackupService struct {
	stores    *StoreService
	pool      *workerpool.Pool
	storage   storage.Storager
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewBackupService 创建 BackupService，retention 为 0 时不清理旧快照
func NewBackupService(stores *StoreService, pool *workerpool.Pool, st storage.Storager, retention time.Duration, lg *zap.Logger) *BackupService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &BackupService{
		stores:    stores,
		pool:      pool,
		storage:   st,
		retention: retention,
		logger:    lg,
		now:       time.Now,
	}
}

// BackupAll 备份全部用户笔记库，上传在 worker pool 中并发执行
// 返回成功备份的数量，单个用户失败不影响其他用户
func (s *BackupService) BackupAll(ctx context.Context) (int, error) {
	uids, err := s.stores.Registry().UIDs()
	if err != nil {
		return 0, err
	}

	var done int64
	results := make([]error, len(uids))
	group := s.pool.NewGroup(ctx)
	for i, uid := range uids {
		group.Go(func(ctx context.Context) error {
			_, err := s.BackupUser(ctx, uid)
			results[i] = err
			return err
		})
	}
	err = group.Wait()

	for _, e := range results {
		if e == nil {
			done++
		}
	}
	s.logger.Info("backup finished",
		zap.Int(logger.FieldCount, len(uids)),
		zap.Int64("succeeded", done))
	return int(done), err
}

// BackupUser 备份单个用户，返回快照的对象键
func (s *BackupService) BackupUser(ctx context.Context, uid int64) (string, error) {
	notes, err := s.stores.Snapshot(ctx, uid)
	if err != nil {
		return "", err
	}
	records, err := dto.NewNoteRecords(notes)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	content, err := sonic.Marshal(&BackupSnapshot{
		UID:       uid,
		CreatedAt: now.UnixMilli(),
		Notes:     records,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal backup snapshot")
	}

	key := fmt.Sprintf("%d/%s.json", uid, now.Format(backupKeyLayout))
	if _, err := s.storage.SendContent(ctx, key, content, now); err != nil {
		s.logger.Error("backup upload failed",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldFileKey, key),
			zap.Error(err))
		return "", err
	}

	s.logger.Info("backup uploaded",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldFileKey, key),
		zap.Int(logger.FieldCount, len(records)))

	if _, err := s.Prune(ctx, uid); err != nil {
		s.logger.Warn("backup prune failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
	}
	return key, nil
}

// Prune 删除早于保留期的快照，返回删除数量
func (s *BackupService) Prune(ctx context.Context, uid int64) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	objects, err := s.storage.List(ctx, strconv.FormatInt(uid, 10))
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	for _, obj := range objects {
		if !obj.ModTime.Before(cutoff) {
			continue
		}
		if err := s.storage.Delete(ctx, obj.Key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
