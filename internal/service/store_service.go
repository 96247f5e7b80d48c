package service

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/pkg/writequeue"

	"gorm.io/gorm"
)

// StoreService 按用户路由到各自的笔记库
// 读操作直接获取连接，写操作经由写队列按用户串行执行
type StoreService struct {
	registry *dao.StoreRegistry
	queue    *writequeue.Manager
	opts     []dao.NoteRepositoryOption
}

// NewStoreService 创建 StoreService
func NewStoreService(registry *dao.StoreRegistry, queue *writequeue.Manager, opts ...dao.NoteRepositoryOption) *StoreService {
	return &StoreService{registry: registry, queue: queue, opts: opts}
}

// Registry 返回笔记库注册表
func (s *StoreService) Registry() *dao.StoreRegistry {
	return s.registry
}

func (s *StoreService) repo(db *gorm.DB) domain.NoteRepository {
	return dao.NewNoteRepository(db, s.opts...)
}

// View 以只读方式使用用户笔记库
func (s *StoreService) View(ctx context.Context, uid int64, fn func(*NoteService) error) error {
	return s.registry.WithStore(ctx, uid, func(db *gorm.DB) error {
		return fn(NewNoteService(s.repo(db)))
	})
}

// Update 在用户写队列中使用笔记库
func (s *StoreService) Update(ctx context.Context, uid int64, fn func(*NoteService) error) error {
	return s.queue.Execute(ctx, uid, func(ctx context.Context) error {
		return s.View(ctx, uid, fn)
	})
}

// Sync 在用户写队列中执行一轮同步
func (s *StoreService) Sync(ctx context.Context, uid int64, req *domain.SyncRequest) (*domain.SyncResult, error) {
	var result *domain.SyncResult
	err := s.queue.Execute(ctx, uid, func(ctx context.Context) error {
		return s.registry.WithStore(ctx, uid, func(db *gorm.DB) error {
			r, err := NewSyncService(s.repo(db)).Sync(ctx, req)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot 读取用户的全部笔记（含墓碑），用于备份
func (s *StoreService) Snapshot(ctx context.Context, uid int64) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := s.View(ctx, uid, func(svc *NoteService) error {
		all, err := svc.Search(ctx, &domain.SearchQuery{IncludeDeleted: true})
		if err != nil {
			return err
		}
		notes = all
		return nil
	})
	return notes, err
}
