package client

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/service"

	"gorm.io/gorm"
)

// Local 设备本地的笔记库
type Local struct {
	db    *gorm.DB
	Repo  domain.NoteRepository
	State domain.SyncStateRepository
	Notes *service.NoteService
}

// OpenLocal 打开本地笔记库，不存在时创建并初始化 schema
func OpenLocal(ctx context.Context, path string, opts ...dao.NoteRepositoryOption) (*Local, error) {
	db, _, err := dao.OpenNoteStore(ctx, path)
	if err != nil {
		return nil, err
	}
	repo := dao.NewNoteRepository(db, opts...)
	return &Local{
		db:    db,
		Repo:  repo,
		State: dao.NewSyncStateRepository(db),
		Notes: service.NewNoteService(repo),
	}, nil
}

// Close 关闭本地笔记库
func (l *Local) Close() error {
	return dao.CloseNoteStore(l.db)
}
