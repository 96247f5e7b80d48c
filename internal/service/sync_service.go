package service

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/domain"

	"github.com/pkg/errors"
)

// SyncService 服务端同步引擎，绑定到单个笔记库
// 服务端不保存客户端水位，一轮同步完全由请求中的笔记与 last_sync 决定
type SyncService struct {
	repo domain.NoteRepository
}

// NewSyncService 创建 SyncService
func NewSyncService(repo domain.NoteRepository) *SyncService {
	return &SyncService{repo: repo}
}

// Sync 在单个事务内执行一轮同步
//  1. 逐条合并客户端笔记：服务端不存在或客户端更新则写入，服务端更新则回传服务端版本，相同则跳过
//  2. 追加 updated_at > last_sync 且未在第 1 步处理过的笔记
//
// 返回结果按 ID 去重：先是第 1 步的回传（按客户端顺序），再是第 2 步的笔记（updated_at 升序）
func (s *SyncService) Sync(ctx context.Context, req *domain.SyncRequest) (*domain.SyncResult, error) {
	if req == nil {
		req = &domain.SyncRequest{}
	}
	for i, n := range req.Notes {
		if n == nil || n.ID == "" {
			return nil, errors.Wrapf(domain.ErrInvalidNote, "client note %d has no id", i)
		}
	}

	var result *domain.SyncResult
	err := s.repo.Transaction(ctx, func(repo domain.NoteRepository) error {
		r, err := merge(ctx, repo, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func merge(ctx context.Context, repo domain.NoteRepository, req *domain.SyncRequest) (*domain.SyncResult, error) {
	res := &domain.SyncResult{Notes: make([]*domain.Note, 0)}
	handled := make(map[string]struct{}, len(req.Notes))
	queued := make(map[string]int)

	for _, cn := range req.Notes {
		handled[cn.ID] = struct{}{}

		existing, err := repo.GetByID(ctx, cn.ID)
		if err != nil && !errors.Is(err, domain.ErrNoteNotFound) {
			return nil, err
		}

		switch {
		case existing == nil || cn.NewerThan(existing):
			written, err := repo.Upsert(ctx, cn)
			if err != nil {
				return nil, err
			}
			if written {
				res.Accepted++
			}
			if i, ok := queued[cn.ID]; ok {
				// 同一批次中较新的副本覆盖了先前回传的版本
				res.Notes[i] = nil
				delete(queued, cn.ID)
			}
		case existing.NewerThan(cn):
			res.Rejected++
			if i, ok := queued[cn.ID]; ok {
				res.Notes[i] = existing
				continue
			}
			queued[cn.ID] = len(res.Notes)
			res.Notes = append(res.Notes, existing)
		}
	}
	res.Notes = compact(res.Notes)

	changes, err := repo.Since(ctx, req.LastSync)
	if err != nil {
		return nil, err
	}
	for _, n := range changes {
		if _, ok := handled[n.ID]; ok {
			continue
		}
		res.Notes = append(res.Notes, n)
	}
	return res, nil
}

func compact(notes []*domain.Note) []*domain.Note {
	out := notes[:0]
	for _, n := range notes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
