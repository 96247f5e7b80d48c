package client

import (
	"context"
	"strconv"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/dto"
	"github.com/haierkeys/jot-sync-service/pkg/convert"

	"github.com/pkg/errors"
)

// Remote 同步服务端
type Remote interface {
	Sync(ctx context.Context, req *dto.SyncRequest) (*dto.SyncResponse, error)
}

// SyncReport 一轮同步的统计
type SyncReport struct {
	Sent     int
	Received int
	Applied  int
	LastSync int64
}

// Syncer 执行客户端同步
type Syncer struct {
	local  *Local
	remote Remote
}

// NewSyncer 创建 Syncer
func NewSyncer(local *Local, remote Remote) *Syncer {
	return &Syncer{local: local, remote: remote}
}

// LastSync 读取本地水位线，未同步过时为 0
func (s *Syncer) LastSync(ctx context.Context) (int64, error) {
	v, ok, err := s.local.State.Get(ctx, domain.SyncStateKeyLastSync)
	if err != nil || !ok {
		return 0, err
	}
	last, err := convert.StrTo(v).Int64()
	if err != nil {
		return 0, errors.Wrapf(domain.ErrCorruptRecord, "sync state %q: %v", v, err)
	}
	return last, nil
}

// Run 执行一轮同步
// 发送水位线之后的本地变更，按最后写入胜出合并服务端返回的笔记，
// 最后将水位线推进到已发送与已接收笔记中最大的 updated_at
func (s *Syncer) Run(ctx context.Context) (*SyncReport, error) {
	last, err := s.LastSync(ctx)
	if err != nil {
		return nil, err
	}

	local, err := s.local.Repo.Since(ctx, last)
	if err != nil {
		return nil, err
	}
	records, err := dto.NewNoteRecords(local)
	if err != nil {
		return nil, err
	}

	resp, err := s.remote.Sync(ctx, &dto.SyncRequest{Notes: records, LastSync: last})
	if err != nil {
		return nil, err
	}
	incoming, err := dto.NoteRecordsToDomain(resp.Notes)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Sent: len(local), Received: len(incoming)}
	watermark := last
	for _, n := range local {
		watermark = max(watermark, n.UpdatedAt)
	}

	err = s.local.Repo.Transaction(ctx, func(repo domain.NoteRepository) error {
		for _, n := range incoming {
			written, err := repo.Upsert(ctx, n)
			if err != nil {
				return err
			}
			if written {
				report.Applied++
			}
			watermark = max(watermark, n.UpdatedAt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.local.State.Set(ctx, domain.SyncStateKeyLastSync, strconv.FormatInt(watermark, 10)); err != nil {
		return nil, err
	}
	report.LastSync = watermark
	return report, nil
}
