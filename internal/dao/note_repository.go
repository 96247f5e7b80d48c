// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Clock 返回当前毫秒时间戳
type Clock func() int64

// SystemClock 系统时钟
func SystemClock() int64 {
	return time.Now().UnixMilli()
}

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	db    *gorm.DB
	clock Clock
}

// NoteRepositoryOption NoteRepository 可选项
type NoteRepositoryOption func(*noteRepository)

// WithClock 替换时钟，测试中使用
func WithClock(c Clock) NoteRepositoryOption {
	return func(r *noteRepository) {
		r.clock = c
	}
}

// NewNoteRepository 创建绑定到指定笔记库的 NoteRepository
func NewNoteRepository(db *gorm.DB, opts ...NoteRepositoryOption) domain.NoteRepository {
	r := &noteRepository{db: db, clock: SystemClock}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) (*domain.Note, error) {
	tags, err := decodeTags(m.ID, m.Tags)
	if err != nil {
		return nil, err
	}
	return &domain.Note{
		ID:          m.ID,
		Content:     m.Content,
		Tags:        tags,
		SubjectDate: m.SubjectDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		DeletedAt:   m.DeletedAt,
	}, nil
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(n *domain.Note) (*model.Note, error) {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return nil, err
	}
	return &model.Note{
		ID:          n.ID,
		Content:     n.Content,
		Tags:        tags,
		SubjectDate: n.SubjectDate,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		DeletedAt:   n.DeletedAt,
	}, nil
}

func (r *noteRepository) toDomainList(rows []model.Note) ([]*domain.Note, error) {
	out := make([]*domain.Note, 0, len(rows))
	for i := range rows {
		n, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// mutationTime 变更时间不早于已有的 updated_at
func (r *noteRepository) mutationTime(prev int64) int64 {
	now := r.clock()
	if now < prev {
		return prev
	}
	return now
}

// find 按 ID 读取原始记录，不存在时返回 nil
func (r *noteRepository) find(ctx context.Context, db *gorm.DB, id string) (*model.Note, error) {
	var m model.Note
	err := db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("note read", err)
	}
	return &m, nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, content string, tags []string, date *string) (*domain.Note, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "generate note id")
	}
	now := r.clock()
	note := &domain.Note{
		ID:          id.String(),
		Content:     content,
		Tags:        domain.NormalizeTags(tags),
		SubjectDate: date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m, err := r.toModel(note)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, domain.NewStorageError("note create", err)
	}
	return note, nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	m, err := r.find(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.Wrapf(domain.ErrNoteNotFound, "id %s", id)
	}
	return r.toDomain(m)
}

// Update 更新笔记，ID 不存在时静默忽略
func (r *noteRepository) Update(ctx context.Context, id, content string, tags []string, date *string) error {
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.find(ctx, tx, id)
		if err != nil || m == nil {
			return err
		}
		err = tx.Model(&model.Note{}).Where("id = ?", id).Updates(map[string]any{
			"content":      content,
			"tags":         encoded,
			"subject_date": date,
			"updated_at":   r.mutationTime(m.UpdatedAt),
		}).Error
		return domain.NewStorageError("note update", err)
	})
}

// SoftDelete 标记删除，重复调用刷新删除时间，ID 不存在时静默忽略
func (r *noteRepository) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.find(ctx, tx, id)
		if err != nil || m == nil {
			return err
		}
		ts := r.mutationTime(m.UpdatedAt)
		err = tx.Model(&model.Note{}).Where("id = ?", id).Updates(map[string]any{
			"deleted_at": ts,
			"updated_at": ts,
		}).Error
		return domain.NewStorageError("note delete", err)
	})
}

// Since 获取 updated_at 严格大于 ts 的全部笔记（含墓碑）
func (r *noteRepository) Since(ctx context.Context, ts int64) ([]*domain.Note, error) {
	var rows []model.Note
	err := r.db.WithContext(ctx).
		Where("updated_at > ?", ts).
		Order("updated_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, domain.NewStorageError("note since", err)
	}
	return r.toDomainList(rows)
}

// Upsert 不存在则原样插入；存在时仅当传入的 updated_at 严格更大才覆盖
func (r *noteRepository) Upsert(ctx context.Context, note *domain.Note) (bool, error) {
	m, err := r.toModel(note)
	if err != nil {
		return false, err
	}

	written := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.find(ctx, tx, note.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			written = true
			return domain.NewStorageError("note upsert insert", tx.Create(m).Error)
		}
		if m.UpdatedAt <= existing.UpdatedAt {
			return nil
		}
		written = true
		err = tx.Model(&model.Note{}).Where("id = ?", note.ID).Updates(map[string]any{
			"content":      m.Content,
			"tags":         m.Tags,
			"subject_date": m.SubjectDate,
			"created_at":   m.CreatedAt,
			"updated_at":   m.UpdatedAt,
			"deleted_at":   m.DeletedAt,
		}).Error
		return domain.NewStorageError("note upsert update", err)
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

// Transaction 在单个事务内执行 fn
func (r *noteRepository) Transaction(ctx context.Context, fn func(repo domain.NoteRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&noteRepository{db: tx, clock: r.clock})
	})
}

var _ domain.NoteRepository = (*noteRepository)(nil)
