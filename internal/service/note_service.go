package service

import (
	"context"
	"strings"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/pkg/timex"

	"github.com/pkg/errors"
)

// NoteService 笔记业务，绑定到单个笔记库
type NoteService struct {
	repo domain.NoteRepository
}

// NewNoteService 创建 NoteService
func NewNoteService(repo domain.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

// validate 内容去空白后不能为空，日期必须为 YYYY-MM-DD
func validate(content string, date *string) error {
	if strings.TrimSpace(content) == "" {
		return errors.Wrap(domain.ErrInvalidNote, "content is empty")
	}
	if date != nil {
		if _, err := timex.ParseDate(*date); err != nil {
			return errors.Wrapf(domain.ErrInvalidNote, "date %q", *date)
		}
	}
	return nil
}

// Create 校验后创建笔记
func (s *NoteService) Create(ctx context.Context, content string, tags []string, date *string) (*domain.Note, error) {
	if err := validate(content, date); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, content, tags, date)
}

// Get 按完整 ID 获取
func (s *NoteService) Get(ctx context.Context, id string) (*domain.Note, error) {
	return s.repo.GetByID(ctx, id)
}

// Resolve 先按完整 ID 查找，未命中时按前缀在全部笔记（含墓碑）中匹配
// 无匹配返回 ErrNoteNotFound，多条匹配返回 ErrAmbiguousID
func (s *NoteService) Resolve(ctx context.Context, idOrPrefix string) (*domain.Note, error) {
	if idOrPrefix == "" {
		return nil, errors.Wrap(domain.ErrNoteNotFound, "empty id")
	}

	n, err := s.repo.GetByID(ctx, idOrPrefix)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, domain.ErrNoteNotFound) {
		return nil, err
	}

	all, err := s.repo.Search(ctx, &domain.SearchQuery{IncludeDeleted: true})
	if err != nil {
		return nil, err
	}
	var matches []*domain.Note
	for _, n := range all {
		if strings.HasPrefix(n.ID, idOrPrefix) {
			matches = append(matches, n)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.Wrapf(domain.ErrNoteNotFound, "id %s", idOrPrefix)
	case 1:
		return matches[0], nil
	}
	return nil, errors.Wrapf(domain.ErrAmbiguousID, "prefix %s matches %d notes", idOrPrefix, len(matches))
}

// Update 解析 ID 后更新，返回更新后的笔记
func (s *NoteService) Update(ctx context.Context, idOrPrefix, content string, tags []string, date *string) (*domain.Note, error) {
	if err := validate(content, date); err != nil {
		return nil, err
	}
	n, err := s.Resolve(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, n.ID, content, tags, date); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, n.ID)
}

// Delete 解析 ID 后软删除，返回墓碑
func (s *NoteService) Delete(ctx context.Context, idOrPrefix string) (*domain.Note, error) {
	n, err := s.Resolve(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SoftDelete(ctx, n.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, n.ID)
}

// Search 检索笔记
func (s *NoteService) Search(ctx context.Context, q *domain.SearchQuery) ([]*domain.Note, error) {
	return s.repo.Search(ctx, q)
}

// Last 返回满足条件的最近一条未删除笔记
func (s *NoteService) Last(ctx context.Context, q *domain.SearchQuery) (*domain.Note, error) {
	query := domain.SearchQuery{}
	if q != nil {
		query = *q
	}
	query.IncludeDeleted = false
	query.Limit = 1

	notes, err := s.repo.Search(ctx, &query)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, errors.Wrap(domain.ErrNoteNotFound, "no matching note")
	}
	return notes[0], nil
}

// Since 返回 updated_at 大于 ts 的全部笔记
func (s *NoteService) Since(ctx context.Context, ts int64) ([]*domain.Note, error) {
	return s.repo.Since(ctx, ts)
}
