package dao

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/model"
)

// Search 按条件检索笔记，updated_at 降序
// 标签条件在解码后按集合精确匹配，结果上限在标签过滤之后截断
func (r *noteRepository) Search(ctx context.Context, q *domain.SearchQuery) ([]*domain.Note, error) {
	if q == nil {
		q = &domain.SearchQuery{}
	}

	tx := r.db.WithContext(ctx).Model(&model.Note{})
	if !q.IncludeDeleted {
		tx = tx.Where("deleted_at IS NULL")
	}
	if q.Text != "" {
		// instr 区分大小写，LIKE 在 SQLite 中对 ASCII 不区分
		tx = tx.Where("instr(content, ?) > 0", q.Text)
	}
	if q.DateFrom != nil {
		tx = tx.Where("subject_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("subject_date <= ?", *q.DateTo)
	}
	tx = tx.Order("updated_at DESC").Order("id DESC")

	tags := domain.NormalizeTags(q.Tags)
	if len(tags) == 0 && q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []model.Note
	if err := tx.Find(&rows).Error; err != nil {
		return nil, domain.NewStorageError("note search", err)
	}

	notes, err := r.toDomainList(rows)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return notes, nil
	}

	out := make([]*domain.Note, 0, len(notes))
	for _, n := range notes {
		if !hasAllTags(n, tags) {
			continue
		}
		out = append(out, n)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func hasAllTags(n *domain.Note, tags []string) bool {
	set := make(map[string]struct{}, len(n.Tags))
	for _, t := range n.Tags {
		set[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
