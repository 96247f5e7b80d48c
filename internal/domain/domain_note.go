// Package domain 定义领域模型和接口
package domain

// Note 笔记领域模型
// 时间字段均为毫秒级时间戳
type Note struct {
	ID          string
	Content     string
	Tags        []string
	SubjectDate *string // YYYY-MM-DD，nil 表示未指定日期
	CreatedAt   int64
	UpdatedAt   int64
	DeletedAt   *int64 // nil 表示未删除，非 nil 为墓碑
}

// IsDeleted 判断笔记是否为墓碑
func (n *Note) IsDeleted() bool {
	return n.DeletedAt != nil
}

// HasTag 判断笔记是否包含指定标签（精确匹配）
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NewerThan 判断 n 是否比 other 更新（严格大于）
func (n *Note) NewerThan(other *Note) bool {
	return n.UpdatedAt > other.UpdatedAt
}

// SearchQuery 笔记检索条件，各条件之间为 AND 关系
type SearchQuery struct {
	// Text 内容子串，区分大小写
	Text string
	// Tags 必须全部包含的标签
	Tags []string
	// DateFrom/DateTo 闭区间，按字符串比较
	DateFrom *string
	DateTo   *string
	// IncludeDeleted 是否包含墓碑
	IncludeDeleted bool
	// Limit 结果上限，0 表示不限制
	Limit int
}

// NormalizeTags 去重标签，保留首次出现的顺序
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
