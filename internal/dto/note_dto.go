// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/pkg/convert"

	"github.com/jinzhu/copier"
)

// NoteRecord wire form of a note, shared by the sync protocol and the note API
// NoteRecord 笔记的传输格式，同步协议与笔记接口共用
type NoteRecord struct {
	ID        string   `json:"id" binding:"required"`                // Note ID (UUIDv7) // 笔记 ID
	Content   string   `json:"content"`                              // Content // 内容
	Tags      []string `json:"tags"`                                 // Tags // 标签
	Date      *string  `json:"date" binding:"omitempty,date"`        // Subject date YYYY-MM-DD // 笔记日期
	CreatedAt int64    `json:"created_at" binding:"gte=0"`           // Created at, ms // 创建时间（毫秒）
	UpdatedAt int64    `json:"updated_at" binding:"gte=0"`           // Updated at, ms // 更新时间（毫秒）
	DeletedAt *int64   `json:"deleted_at" binding:"omitempty,gte=0"` // Deleted at, ms, null for active notes // 删除时间（毫秒）
}

var noteFieldMapping = copier.FieldNameMapping{
	SrcType: domain.Note{},
	DstType: NoteRecord{},
	Mapping: map[string]string{"SubjectDate": "Date"},
}

var recordFieldMapping = copier.FieldNameMapping{
	SrcType: NoteRecord{},
	DstType: domain.Note{},
	Mapping: map[string]string{"Date": "SubjectDate"},
}

// NewNoteRecord converts a domain note into its wire form
// NewNoteRecord 领域模型转传输格式
func NewNoteRecord(n *domain.Note) (*NoteRecord, error) {
	r := &NoteRecord{}
	if err := convert.StructAssign(n, r, noteFieldMapping); err != nil {
		return nil, err
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r, nil
}

// NewNoteRecords converts a list of domain notes
// NewNoteRecords 批量转换为传输格式
func NewNoteRecords(notes []*domain.Note) ([]*NoteRecord, error) {
	out := make([]*NoteRecord, 0, len(notes))
	for _, n := range notes {
		r, err := NewNoteRecord(n)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ToDomain converts the wire form back into a domain note, tags are deduplicated and an empty date becomes nil
// ToDomain 传输格式转领域模型，标签去重，空日期视为未设置
func (r *NoteRecord) ToDomain() (*domain.Note, error) {
	n := &domain.Note{}
	if err := convert.StructAssign(r, n, recordFieldMapping); err != nil {
		return nil, err
	}
	n.Tags = domain.NormalizeTags(n.Tags)
	// 空串日期等同于未设置
	if n.SubjectDate != nil && *n.SubjectDate == "" {
		n.SubjectDate = nil
	}
	return n, nil
}

// NoteRecordsToDomain converts a list of wire notes
// NoteRecordsToDomain 批量转换为领域模型
func NoteRecordsToDomain(records []*NoteRecord) ([]*domain.Note, error) {
	out := make([]*domain.Note, 0, len(records))
	for _, r := range records {
		n, err := r.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// NoteCreateRequest Request parameters for creating a note
// NoteCreateRequest 创建笔记请求参数
type NoteCreateRequest struct {
	Content string   `json:"content" form:"content" binding:"notblank"` // Content // 内容
	Tags    []string `json:"tags" form:"tag"`                           // Tags // 标签
	Date    *string  `json:"date" form:"date" binding:"omitempty,date"` // Subject date // 笔记日期
}

// NoteUpdateRequest Request parameters for updating a note
// NoteUpdateRequest 更新笔记请求参数，ID 可以是唯一前缀
type NoteUpdateRequest struct {
	ID      string   `json:"id" form:"id" binding:"required"`           // Note ID or prefix // 笔记 ID 或前缀
	Content string   `json:"content" form:"content" binding:"notblank"` // Content // 内容
	Tags    []string `json:"tags" form:"tag"`                           // Tags // 标签
	Date    *string  `json:"date" form:"date" binding:"omitempty,date"` // Subject date // 笔记日期
}

// NoteGetRequest Request parameters for reading or deleting a note
// NoteGetRequest 获取或删除笔记的请求参数，ID 可以是唯一前缀
type NoteGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"` // Note ID or prefix // 笔记 ID 或前缀
}

// NoteSearchRequest Request parameters for searching notes
// NoteSearchRequest 检索笔记请求参数
type NoteSearchRequest struct {
	Text           string   `json:"text" form:"text"`                                       // Content substring // 内容子串
	Tags           []string `json:"tags" form:"tag"`                                        // Required tags // 必须包含的标签
	Date           string   `json:"date" form:"date"`                                       // Date target such as today, last week // 日期表达式
	DateFrom       *string  `json:"dateFrom" form:"dateFrom" binding:"omitempty,date"`      // Inclusive lower bound // 日期下界
	DateTo         *string  `json:"dateTo" form:"dateTo" binding:"omitempty,date"`          // Inclusive upper bound // 日期上界
	IncludeDeleted bool     `json:"includeDeleted" form:"includeDeleted"`                   // Include tombstones // 包含已删除
	Limit          int      `json:"limit" form:"limit" binding:"omitempty,gte=0,lte=10000"` // Result limit // 结果上限
}
