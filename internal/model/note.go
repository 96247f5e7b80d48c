package model

// Note 笔记表
// 时间字段由仓储层写入毫秒时间戳，关闭 gorm 的自动时间
type Note struct {
	ID          string  `gorm:"column:id;primaryKey;type:text" json:"id"`
	Content     string  `gorm:"column:content;type:text;not null" json:"content"`
	Tags        string  `gorm:"column:tags;type:text;not null;default:'[]'" json:"tags"`
	SubjectDate *string `gorm:"column:subject_date;type:text" json:"subjectDate"`
	CreatedAt   int64   `gorm:"column:created_at;not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt   int64   `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updatedAt"`
	DeletedAt   *int64  `gorm:"column:deleted_at" json:"deletedAt"`
}

// TableName 返回表名
func (*Note) TableName() string {
	return "notes"
}
