package model

// SyncState 同步状态键值表
type SyncState struct {
	Key   string `gorm:"column:key;primaryKey;type:text" json:"key"`
	Value string `gorm:"column:value;type:text;not null" json:"value"`
}

// TableName 返回表名
func (*SyncState) TableName() string {
	return "sync_state"
}
