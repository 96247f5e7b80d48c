// Package domain 定义领域模型和接口
package domain

import "context"

// NoteRepository 笔记仓储接口，绑定到单个笔记库句柄
type NoteRepository interface {
	// Create 创建笔记，分配 ID 与时间戳
	Create(ctx context.Context, content string, tags []string, date *string) (*Note, error)

	// GetByID 根据 ID 精确获取笔记，未找到返回 ErrNoteNotFound
	GetByID(ctx context.Context, id string) (*Note, error)

	// Update 更新笔记内容、标签与日期，ID 不存在时静默忽略
	Update(ctx context.Context, id, content string, tags []string, date *string) error

	// SoftDelete 标记删除，ID 不存在时静默忽略
	SoftDelete(ctx context.Context, id string) error

	// Since 获取 updated_at 严格大于 ts 的全部笔记（含墓碑），按 updated_at 升序
	Since(ctx context.Context, ts int64) ([]*Note, error)

	// Upsert 按最后写入胜出规则合并笔记，返回是否发生写入
	Upsert(ctx context.Context, note *Note) (bool, error)

	// Search 按条件检索笔记，按 updated_at 降序
	Search(ctx context.Context, q *SearchQuery) ([]*Note, error)

	// Transaction 在单个事务内执行 fn
	Transaction(ctx context.Context, fn func(repo NoteRepository) error) error
}

// SyncStateRepository 同步状态键值仓储接口
type SyncStateRepository interface {
	// Get 获取键值，不存在时 ok 为 false
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 写入或覆盖键值
	Set(ctx context.Context, key, value string) error
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据用户ID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// GetAllUIDs 获取所有用户的UID
	GetAllUIDs(ctx context.Context) ([]int64, error)
}
