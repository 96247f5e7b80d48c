// Package dao 实现数据访问层
package dao

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

// user 获取用户表连接，首次使用时自动迁移
func (r *userRepository) user(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnce("user#user", func(g *gorm.DB) {
		_ = model.AutoMigrate(g, "User")
	}).WithContext(ctx)
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:       m.UID,
		Email:     m.Email,
		Username:  m.Username,
		Password:  m.Password,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// toModel 将领域模型转换为数据库模型
func (r *userRepository) toModel(user *domain.User) *model.User {
	if user == nil {
		return nil
	}
	return &model.User{
		UID:      user.UID,
		Email:    user.Email,
		Username: user.Username,
		Password: user.Password,
	}
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m model.User
	err := r.user(ctx).Where(query, arg).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("user read", err)
	}
	return r.toDomain(&m), nil
}

// GetByUID 根据用户ID获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	return r.first(ctx, "uid = ?", uid)
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := r.toModel(user)
	if err := r.user(ctx).Create(m).Error; err != nil {
		return nil, domain.NewStorageError("user create", err)
	}
	return r.toDomain(m), nil
}

// GetAllUIDs 获取所有用户的UID
func (r *userRepository) GetAllUIDs(ctx context.Context) ([]int64, error) {
	var uids []int64
	if err := r.user(ctx).Model(&model.User{}).Order("uid ASC").Pluck("uid", &uids).Error; err != nil {
		return nil, domain.NewStorageError("user list", err)
	}
	return uids, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
