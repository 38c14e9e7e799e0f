// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"neuroedge-api/internal/domain/entity"
)

// UserRepository 后台用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	// UpdatePassword 更新密码散列
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// ExistsByUsername 检查用户名是否存在
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
