package repository

import (
	"context"

	"neuroedge-api/internal/domain/entity"
)

// AgentRepository 经纪人仓储接口
type AgentRepository interface {
	// Create 创建经纪人
	Create(ctx context.Context, agent *entity.Agent) error

	// GetByID 根据 ID 获取经纪人
	GetByID(ctx context.Context, id string) (*entity.Agent, error)

	// GetByEmail 根据邮箱获取经纪人
	GetByEmail(ctx context.Context, email string) (*entity.Agent, error)

	// Update 更新经纪人
	Update(ctx context.Context, agent *entity.Agent) error

	// Delete 删除经纪人
	Delete(ctx context.Context, id string) error

	// List 列出全部经纪人
	List(ctx context.Context) ([]*entity.Agent, error)
}
