// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"neuroedge-api/internal/domain/entity"
)

// PropertyRepository 房源仓储接口
type PropertyRepository interface {
	// Create 创建房源
	Create(ctx context.Context, property *entity.Property) error

	// GetByID 根据 ID 获取房源（含经纪人信息）
	GetByID(ctx context.Context, id string) (*entity.PropertyWithAgent, error)

	// Update 更新房源
	Update(ctx context.Context, property *entity.Property) error

	// UpdateStatus 更新房源状态
	UpdateStatus(ctx context.Context, id string, status entity.PropertyStatus) error

	// Delete 物理删除房源
	Delete(ctx context.Context, id string) error

	// List 分页列出全部房源（后台视图，含非可用状态）
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.PropertyWithAgent], error)

	// ListAvailable 按创建时间倒序列出可用房源
	ListAvailable(ctx context.Context, limit int) ([]*entity.PropertyWithAgent, error)

	// ListTrash 列出回收站房源
	ListTrash(ctx context.Context) ([]*entity.PropertyWithAgent, error)

	// EmptyTrash 清空回收站，返回删除条数
	EmptyTrash(ctx context.Context) (int64, error)

	// CountByAgent 统计归属某经纪人的房源数
	CountByAgent(ctx context.Context, agentID string) (int64, error)

	// FindCandidates 按整句或单词条件筛选可用房源候选集
	// 打分与排序由检索层完成
	FindCandidates(ctx context.Context, phrase string, terms []string) ([]*entity.PropertyWithAgent, error)
}
