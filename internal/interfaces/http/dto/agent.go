// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"neuroedge-api/internal/domain/entity"
)

// CreateAgentRequest 创建经纪人请求
type CreateAgentRequest struct {
	Name      string `json:"name" binding:"required,max=128"`
	Email     string `json:"email" binding:"required,email,max=256"`
	Phone     string `json:"phone" binding:"omitempty,max=32"`
	Specialty string `json:"specialty" binding:"omitempty,max=128"`
	Bio       string `json:"bio" binding:"omitempty,max=4096"`
}

// UpdateAgentRequest 更新经纪人请求
type UpdateAgentRequest struct {
	Name      string `json:"name" binding:"required,max=128"`
	Email     string `json:"email" binding:"required,email,max=256"`
	Phone     string `json:"phone" binding:"omitempty,max=32"`
	Specialty string `json:"specialty" binding:"omitempty,max=128"`
	Bio       string `json:"bio" binding:"omitempty,max=4096"`
}

// AgentDTO 经纪人响应
type AgentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ToAgentDTO 将领域实体转换为 DTO
func ToAgentDTO(a *entity.Agent) *AgentDTO {
	if a == nil {
		return nil
	}
	return &AgentDTO{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Specialty: a.Specialty,
		Bio:       a.Bio,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

// ToAgentDTOs 批量转换
func ToAgentDTOs(items []*entity.Agent) []*AgentDTO {
	out := make([]*AgentDTO, 0, len(items))
	for _, a := range items {
		out = append(out, ToAgentDTO(a))
	}
	return out
}
