package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
	"neuroedge-api/internal/interfaces/http/dto"
	"neuroedge-api/pkg/logger"
)

// AgentHandler 后台经纪人管理处理器
type AgentHandler struct {
	agents     repository.AgentRepository
	properties repository.PropertyRepository
	txManager  repository.Transactor
}

// NewAgentHandler 创建经纪人管理处理器
func NewAgentHandler(agents repository.AgentRepository, properties repository.PropertyRepository, txManager repository.Transactor) *AgentHandler {
	return &AgentHandler{
		agents:     agents,
		properties: properties,
		txManager:  txManager,
	}
}

// List 列出全部经纪人
// @Summary 经纪人列表
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.Response[[]dto.AgentDTO]
// @Router /v1/admin/agents [get]
func (h *AgentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	agents, err := h.agents.List(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list agents", err)
		dto.InternalError(c, "failed to list agents")
		return
	}

	dto.Success(c, dto.ToAgentDTOs(agents))
}

// Get 获取单个经纪人
func (h *AgentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	agent, err := h.agents.GetByID(ctx, c.Param("id"))
	if err != nil {
		logger.Error(ctx, "failed to get agent", err)
		dto.InternalError(c, "failed to get agent")
		return
	}
	if agent == nil {
		dto.NotFound(c, "agent not found")
		return
	}

	dto.Success(c, dto.ToAgentDTO(agent))
}

// Create 创建经纪人，邮箱唯一
func (h *AgentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	existing, err := h.agents.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.Error(ctx, "failed to check agent email", err)
		dto.InternalError(c, "failed to create agent")
		return
	}
	if existing != nil {
		dto.Conflict(c, "agent email already registered")
		return
	}

	agent := entity.NewAgent(req.Name, req.Email)
	agent.Phone = req.Phone
	agent.Specialty = req.Specialty
	agent.Bio = req.Bio

	if err := h.agents.Create(ctx, agent); err != nil {
		logger.Error(ctx, "failed to create agent", err)
		dto.InternalError(c, "failed to create agent")
		return
	}

	dto.Created(c, dto.ToAgentDTO(agent))
}

// Update 更新经纪人
func (h *AgentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req dto.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	agent, err := h.agents.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get agent", err)
		dto.InternalError(c, "failed to update agent")
		return
	}
	if agent == nil {
		dto.NotFound(c, "agent not found")
		return
	}

	if req.Email != agent.Email {
		other, err := h.agents.GetByEmail(ctx, req.Email)
		if err != nil {
			logger.Error(ctx, "failed to check agent email", err)
			dto.InternalError(c, "failed to update agent")
			return
		}
		if other != nil && other.ID != agent.ID {
			dto.Conflict(c, "agent email already registered")
			return
		}
	}

	agent.Name = req.Name
	agent.Email = req.Email
	agent.Phone = req.Phone
	agent.Specialty = req.Specialty
	agent.Bio = req.Bio

	if err := h.agents.Update(ctx, agent); err != nil {
		logger.Error(ctx, "failed to update agent", err)
		dto.InternalError(c, "failed to update agent")
		return
	}

	dto.Success(c, dto.ToAgentDTO(agent))
}

// Delete 删除经纪人
// 在事务内检查引用，有归属房源时拒绝删除
func (h *AgentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	agent, err := h.agents.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get agent", err)
		dto.InternalError(c, "failed to delete agent")
		return
	}
	if agent == nil {
		dto.NotFound(c, "agent not found")
		return
	}

	var assigned int64
	err = h.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		count, err := h.properties.CountByAgent(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			assigned = count
			return errAgentReferenced
		}
		return h.agents.Delete(txCtx, id)
	})
	if err != nil {
		if err == errAgentReferenced {
			dto.Conflict(c, fmt.Sprintf("Cannot delete agent. %d properties are assigned to this agent.", assigned))
			return
		}
		if isNotFound(err) {
			dto.NotFound(c, "agent not found")
			return
		}
		logger.Error(ctx, "failed to delete agent", err)
		dto.InternalError(c, "failed to delete agent")
		return
	}

	dto.Success(c, gin.H{"id": id, "name": agent.Name, "message": "agent deleted"})
}

// errAgentReferenced 触发事务回滚的哨兵错误
var errAgentReferenced = fmt.Errorf("agent has assigned properties")
