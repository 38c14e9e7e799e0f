package handler

import (
	"github.com/gin-gonic/gin"

	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
	"neuroedge-api/internal/infrastructure/persistence/redis"
	"neuroedge-api/internal/interfaces/http/dto"
	"neuroedge-api/pkg/logger"
)

// PropertyHandler 后台房源管理处理器
type PropertyHandler struct {
	properties repository.PropertyRepository
	agents     repository.AgentRepository
	cache      *redis.Cache
}

// NewPropertyHandler 创建房源管理处理器
func NewPropertyHandler(properties repository.PropertyRepository, agents repository.AgentRepository, cache *redis.Cache) *PropertyHandler {
	return &PropertyHandler{
		properties: properties,
		agents:     agents,
		cache:      cache,
	}
}

// invalidateListing 写操作后清除公开列表缓存
// 缓存失效失败只记日志，不影响写入结果
func (h *PropertyHandler) invalidateListing(c *gin.Context) {
	if err := h.cache.InvalidateListings(c.Request.Context()); err != nil {
		logger.Warn(c.Request.Context(), "failed to invalidate listing cache", "error", err.Error())
	}
}

// List 分页列出全部房源
// @Summary 房源列表
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.Response[[]dto.PropertyWithAgentDTO]
// @Router /v1/admin/properties [get]
func (h *PropertyHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}
	q.Normalize()

	result, err := h.properties.List(ctx, repository.NewPagination(q.Page, q.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list properties", err)
		dto.InternalError(c, "failed to list properties")
		return
	}

	dto.SuccessWithPage(c, dto.ToPropertyWithAgentDTOs(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// Get 获取单个房源
func (h *PropertyHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	property, err := h.properties.GetByID(ctx, c.Param("id"))
	if err != nil {
		logger.Error(ctx, "failed to get property", err)
		dto.InternalError(c, "failed to get property")
		return
	}
	if property == nil {
		dto.NotFound(c, "property not found")
		return
	}

	dto.Success(c, dto.ToPropertyWithAgentDTO(property))
}

// Create 创建房源
func (h *PropertyHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if req.AgentID != "" {
		agent, err := h.agents.GetByID(ctx, req.AgentID)
		if err != nil {
			logger.Error(ctx, "failed to check agent", err)
			dto.InternalError(c, "failed to create property")
			return
		}
		if agent == nil {
			dto.BadRequest(c, "agent not found: "+req.AgentID)
			return
		}
	}

	property := entity.NewProperty(req.Title, req.PropertyType, req.Location, req.AgentID, req.Price)
	property.Description = req.Description
	if req.Currency != "" {
		property.Currency = req.Currency
	}
	property.Bedrooms = req.Bedrooms
	property.Bathrooms = req.Bathrooms
	property.SizeSqft = req.SizeSqft
	if req.City != "" {
		property.City = req.City
	}
	property.Features = req.Features
	property.ListingURL = req.ListingURL
	property.Images = req.Images

	if err := h.properties.Create(ctx, property); err != nil {
		logger.Error(ctx, "failed to create property", err)
		dto.InternalError(c, "failed to create property")
		return
	}

	h.invalidateListing(c)
	dto.Created(c, dto.ToPropertyDTO(property))
}

// Update 更新房源
func (h *PropertyHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req dto.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	existing, err := h.properties.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get property", err)
		dto.InternalError(c, "failed to update property")
		return
	}
	if existing == nil {
		dto.NotFound(c, "property not found")
		return
	}

	property := existing.Property
	req.ApplyToProperty(&property)

	if err := h.properties.Update(ctx, &property); err != nil {
		logger.Error(ctx, "failed to update property", err)
		dto.InternalError(c, "failed to update property")
		return
	}

	h.invalidateListing(c)
	dto.Success(c, dto.ToPropertyDTO(&property))
}

// Archive 软删除，进入回收站
func (h *PropertyHandler) Archive(c *gin.Context) {
	h.updateStatus(c, entity.PropertyStatusArchived, "property archived")
}

// Restore 从回收站恢复
func (h *PropertyHandler) Restore(c *gin.Context) {
	h.updateStatus(c, entity.PropertyStatusAvailable, "property restored")
}

func (h *PropertyHandler) updateStatus(c *gin.Context, status entity.PropertyStatus, message string) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.properties.UpdateStatus(ctx, id, status); err != nil {
		if isNotFound(err) {
			dto.NotFound(c, "property not found")
			return
		}
		logger.Error(ctx, "failed to update property status", err)
		dto.InternalError(c, "failed to update property status")
		return
	}

	h.invalidateListing(c)
	dto.Success(c, gin.H{"id": id, "status": string(status), "message": message})
}

// ListTrash 列出回收站房源
func (h *PropertyHandler) ListTrash(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.properties.ListTrash(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list trash", err)
		dto.InternalError(c, "failed to list trash")
		return
	}

	dto.Success(c, dto.ToPropertyWithAgentDTOs(items))
}

// EmptyTrash 清空回收站
func (h *PropertyHandler) EmptyTrash(c *gin.Context) {
	ctx := c.Request.Context()

	deleted, err := h.properties.EmptyTrash(ctx)
	if err != nil {
		logger.Error(ctx, "failed to empty trash", err)
		dto.InternalError(c, "failed to empty trash")
		return
	}

	h.invalidateListing(c)
	dto.Success(c, gin.H{"deleted": deleted})
}

// Delete 物理删除房源，返回被删房源标题供前端提示
func (h *PropertyHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := h.properties.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get property", err)
		dto.InternalError(c, "failed to delete property")
		return
	}
	if existing == nil {
		dto.NotFound(c, "property not found")
		return
	}

	if err := h.properties.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			dto.NotFound(c, "property not found")
			return
		}
		logger.Error(ctx, "failed to delete property", err)
		dto.InternalError(c, "failed to delete property")
		return
	}

	h.invalidateListing(c)
	dto.Success(c, gin.H{"id": id, "title": existing.Title, "message": "property deleted"})
}
