package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"neuroedge-api/internal/application/search"
	"neuroedge-api/internal/config"
	"neuroedge-api/internal/domain/repository"
	"neuroedge-api/internal/infrastructure/persistence/redis"
	"neuroedge-api/internal/interfaces/http/dto"
	"neuroedge-api/pkg/logger"
)

// SearchHandler 公开检索处理器
type SearchHandler struct {
	engine       *search.Engine
	properties   repository.PropertyRepository
	cache        *redis.Cache
	cacheCfg     config.CacheConfig
	listingLimit int
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(engine *search.Engine, properties repository.PropertyRepository, cache *redis.Cache, cacheCfg config.CacheConfig) *SearchHandler {
	return &SearchHandler{
		engine:       engine,
		properties:   properties,
		cache:        cache,
		cacheCfg:     cacheCfg,
		listingLimit: 100,
	}
}

// Search 房源检索
// @Summary 房源检索
// @Description 按加权子串匹配对可用房源打分排序
// @Tags Search
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索条件"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Router /api/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	results, err := h.engine.Query(ctx, req.Query, req.MaxResults)
	if err != nil {
		logger.Error(ctx, "property search failed", err)
		respondError(c, err)
		return
	}

	dto.Success(c, dto.ToSearchResponse(req.Query, results))
}

// ListProperties 公开房源列表
// 短 TTL 缓存加 singleflight，防止列表页击穿数据库
func (h *SearchHandler) ListProperties(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.listingLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= h.listingLimit {
			limit = n
		}
	}

	data, err := h.cache.GetOrLoadSafe(ctx, redis.ListingCacheKey, h.cacheCfg.ListingTTL, func() (interface{}, error) {
		items, err := h.properties.ListAvailable(ctx, h.listingLimit)
		if err != nil {
			return nil, err
		}
		return dto.ToPropertyWithAgentDTOs(items), nil
	})
	if err != nil {
		logger.Error(ctx, "failed to load property listing", err)
		dto.InternalError(c, "failed to load properties")
		return
	}

	var listing []*dto.PropertyWithAgentDTO
	if err := json.Unmarshal(data, &listing); err != nil {
		logger.Error(ctx, "failed to decode cached listing", err)
		dto.InternalError(c, "failed to load properties")
		return
	}
	if limit < len(listing) {
		listing = listing[:limit]
	}

	dto.Success(c, listing)
}
