package handler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"neuroedge-api/internal/application/chat"
	"neuroedge-api/internal/config"
	"neuroedge-api/internal/domain/repository"
	"neuroedge-api/internal/interfaces/http/dto"
	"neuroedge-api/pkg/logger"
	"neuroedge-api/pkg/metrics"
)

// DocumentHandler 话题文档上传处理器
type DocumentHandler struct {
	topics   *chat.TopicSet
	registry repository.DocumentRegistry
	store    repository.DocumentStore
	cfg      config.StorageConfig

	allowedExts map[string]bool
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(topics *chat.TopicSet, registry repository.DocumentRegistry, store repository.DocumentStore, cfg config.StorageConfig) *DocumentHandler {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed["."+strings.TrimPrefix(strings.ToLower(ext), ".")] = true
	}
	return &DocumentHandler{
		topics:      topics,
		registry:    registry,
		store:       store,
		cfg:         cfg,
		allowedExts: allowed,
	}
}

// Upload 上传话题文档
// @Summary 上传话题文档
// @Description 校验扩展名与大小，落盘后写入登记表
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param topic path string true "话题名"
// @Param file formData file true "文档文件"
// @Success 201 {object} dto.Response[dto.DocumentUploadResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/topics/{topic}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	topic := c.Param("topic")

	if _, ok := h.topics.Get(topic); !ok {
		metrics.DocumentUploads.WithLabelValues(topic, "rejected").Inc()
		dto.NotFound(c, "topic not found: "+topic)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		metrics.DocumentUploads.WithLabelValues(topic, "rejected").Inc()
		dto.BadRequest(c, "missing file field")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !h.allowedExts[ext] {
		metrics.DocumentUploads.WithLabelValues(topic, "rejected").Inc()
		dto.BadRequest(c, fmt.Sprintf("file type %q is not allowed", ext))
		return
	}

	if fileHeader.Size > h.cfg.MaxUploadBytes {
		metrics.DocumentUploads.WithLabelValues(topic, "rejected").Inc()
		dto.BadRequest(c, fmt.Sprintf("file exceeds upload limit of %d bytes", h.cfg.MaxUploadBytes))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error(ctx, "failed to open uploaded file", err)
		dto.InternalError(c, "upload failed")
		return
	}
	defer src.Close()

	storedName, err := h.store.Save(ctx, topic, fileHeader.Filename, src)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues(topic, "error").Inc()
		logger.Error(ctx, "failed to store document", err)
		dto.InternalError(c, "upload failed")
		return
	}

	if err := h.registry.Register(ctx, topic, storedName); err != nil {
		metrics.DocumentUploads.WithLabelValues(topic, "error").Inc()
		logger.Error(ctx, "failed to register document", err)
		dto.InternalError(c, "upload failed")
		return
	}

	metrics.DocumentUploads.WithLabelValues(topic, "accepted").Inc()
	logger.Info(ctx, "document uploaded", "topic", topic, "file", storedName, "size", fileHeader.Size)

	dto.Created(c, &dto.DocumentUploadResponse{
		Topic:      topic,
		Name:       fileHeader.Filename,
		StoredName: storedName,
		Path:       h.store.Path(topic, storedName),
		SizeBytes:  fileHeader.Size,
	})
}

// List 列出话题下已登记的文档
func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	topic := c.Param("topic")

	if _, ok := h.topics.Get(topic); !ok {
		dto.NotFound(c, "topic not found: "+topic)
		return
	}

	names, err := h.registry.Resolve(ctx, topic)
	if err != nil {
		logger.Error(ctx, "failed to resolve documents", err)
		dto.InternalError(c, "failed to list documents")
		return
	}

	docs := make([]*dto.DocumentDTO, 0, len(names))
	for _, name := range names {
		docs = append(docs, &dto.DocumentDTO{
			Name: name,
			Path: h.store.Path(topic, name),
		})
	}

	dto.Success(c, &dto.DocumentListResponse{
		Topic:     topic,
		Documents: docs,
	})
}
