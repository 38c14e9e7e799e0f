package handler

import (
	"github.com/gin-gonic/gin"

	"neuroedge-api/internal/application/chat"
	"neuroedge-api/internal/interfaces/http/dto"
)

// ChatHandler 访客会话处理器
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler 创建会话处理器
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// ListTopics 列出可见话题
// @Summary 话题列表
// @Tags Chat
// @Produce json
// @Success 200 {object} dto.Response[dto.TopicListResponse]
// @Router /v1/topics [get]
func (h *ChatHandler) ListTopics(c *gin.Context) {
	dto.Success(c, &dto.TopicListResponse{
		Topics: dto.ToTopicDTOs(h.service.Topics()),
	})
}

// SendMessage 发送一轮会话消息
// @Summary 发送会话消息
// @Description 检索话题直接返回房源摘要，生成话题经 LLM 回答
// @Tags Chat
// @Accept json
// @Produce json
// @Param topic path string true "话题名"
// @Param body body dto.ChatMessageRequest true "用户消息"
// @Success 200 {object} dto.Response[dto.ChatMessageResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chat/{topic}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	topic := c.Param("topic")
	sessionID := resolveSessionID(c)

	var req dto.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	reply, err := h.service.Handle(c.Request.Context(), sessionID, topic, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, &dto.ChatMessageResponse{
		Topic:     topic,
		SessionID: sessionID,
		Reply:     reply,
	})
}

// History 返回当前会话历史
func (h *ChatHandler) History(c *gin.Context) {
	topic := c.Param("topic")
	sessionID := resolveSessionID(c)

	turns, err := h.service.History(c.Request.Context(), sessionID, topic)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, &dto.ChatHistoryResponse{
		Topic:     topic,
		SessionID: sessionID,
		Turns:     dto.ToChatTurnDTOs(turns),
	})
}

// Reset 清空当前会话
func (h *ChatHandler) Reset(c *gin.Context) {
	topic := c.Param("topic")
	sessionID := resolveSessionID(c)

	if err := h.service.Reset(c.Request.Context(), sessionID, topic); err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, gin.H{"topic": topic, "session_id": sessionID})
}
