// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"neuroedge-api/internal/application/chat"
	"neuroedge-api/internal/domain/entity"
)

// ChatMessageRequest 会话消息请求
type ChatMessageRequest struct {
	Message string `json:"message" binding:"required,max=8192"`
}

// ChatMessageResponse 会话消息响应
type ChatMessageResponse struct {
	Topic     string `json:"topic"`
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// ChatTurnDTO 单条会话轮次
type ChatTurnDTO struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatHistoryResponse 会话历史响应
type ChatHistoryResponse struct {
	Topic     string         `json:"topic"`
	SessionID string         `json:"session_id"`
	Turns     []*ChatTurnDTO `json:"turns"`
}

// TopicDTO 话题信息
type TopicDTO struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// TopicListResponse 话题列表响应
type TopicListResponse struct {
	Topics []*TopicDTO `json:"topics"`
}

// ToChatTurnDTOs 将会话轮次转换为 DTO
func ToChatTurnDTOs(turns []entity.ConversationTurn) []*ChatTurnDTO {
	out := make([]*ChatTurnDTO, 0, len(turns))
	for i := range turns {
		out = append(out, &ChatTurnDTO{
			Role:      string(turns[i].Role),
			Content:   turns[i].Content,
			CreatedAt: formatTime(turns[i].CreatedAt),
		})
	}
	return out
}

// ToTopicDTOs 将话题列表转换为 DTO
func ToTopicDTOs(topics []*chat.Topic) []*TopicDTO {
	out := make([]*TopicDTO, 0, len(topics))
	for _, t := range topics {
		out = append(out, &TopicDTO{
			Name: t.Name,
			Kind: t.Kind.String(),
		})
	}
	return out
}
