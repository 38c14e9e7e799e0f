package repository

import (
	"context"

	"neuroedge-api/internal/domain/entity"
)

// SessionStore 会话状态存储接口
// 以 (访客, 话题) 为键，后写覆盖
type SessionStore interface {
	// Get 读取会话状态，不存在时返回 nil
	Get(ctx context.Context, visitorID, topic string) (*entity.SessionState, error)

	// Save 写入会话状态
	Save(ctx context.Context, visitorID, topic string, state *entity.SessionState) error

	// Reset 删除会话状态
	Reset(ctx context.Context, visitorID, topic string) error
}
