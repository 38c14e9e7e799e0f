// Package redis 提供 Redis 会话状态存储实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"neuroedge-api/internal/domain/entity"
)

// SessionStore 基于 Redis 的会话状态存储
// 键格式 chat:{visitorID}:{topic}，整体 JSON 覆盖写入
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(visitorID, topic string) string {
	return fmt.Sprintf("chat:%s:%s", visitorID, topic)
}

// Get 读取会话状态，不存在时返回 nil
func (s *SessionStore) Get(ctx context.Context, visitorID, topic string) (*entity.SessionState, error) {
	ctx, span := tracer.Start(ctx, "session.Get",
		trace.WithAttributes(attribute.String("session.topic", topic)))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, sessionKey(visitorID, topic)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var state entity.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &state, nil
}

// Save 写入会话状态并续期
func (s *SessionStore) Save(ctx context.Context, visitorID, topic string, state *entity.SessionState) error {
	ctx, span := tracer.Start(ctx, "session.Save",
		trace.WithAttributes(
			attribute.String("session.topic", topic),
			attribute.Int("session.turn_count", len(state.Turns)),
		))
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.rdb.Set(ctx, sessionKey(visitorID, topic), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Reset 删除会话状态
func (s *SessionStore) Reset(ctx context.Context, visitorID, topic string) error {
	ctx, span := tracer.Start(ctx, "session.Reset",
		trace.WithAttributes(attribute.String("session.topic", topic)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, sessionKey(visitorID, topic)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to reset session: %w", err)
	}

	return nil
}
