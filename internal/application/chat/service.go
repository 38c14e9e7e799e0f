package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "neuroedge-api/pkg/errors"
	"neuroedge-api/pkg/logger"
	"neuroedge-api/pkg/metrics"

	"neuroedge-api/internal/application/search"
	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
)

var tracer = otel.Tracer("application/chat")

// User-facing fallback strings. Backend failures surface as visible
// conversational turns, never as transport errors.
const (
	degradedSearchMessage = "Search temporarily unavailable. Please try again in a moment."
	docContextPrefix      = "You may use this uploaded context:\n\n"
)

// Message 发送给生成后端的一条角色消息
type Message struct {
	Role    entity.Role
	Content string
}

// Generator 生成后端接口，实现方负责超时与采样参数
type Generator interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Service 会话服务
// 以 (访客, 话题) 为粒度维护有界历史，按话题类型派发到检索或生成后端
type Service struct {
	topics    *TopicSet
	sessions  repository.SessionStore
	engine    *search.Engine
	generator Generator
	registry  repository.DocumentRegistry
	docs      repository.DocumentStore

	historyWindow   int
	docContextChars int
	searchMax       int
}

// NewService 创建会话服务
func NewService(
	topics *TopicSet,
	sessions repository.SessionStore,
	engine *search.Engine,
	generator Generator,
	registry repository.DocumentRegistry,
	docs repository.DocumentStore,
	historyWindow, docContextChars, searchMax int,
) *Service {
	if historyWindow <= 0 {
		historyWindow = 6
	}
	if docContextChars <= 0 {
		docContextChars = 3000
	}
	if searchMax <= 0 {
		searchMax = 15
	}
	return &Service{
		topics:          topics,
		sessions:        sessions,
		engine:          engine,
		generator:       generator,
		registry:        registry,
		docs:            docs,
		historyWindow:   historyWindow,
		docContextChars: docContextChars,
		searchMax:       searchMax,
	}
}

// Topics 返回可见话题集合
func (s *Service) Topics() []*Topic {
	return s.topics.Visible()
}

// Handle 处理一轮用户输入并返回助手回复
func (s *Service) Handle(ctx context.Context, visitorID, topicName, userText string) (string, error) {
	ctx, span := tracer.Start(ctx, "chat.Handle")
	defer span.End()
	span.SetAttributes(attribute.String("chat.topic", topicName))

	topic, ok := s.topics.Get(topicName)
	if !ok {
		return "", apperrors.ErrTopicNotFound.WithDetail(topicName)
	}

	state, err := s.loadState(ctx, visitorID, topicName)
	if err != nil {
		return "", err
	}

	s.resolveDocuments(ctx, topicName, state)

	state.Append(entity.RoleUser, userText)
	metrics.ChatTurnsTotal.WithLabelValues(topicName, string(entity.RoleUser)).Inc()

	var answer string
	switch topic.Kind {
	case TopicKindSearch:
		answer = s.answerFromSearch(ctx, userText)
	default:
		answer = s.answerFromGenerator(ctx, topic, state)
	}

	state.Append(entity.RoleAssistant, answer)
	metrics.ChatTurnsTotal.WithLabelValues(topicName, string(entity.RoleAssistant)).Inc()

	if err := s.sessions.Save(ctx, visitorID, topicName, state); err != nil {
		span.RecordError(err)
		return "", apperrors.Wrap(err, apperrors.CodeSessionFailed, "failed to persist session")
	}

	return answer, nil
}

// History 返回会话历史，无会话时返回空切片
func (s *Service) History(ctx context.Context, visitorID, topicName string) ([]entity.ConversationTurn, error) {
	if _, ok := s.topics.Get(topicName); !ok {
		return nil, apperrors.ErrTopicNotFound.WithDetail(topicName)
	}
	state, err := s.sessions.Get(ctx, visitorID, topicName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSessionFailed, "failed to load session")
	}
	if state == nil {
		return []entity.ConversationTurn{}, nil
	}
	return state.Turns, nil
}

// Reset 清空会话历史与已解析文档
func (s *Service) Reset(ctx context.Context, visitorID, topicName string) error {
	if _, ok := s.topics.Get(topicName); !ok {
		return apperrors.ErrTopicNotFound.WithDetail(topicName)
	}
	if err := s.sessions.Reset(ctx, visitorID, topicName); err != nil {
		return apperrors.Wrap(err, apperrors.CodeSessionFailed, "failed to reset session")
	}
	metrics.ChatSessionResets.WithLabelValues(topicName).Inc()
	return nil
}

func (s *Service) loadState(ctx context.Context, visitorID, topicName string) (*entity.SessionState, error) {
	state, err := s.sessions.Get(ctx, visitorID, topicName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSessionFailed, "failed to load session")
	}
	if state == nil {
		state = entity.NewSessionState()
	}
	return state, nil
}

// resolveDocuments 懒解析话题文档引用，会话生命周期内至多一次
// 登记表为空时留待下次请求重试，非空则冻结解析结果
func (s *Service) resolveDocuments(ctx context.Context, topicName string, state *entity.SessionState) {
	if state.DocsResolved {
		return
	}

	names, err := s.registry.Resolve(ctx, topicName)
	if err != nil {
		logger.Warn(ctx, "document registry lookup failed", "topic", topicName, "error", err.Error())
		return
	}
	if len(names) == 0 {
		return
	}

	var paths, kept []string
	for _, name := range names {
		if s.docs.Exists(ctx, topicName, name) {
			paths = append(paths, s.docs.Path(topicName, name))
			kept = append(kept, name)
		}
	}

	state.SetResolvedDocs(paths, kept)
	if len(kept) > 0 {
		logger.Debug(ctx, "resolved session documents", "topic", topicName, "count", len(kept))
	}
}

func (s *Service) answerFromSearch(ctx context.Context, userText string) string {
	results, err := s.engine.Query(ctx, userText, s.searchMax)
	if err != nil {
		logger.Error(ctx, "search topic query failed", err)
		return degradedSearchMessage
	}
	return search.RenderResults(userText, results)
}

func (s *Service) answerFromGenerator(ctx context.Context, topic *Topic, state *entity.SessionState) string {
	messages := []Message{{Role: entity.RoleSystem, Content: topic.SystemPrompt}}

	if docContext := s.documentContext(ctx, topic.Name, state); docContext != "" {
		messages = append(messages, Message{
			Role:    entity.RoleSystem,
			Content: docContextPrefix + docContext,
		})
	}

	for _, turn := range state.RecentTurns(s.historyWindow) {
		messages = append(messages, Message{Role: turn.Role, Content: turn.Content})
	}

	answer, err := s.generator.Complete(ctx, messages)
	if err != nil {
		// Visible placeholder turn, no retry
		logger.Error(ctx, "generation backend failed", err, "topic", topic.Name)
		return fmt.Sprintf("API error: %v", err)
	}
	return strings.TrimSpace(answer)
}

// documentContext 拼接已解析文档内容并截断到配置上限
func (s *Service) documentContext(ctx context.Context, topicName string, state *entity.SessionState) string {
	if len(state.DocNames) == 0 {
		return ""
	}

	var parts []string
	for _, name := range state.DocNames {
		content, err := s.docs.Read(ctx, topicName, name)
		if err != nil {
			logger.Warn(ctx, "failed to read session document", "topic", topicName, "document", name, "error", err.Error())
			continue
		}
		parts = append(parts, content)
	}
	if len(parts) == 0 {
		return ""
	}

	return truncateRunes(strings.Join(parts, "\n\n"), s.docContextChars)
}

// truncateRunes 按 rune 数量截断，不切断多字节字符
func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
