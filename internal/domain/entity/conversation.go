package entity

import (
	"time"
)

// ConversationTurn 会话中的一轮发言
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewConversationTurn 创建一轮发言
func NewConversationTurn(role Role, content string) ConversationTurn {
	return ConversationTurn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// SessionState 单个 (访客, 话题) 的会话状态
// 文档引用在会话生命周期内至多解析一次，解析结果随会话持久化
type SessionState struct {
	Turns        []ConversationTurn `json:"turns"`
	DocPaths     []string           `json:"doc_paths,omitempty"`
	DocNames     []string           `json:"doc_names,omitempty"`
	DocsResolved bool               `json:"docs_resolved"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewSessionState 创建空会话状态
func NewSessionState() *SessionState {
	now := time.Now()
	return &SessionState{
		Turns:     []ConversationTurn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append 追加一轮发言
func (s *SessionState) Append(role Role, content string) {
	s.Turns = append(s.Turns, NewConversationTurn(role, content))
	s.UpdatedAt = time.Now()
}

// RecentTurns 返回最近 n 轮发言，不足 n 轮时返回全部
func (s *SessionState) RecentTurns(n int) []ConversationTurn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// SetResolvedDocs 记录解析后的文档引用
func (s *SessionState) SetResolvedDocs(paths, names []string) {
	s.DocPaths = paths
	s.DocNames = names
	s.DocsResolved = true
	s.UpdatedAt = time.Now()
}
