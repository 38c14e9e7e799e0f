package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"neuroedge-api/internal/config"
)

// TopicKind 话题派发类型
type TopicKind int

const (
	// TopicKindSearch 纯数据库检索话题，不经过生成后端
	TopicKindSearch TopicKind = iota
	// TopicKindGenerative 生成式话题，携带系统提示词
	TopicKindGenerative
)

// String 返回配置中使用的类型名
func (k TopicKind) String() string {
	if k == TopicKindSearch {
		return "search"
	}
	return "generative"
}

// Topic 已解析的话题定义
type Topic struct {
	Name         string
	Kind         TopicKind
	SystemPrompt string
	Hidden       bool
}

// TopicSet 启动时解析的封闭话题集合
// 运行期不可变，未知话题一律拒绝
type TopicSet struct {
	topics map[string]*Topic
	order  []string
}

// ResolveTopics 将配置解析为话题集合
// 生成式话题的系统提示词在此处读入，缺失即启动失败
func ResolveTopics(cfg config.ChatConfig) (*TopicSet, error) {
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("no chat topics configured")
	}

	set := &TopicSet{topics: make(map[string]*Topic, len(cfg.Topics))}
	for _, tc := range cfg.Topics {
		name := strings.TrimSpace(tc.Name)
		if name == "" {
			return nil, fmt.Errorf("chat topic with empty name")
		}
		if _, exists := set.topics[name]; exists {
			return nil, fmt.Errorf("duplicate chat topic %q", name)
		}

		topic := &Topic{Name: name, Hidden: tc.Hidden}
		switch tc.Kind {
		case "search":
			topic.Kind = TopicKindSearch
		case "generative":
			topic.Kind = TopicKindGenerative
			if tc.PromptFile == "" {
				return nil, fmt.Errorf("generative topic %q has no prompt file", name)
			}
			prompt, err := os.ReadFile(filepath.Join(cfg.PromptDir, tc.PromptFile))
			if err != nil {
				return nil, fmt.Errorf("failed to read prompt for topic %q: %w", name, err)
			}
			topic.SystemPrompt = strings.TrimSpace(string(prompt))
			if topic.SystemPrompt == "" {
				return nil, fmt.Errorf("prompt for topic %q is empty", name)
			}
		default:
			return nil, fmt.Errorf("topic %q has unknown kind %q", name, tc.Kind)
		}

		set.topics[name] = topic
		set.order = append(set.order, name)
	}

	return set, nil
}

// Get 按名称查找话题
func (s *TopicSet) Get(name string) (*Topic, bool) {
	topic, ok := s.topics[name]
	return topic, ok
}

// Visible 返回对外展示的话题，保持配置顺序
func (s *TopicSet) Visible() []*Topic {
	var out []*Topic
	for _, name := range s.order {
		if t := s.topics[name]; !t.Hidden {
			out = append(out, t)
		}
	}
	return out
}
