package chat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroedge-api/internal/config"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolveTopics(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "maria.txt", "You are Maria.\n")
	writePrompt(t, dir, "internal.txt", "Internal assistant.")

	cfg := config.ChatConfig{
		PromptDir: dir,
		Topics: []config.TopicConfig{
			{Name: "property-search", Kind: "search"},
			{Name: "maria", Kind: "generative", PromptFile: "maria.txt"},
			{Name: "backoffice", Kind: "generative", PromptFile: "internal.txt", Hidden: true},
		},
	}

	set, err := ResolveTopics(cfg)
	require.NoError(t, err)

	t.Run("search topic has no prompt", func(t *testing.T) {
		topic, ok := set.Get("property-search")
		require.True(t, ok)
		assert.Equal(t, TopicKindSearch, topic.Kind)
		assert.Empty(t, topic.SystemPrompt)
	})

	t.Run("generative prompt is loaded and trimmed", func(t *testing.T) {
		topic, ok := set.Get("maria")
		require.True(t, ok)
		assert.Equal(t, TopicKindGenerative, topic.Kind)
		assert.Equal(t, "You are Maria.", topic.SystemPrompt)
	})

	t.Run("unknown topic is rejected", func(t *testing.T) {
		_, ok := set.Get("nonexistent")
		assert.False(t, ok)
	})

	t.Run("visible preserves order and hides hidden topics", func(t *testing.T) {
		visible := set.Visible()
		require.Len(t, visible, 2)
		assert.Equal(t, "property-search", visible[0].Name)
		assert.Equal(t, "maria", visible[1].Name)
	})
}

func TestResolveTopicsErrors(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "ok.txt", "prompt")

	tests := []struct {
		name string
		cfg  config.ChatConfig
	}{
		{
			name: "no topics",
			cfg:  config.ChatConfig{PromptDir: dir},
		},
		{
			name: "unknown kind",
			cfg: config.ChatConfig{PromptDir: dir, Topics: []config.TopicConfig{
				{Name: "x", Kind: "vector"},
			}},
		},
		{
			name: "generative without prompt file",
			cfg: config.ChatConfig{PromptDir: dir, Topics: []config.TopicConfig{
				{Name: "x", Kind: "generative"},
			}},
		},
		{
			name: "missing prompt file",
			cfg: config.ChatConfig{PromptDir: dir, Topics: []config.TopicConfig{
				{Name: "x", Kind: "generative", PromptFile: "gone.txt"},
			}},
		},
		{
			name: "duplicate topic",
			cfg: config.ChatConfig{PromptDir: dir, Topics: []config.TopicConfig{
				{Name: "x", Kind: "search"},
				{Name: "x", Kind: "generative", PromptFile: "ok.txt"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveTopics(tt.cfg)
			require.Error(t, err)
		})
	}
}
