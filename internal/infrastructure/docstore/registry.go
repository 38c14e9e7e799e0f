// Package docstore 提供话题文档的文件存储与登记表实现
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("infrastructure/docstore")

// Registry 基于 JSON 文件的文档登记表
// 登记表是话题文档的唯一事实来源，整个文件在每次写入时重写
type Registry struct {
	path string
	mu   sync.Mutex
}

// NewRegistry 创建登记表
func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Resolve 返回话题下已登记的文件名列表
func (r *Registry) Resolve(ctx context.Context, topic string) ([]string, error) {
	_, span := tracer.Start(ctx, "registry.Resolve")
	span.SetAttributes(attribute.String("doc.topic", topic))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return entries[topic], nil
}

// Register 将文件名登记到话题下，重复登记是幂等的
func (r *Registry) Register(ctx context.Context, topic, filename string) error {
	_, span := tracer.Start(ctx, "registry.Register")
	span.SetAttributes(
		attribute.String("doc.topic", topic),
		attribute.String("doc.filename", filename),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		span.RecordError(err)
		return err
	}

	for _, name := range entries[topic] {
		if name == filename {
			return nil
		}
	}
	entries[topic] = append(entries[topic], filename)

	if err := r.save(entries); err != nil {
		span.RecordError(err)
		return err
	}

	return nil
}

func (r *Registry) load() (map[string][]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string][]string), nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	entries := make(map[string][]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}

	return entries, nil
}

func (r *Registry) save(entries map[string][]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create registry dir: %w", err)
	}

	// 先写临时文件再改名，避免写到一半的登记表被读到
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}

	return nil
}
