package docstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Store 话题文档的磁盘存储
// 布局为 {root}/{topic}/{uuid}_{文件名}
type Store struct {
	root string
}

// NewStore 创建文档存储
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Save 保存上传内容，返回带唯一前缀的实际存储文件名
func (s *Store) Save(ctx context.Context, topic, filename string, r io.Reader) (string, error) {
	_, span := tracer.Start(ctx, "docstore.Save")
	span.SetAttributes(
		attribute.String("doc.topic", topic),
		attribute.String("doc.filename", filename),
	)
	defer span.End()

	dir := filepath.Join(s.root, sanitizeComponent(topic))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create topic dir: %w", err)
	}

	storedName := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeComponent(filename))
	path := filepath.Join(dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create document file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		span.RecordError(err)
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		span.RecordError(err)
		return "", fmt.Errorf("failed to close document file: %w", err)
	}

	return storedName, nil
}

// Exists 检查文件是否存在
func (s *Store) Exists(ctx context.Context, topic, filename string) bool {
	info, err := os.Stat(filepath.Join(s.root, sanitizeComponent(topic), sanitizeComponent(filename)))
	return err == nil && !info.IsDir()
}

// Read 读取文件内容
func (s *Store) Read(ctx context.Context, topic, filename string) (string, error) {
	_, span := tracer.Start(ctx, "docstore.Read")
	span.SetAttributes(
		attribute.String("doc.topic", topic),
		attribute.String("doc.filename", filename),
	)
	defer span.End()

	data, err := os.ReadFile(filepath.Join(s.root, sanitizeComponent(topic), sanitizeComponent(filename)))
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to read document: %w", err)
	}

	return string(data), nil
}

// Path 返回文件相对存储根的路径
func (s *Store) Path(topic, filename string) string {
	return filepath.Join(sanitizeComponent(topic), sanitizeComponent(filename))
}

// sanitizeComponent 剥离路径分隔符，防止越出存储根目录
func sanitizeComponent(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return "_"
	}
	return name
}
