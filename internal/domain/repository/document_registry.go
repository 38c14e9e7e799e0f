package repository

import (
	"context"
	"io"
)

// DocumentRegistry 话题文档登记表接口
// 登记表是唯一事实来源，不做目录扫描
type DocumentRegistry interface {
	// Resolve 返回话题下已登记的文件名列表
	Resolve(ctx context.Context, topic string) ([]string, error)

	// Register 将文件名登记到话题下
	Register(ctx context.Context, topic, filename string) error
}

// DocumentStore 话题文档文件存储接口
type DocumentStore interface {
	// Save 保存上传内容，返回实际存储文件名
	Save(ctx context.Context, topic, filename string, r io.Reader) (string, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, topic, filename string) bool

	// Read 读取文件内容
	Read(ctx context.Context, topic, filename string) (string, error)

	// Path 返回文件相对存储根的路径
	Path(topic, filename string) string
}
