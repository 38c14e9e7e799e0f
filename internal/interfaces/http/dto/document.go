// Package dto 提供 HTTP 层数据传输对象
package dto

// DocumentDTO 已登记文档
type DocumentDTO struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// DocumentListResponse 话题文档列表响应
type DocumentListResponse struct {
	Topic     string         `json:"topic"`
	Documents []*DocumentDTO `json:"documents"`
}

// DocumentUploadResponse 文档上传响应
type DocumentUploadResponse struct {
	Topic      string `json:"topic"`
	Name       string `json:"name"`
	StoredName string `json:"stored_name"`
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
}
