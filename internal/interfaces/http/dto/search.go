// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"neuroedge-api/internal/application/search"
)

// SearchRequest 房源检索请求
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results" binding:"omitempty,min=1"`
}

// SearchResultDTO 单条检索结果
type SearchResultDTO struct {
	PropertyWithAgentDTO
	RelevanceScore int `json:"relevance_score"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Query   string             `json:"query"`
	Count   int                `json:"count"`
	Results []*SearchResultDTO `json:"results"`
}

// ToSearchResponse 将检索结果转换为响应
func ToSearchResponse(query string, results []search.Result) *SearchResponse {
	out := make([]*SearchResultDTO, 0, len(results))
	for i := range results {
		out = append(out, &SearchResultDTO{
			PropertyWithAgentDTO: *ToPropertyWithAgentDTO(&results[i].PropertyWithAgent),
			RelevanceScore:       results[i].Score,
		})
	}
	return &SearchResponse{
		Query:   query,
		Count:   len(out),
		Results: out,
	}
}
