// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// PropertyStatus 房源状态
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusArchived  PropertyStatus = "archived"
	PropertyStatusDeleted   PropertyStatus = "deleted"
	PropertyStatusSold      PropertyStatus = "sold"
)

// TrashStatuses 回收站视图涵盖的状态集合
var TrashStatuses = []PropertyStatus{
	PropertyStatusDeleted,
	PropertyStatusSold,
	PropertyStatusArchived,
}

// Property 房源实体
type Property struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Price        float64        `json:"price"`
	Currency     string         `json:"currency"`
	PropertyType string         `json:"property_type"`
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    int            `json:"bathrooms"`
	SizeSqft     int            `json:"size_sqft"`
	Location     string         `json:"location"`
	City         string         `json:"city"`
	Features     []string       `json:"features"`
	Status       PropertyStatus `json:"status"`
	AgentID      string         `json:"agent_id"`
	ListingURL   string         `json:"listing_url,omitempty"`
	Images       []string       `json:"images,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewProperty 创建新房源
func NewProperty(title, propertyType, location, agentID string, price float64) *Property {
	now := time.Now()
	return &Property{
		ID:           uuid.NewString(),
		Title:        title,
		Price:        price,
		Currency:     "NAD",
		PropertyType: propertyType,
		Location:     location,
		City:         "Windhoek",
		Status:       PropertyStatusAvailable,
		AgentID:      agentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAvailable 判断房源是否对外可见
// 历史数据中 status 可能为空，按可用处理
func (p *Property) IsAvailable() bool {
	return p.Status == PropertyStatusAvailable || p.Status == ""
}

// IsTrashed 判断房源是否位于回收站
func (p *Property) IsTrashed() bool {
	for _, s := range TrashStatuses {
		if p.Status == s {
			return true
		}
	}
	return false
}

// Archive 软删除，进入回收站
func (p *Property) Archive() {
	p.Status = PropertyStatusArchived
	p.UpdatedAt = time.Now()
}

// Restore 从回收站恢复为可用
func (p *Property) Restore() {
	p.Status = PropertyStatusAvailable
	p.UpdatedAt = time.Now()
}

// PropertyWithAgent 房源与经纪人联表结果
type PropertyWithAgent struct {
	Property
	AgentName      string `json:"agent_name"`
	AgentEmail     string `json:"agent_email,omitempty"`
	AgentPhone     string `json:"agent_phone,omitempty"`
	AgentSpecialty string `json:"agent_specialty,omitempty"`
}
