// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"neuroedge-api/internal/domain/entity"
)

// CreatePropertyRequest 创建房源请求
type CreatePropertyRequest struct {
	Title        string   `json:"title" binding:"required,max=256"`
	Description  string   `json:"description" binding:"omitempty,max=8192"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Currency     string   `json:"currency" binding:"omitempty,max=8"`
	PropertyType string   `json:"property_type" binding:"required,max=64"`
	Bedrooms     int      `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms    int      `json:"bathrooms" binding:"omitempty,min=0"`
	SizeSqft     int      `json:"size_sqft" binding:"omitempty,min=0"`
	Location     string   `json:"location" binding:"required,max=256"`
	City         string   `json:"city" binding:"omitempty,max=128"`
	Features     []string `json:"features" binding:"omitempty,max=64"`
	AgentID      string   `json:"agent_id" binding:"omitempty,max=64"`
	ListingURL   string   `json:"listing_url" binding:"omitempty,max=512"`
	Images       []string `json:"images" binding:"omitempty,max=32"`
}

// UpdatePropertyRequest 更新房源请求
type UpdatePropertyRequest struct {
	Title        string   `json:"title" binding:"required,max=256"`
	Description  string   `json:"description" binding:"omitempty,max=8192"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Currency     string   `json:"currency" binding:"omitempty,max=8"`
	PropertyType string   `json:"property_type" binding:"required,max=64"`
	Bedrooms     int      `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms    int      `json:"bathrooms" binding:"omitempty,min=0"`
	SizeSqft     int      `json:"size_sqft" binding:"omitempty,min=0"`
	Location     string   `json:"location" binding:"required,max=256"`
	City         string   `json:"city" binding:"omitempty,max=128"`
	Features     []string `json:"features" binding:"omitempty,max=64"`
	Status       string   `json:"status" binding:"omitempty,oneof=available archived deleted sold"`
	AgentID      string   `json:"agent_id" binding:"omitempty,max=64"`
	ListingURL   string   `json:"listing_url" binding:"omitempty,max=512"`
	Images       []string `json:"images" binding:"omitempty,max=32"`
}

// PropertyDTO 房源响应
type PropertyDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	PropertyType string   `json:"property_type"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	SizeSqft     int      `json:"size_sqft"`
	Location     string   `json:"location"`
	City         string   `json:"city"`
	Features     []string `json:"features,omitempty"`
	Status       string   `json:"status"`
	AgentID      string   `json:"agent_id,omitempty"`
	ListingURL   string   `json:"listing_url,omitempty"`
	Images       []string `json:"images,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// PropertyWithAgentDTO 带经纪人信息的房源响应
type PropertyWithAgentDTO struct {
	PropertyDTO
	AgentName      string `json:"agent_name,omitempty"`
	AgentEmail     string `json:"agent_email,omitempty"`
	AgentPhone     string `json:"agent_phone,omitempty"`
	AgentSpecialty string `json:"agent_specialty,omitempty"`
}

// ToPropertyDTO 将领域实体转换为 DTO
func ToPropertyDTO(p *entity.Property) *PropertyDTO {
	if p == nil {
		return nil
	}
	return &PropertyDTO{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		Currency:     p.Currency,
		PropertyType: p.PropertyType,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		SizeSqft:     p.SizeSqft,
		Location:     p.Location,
		City:         p.City,
		Features:     p.Features,
		Status:       string(p.Status),
		AgentID:      p.AgentID,
		ListingURL:   p.ListingURL,
		Images:       p.Images,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
}

// ToPropertyWithAgentDTO 将带经纪人信息的实体转换为 DTO
func ToPropertyWithAgentDTO(p *entity.PropertyWithAgent) *PropertyWithAgentDTO {
	if p == nil {
		return nil
	}
	return &PropertyWithAgentDTO{
		PropertyDTO:    *ToPropertyDTO(&p.Property),
		AgentName:      p.AgentName,
		AgentEmail:     p.AgentEmail,
		AgentPhone:     p.AgentPhone,
		AgentSpecialty: p.AgentSpecialty,
	}
}

// ToPropertyDTOs 批量转换
func ToPropertyDTOs(items []*entity.Property) []*PropertyDTO {
	out := make([]*PropertyDTO, 0, len(items))
	for _, p := range items {
		out = append(out, ToPropertyDTO(p))
	}
	return out
}

// ToPropertyWithAgentDTOs 批量转换
func ToPropertyWithAgentDTOs(items []*entity.PropertyWithAgent) []*PropertyWithAgentDTO {
	out := make([]*PropertyWithAgentDTO, 0, len(items))
	for _, p := range items {
		out = append(out, ToPropertyWithAgentDTO(p))
	}
	return out
}

// ApplyToProperty 将更新请求写回实体
func (r *UpdatePropertyRequest) ApplyToProperty(p *entity.Property) {
	p.Title = r.Title
	p.Description = r.Description
	p.Price = r.Price
	if r.Currency != "" {
		p.Currency = r.Currency
	}
	p.PropertyType = r.PropertyType
	p.Bedrooms = r.Bedrooms
	p.Bathrooms = r.Bathrooms
	p.SizeSqft = r.SizeSqft
	p.Location = r.Location
	if r.City != "" {
		p.City = r.City
	}
	p.Features = r.Features
	if r.Status != "" {
		p.Status = entity.PropertyStatus(r.Status)
	}
	p.AgentID = r.AgentID
	p.ListingURL = r.ListingURL
	p.Images = r.Images
}
