package models

import "time"

// Organization 组织，所有其他实体的租户边界
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateOrganizationRequest 创建组织请求
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// 默认种子数据
const (
	DefaultOrganizationName        = "Main Organization"
	DefaultOrganizationDescription = "Default organization"
	DefaultTeamName                = "Development"
	DefaultTeamDescription         = "Software development team"
)
