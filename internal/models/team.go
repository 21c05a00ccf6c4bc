package models

import "time"

// Team 团队，PeopleCount 为实时统计，不落库
type Team struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	OrganizationID string    `json:"organizationId"`
	ManagerID      string    `json:"managerId,omitempty"`
	PeopleCount    int       `json:"peopleCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateTeamRequest 创建团队请求
type CreateTeamRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Description    string `json:"description" binding:"max=500"`
	OrganizationID string `json:"-"`
	ManagerID      string `json:"managerId"`
}

// UpdateTeamRequest 更新团队请求，nil 字段保持不变
type UpdateTeamRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	ManagerID   *string `json:"managerId"`
}

// TeamMemberRequest 团队成员变更请求
type TeamMemberRequest struct {
	PersonID string `json:"personId" binding:"required"`
}
