package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Person 人员。TeamName 在读取时根据 TeamID 关联得到
type Person struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organizationId"`
	TeamID         string    `json:"teamId,omitempty"`
	TeamName       string    `json:"teamName,omitempty"`
	Position       string    `json:"position"`
	Status         string    `json:"status"`
	EntryDate      Date      `json:"entryDate"`
	ExitDate       Date      `json:"exitDate,omitempty"`
	ManagerID      string    `json:"managerId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// 人员状态常量
const (
	PersonStatusActive   = "active"
	PersonStatusInactive = "inactive"
)

// IsActive 是否在职
func (p *Person) IsActive() bool {
	return p.Status == PersonStatusActive
}

// CreatePersonRequest 创建人员请求
type CreatePersonRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Email          string `json:"email" binding:"required,max=200"`
	Position       string `json:"position" binding:"required,max=100"`
	OrganizationID string `json:"-"`
	TeamID         string `json:"teamId"`
	ManagerID      string `json:"managerId"`
	EntryDate      Date   `json:"entryDate"`
}

// UpdatePersonRequest 更新人员请求，nil 字段保持不变，空字符串清空引用
type UpdatePersonRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,max=200"`
	Position  *string `json:"position" binding:"omitempty,max=100"`
	Status    *string `json:"status" binding:"omitempty,oneof=active inactive"`
	TeamID    *string `json:"teamId"`
	ManagerID *string `json:"managerId"`
	EntryDate *Date   `json:"entryDate"`
	ExitDate  *Date   `json:"exitDate"`
}

// PersonLicense 人员持有的许可证及其分摊成本
type PersonLicense struct {
	License
	CostShare decimal.Decimal `json:"costShare"`
}

// PersonDetail 人员详情视图
type PersonDetail struct {
	Person
	Manager      *Person         `json:"manager,omitempty"`
	Subordinates []Person        `json:"subordinates"`
	Licenses     []PersonLicense `json:"licenses"`
	Assets       []Asset         `json:"assets"`
	LicenseCost  decimal.Decimal `json:"licenseCost"`
	AssetValue   decimal.Decimal `json:"assetValue"`
	TotalCost    decimal.Decimal `json:"totalCost"`
}
