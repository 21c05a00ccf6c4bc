package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// License 软件许可证。UsedQuantity、AvailableQuantity 和 Status 都在读取时计算
type License struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	OrganizationID    string           `json:"organizationId"`
	Vendor            string           `json:"vendor,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	TotalQuantity     int              `json:"totalQuantity"`
	UsedQuantity      int              `json:"usedQuantity"`
	AvailableQuantity int              `json:"availableQuantity"`
	ExpirationDate    Date             `json:"expirationDate"`
	Status            string           `json:"status"`
	AssignedTo        []string         `json:"assignedTo"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// 许可证状态常量
const (
	LicenseStatusActive       = "active"
	LicenseStatusExpiringSoon = "expiring_soon"
	LicenseStatusExpired      = "expired"
)

// ValidLicenseStatus 是否为合法的显式状态
func ValidLicenseStatus(status string) bool {
	switch status {
	case LicenseStatusActive, LicenseStatusExpiringSoon, LicenseStatusExpired:
		return true
	}
	return false
}

// DefaultExpiringWindowDays 即将过期的默认窗口
const DefaultExpiringWindowDays = 30

// IsAssigned 人员是否占用了该许可证的席位
func (l *License) IsAssigned(personID string) bool {
	for _, id := range l.AssignedTo {
		if id == personID {
			return true
		}
	}
	return false
}

// TotalCost 许可证总成本，未设置时为 0
func (l *License) TotalCost() decimal.Decimal {
	if l.Cost == nil {
		return decimal.Zero
	}
	return *l.Cost
}

// CreateLicenseRequest 创建许可证请求
type CreateLicenseRequest struct {
	Name           string           `json:"name" binding:"required,max=100"`
	Description    string           `json:"description" binding:"max=500"`
	OrganizationID string           `json:"-"`
	Vendor         string           `json:"vendor" binding:"max=100"`
	Cost           *decimal.Decimal `json:"cost"`
	TotalQuantity  int              `json:"totalQuantity" binding:"required,min=1"`
	ExpirationDate Date             `json:"expirationDate"`
	Status         string           `json:"status" binding:"omitempty,oneof=active expiring_soon expired"`
}

// UpdateLicenseRequest 更新许可证请求，nil 字段保持不变
type UpdateLicenseRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description    *string          `json:"description" binding:"omitempty,max=500"`
	Vendor         *string          `json:"vendor" binding:"omitempty,max=100"`
	Cost           *decimal.Decimal `json:"cost"`
	TotalQuantity  *int             `json:"totalQuantity" binding:"omitempty,min=1"`
	ExpirationDate *Date            `json:"expirationDate"`
	// Status 为空字符串时取消显式状态，回到按到期日推导
	Status *string `json:"status"`
}

// AssignLicenseRequest 分配/回收席位请求
type AssignLicenseRequest struct {
	PersonID string `json:"personId" binding:"required"`
}

// ReconcileLicenseRequest 按目标集合整体调整席位
type ReconcileLicenseRequest struct {
	PersonIDs []string `json:"personIds"`
}

// LicenseSummary 许可证汇总
type LicenseSummary struct {
	Total        int             `json:"total"`
	Active       int             `json:"active"`
	ExpiringSoon int             `json:"expiringSoon"`
	Expired      int             `json:"expired"`
	SeatsTotal   int             `json:"seatsTotal"`
	SeatsUsed    int             `json:"seatsUsed"`
	TotalCost    decimal.Decimal `json:"totalCost"`
}

// ExpiryReport 许可证到期巡检结果
type ExpiryReport struct {
	OrganizationID string    `json:"organizationId"`
	GeneratedAt    time.Time `json:"generatedAt"`
	ExpiringSoon   []License `json:"expiringSoon"`
	Expired        []License `json:"expired"`
}
