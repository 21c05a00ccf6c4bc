package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset 实物资产，最多分配给一个人
type Asset struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	OrganizationID string          `json:"organizationId"`
	Type           string          `json:"type"`
	SerialNumber   string          `json:"serialNumber"`
	Value          decimal.Decimal `json:"value"`
	PurchaseDate   Date            `json:"purchaseDate"`
	Condition      string          `json:"condition"`
	Status         string          `json:"status"`
	AssignedTo     string          `json:"assignedTo,omitempty"`
	AssignedToName string          `json:"assignedToName,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// 资产类型
const (
	AssetTypeNotebook = "notebook"
	AssetTypeMonitor  = "monitor"
	AssetTypeAdapter  = "adapter"
	AssetTypeOther    = "other"
)

// 资产状态
const (
	AssetStatusAvailable   = "available"
	AssetStatusAllocated   = "allocated"
	AssetStatusMaintenance = "maintenance"
	AssetStatusRetired     = "retired"
)

// 资产成色
const (
	AssetConditionNew  = "new"
	AssetConditionGood = "good"
	AssetConditionFair = "fair"
	AssetConditionPoor = "poor"
)

// CreateAssetRequest 创建资产请求
type CreateAssetRequest struct {
	Name           string          `json:"name" binding:"required,max=100"`
	OrganizationID string          `json:"-"`
	Type           string          `json:"type" binding:"required,oneof=notebook monitor adapter other"`
	SerialNumber   string          `json:"serialNumber" binding:"required,max=100"`
	Value          decimal.Decimal `json:"value"`
	PurchaseDate   Date            `json:"purchaseDate"`
	Condition      string          `json:"condition" binding:"required,oneof=new good fair poor"`
	Status         string          `json:"status" binding:"required,oneof=available allocated maintenance retired"`
	AssignedTo     string          `json:"assignedTo"`
	Notes          string          `json:"notes" binding:"max=1000"`
}

// UpdateAssetRequest 更新资产请求。修改 AssignedTo 不会联动 Status
type UpdateAssetRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Type         *string          `json:"type" binding:"omitempty,oneof=notebook monitor adapter other"`
	SerialNumber *string          `json:"serialNumber" binding:"omitempty,min=1,max=100"`
	Value        *decimal.Decimal `json:"value"`
	PurchaseDate *Date            `json:"purchaseDate"`
	Condition    *string          `json:"condition" binding:"omitempty,oneof=new good fair poor"`
	Status       *string          `json:"status" binding:"omitempty,oneof=available allocated maintenance retired"`
	AssignedTo   *string          `json:"assignedTo"`
	Notes        *string          `json:"notes" binding:"omitempty,max=1000"`
}

// AssignAssetRequest 分配资产请求
type AssignAssetRequest struct {
	PersonID string `json:"personId" binding:"required"`
}

// AssetFilter 资产列表筛选条件，空字段表示不过滤
type AssetFilter struct {
	Status string `form:"status"`
	Type   string `form:"type"`
	Search string `form:"search"`
}

// InventorySummary 可用资产库存汇总
type InventorySummary struct {
	Available  int             `json:"available"`
	Notebooks  int             `json:"notebooks"`
	Monitors   int             `json:"monitors"`
	Adapters   int             `json:"adapters"`
	Others     int             `json:"others"`
	TotalValue decimal.Decimal `json:"totalValue"`
}
