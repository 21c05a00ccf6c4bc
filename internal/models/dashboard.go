package models

import "github.com/shopspring/decimal"

// DashboardStats 首页统计
type DashboardStats struct {
	TotalPeople      int `json:"totalPeople"`
	ActivePeople     int `json:"activePeople"`
	TotalTeams       int `json:"totalTeams"`
	TotalLicenses    int `json:"totalLicenses"`
	ExpiringLicenses int `json:"expiringLicenses"`
	ExpiredLicenses  int `json:"expiredLicenses"`
	TotalAssets      int `json:"totalAssets"`
	AvailableAssets  int `json:"availableAssets"`
}

// LicenseCostLine 单个许可证的分摊
type LicenseCostLine struct {
	LicenseID   string          `json:"licenseId"`
	LicenseName string          `json:"licenseName"`
	CostShare   decimal.Decimal `json:"costShare"`
}

// AssetCostLine 单个资产的价值
type AssetCostLine struct {
	AssetID   string          `json:"assetId"`
	AssetName string          `json:"assetName"`
	Value     decimal.Decimal `json:"value"`
}

// CostBreakdown 人员成本明细
type CostBreakdown struct {
	PersonID    string            `json:"personId"`
	Licenses    []LicenseCostLine `json:"licenses"`
	Assets      []AssetCostLine   `json:"assets"`
	LicenseCost decimal.Decimal   `json:"licenseCost"`
	AssetValue  decimal.Decimal   `json:"assetValue"`
	Total       decimal.Decimal   `json:"total"`
}
