package services

import (
	"context"

	"assetdesk/internal/models"
	"assetdesk/internal/store"

	"github.com/shopspring/decimal"
)

// CostService 人员成本：许可证分摊 + 名下资产价值，每次调用实时计算
type CostService struct {
	store    *store.Store
	licenses *LicenseService
}

func NewCostService(st *store.Store, licenses *LicenseService) *CostService {
	return &CostService{
		store:    st,
		licenses: licenses,
	}
}

// TotalCostForPerson 人员总成本
func (s *CostService) TotalCostForPerson(ctx context.Context, personID string) (decimal.Decimal, error) {
	breakdown, err := s.Breakdown(ctx, personID)
	if err != nil {
		return decimal.Zero, err
	}
	return breakdown.Total, nil
}

// Breakdown 成本明细。人员不存在时返回 ErrNotFound
func (s *CostService) Breakdown(ctx context.Context, personID string) (*models.CostBreakdown, error) {
	var breakdown *models.CostBreakdown
	err := s.store.View(ctx, func(tx *store.Tx) error {
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}
		i := indexPerson(people, personID)
		if i < 0 {
			return ErrNotFound
		}

		licenseRows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		assets, err := listAssets(tx, people[i].OrganizationID)
		if err != nil {
			return err
		}

		held := licensesHeldBy(s.licenses.toModels(licenseRows, ""), personID)
		breakdown = computeBreakdown(personID, held, assets)
		return nil
	})
	return breakdown, err
}

// computeBreakdown held 为人员持有的许可证，assets 中只统计分配给该人员的
func computeBreakdown(personID string, held []models.License, assets []models.Asset) *models.CostBreakdown {
	breakdown := &models.CostBreakdown{
		PersonID:    personID,
		Licenses:    make([]models.LicenseCostLine, 0, len(held)),
		Assets:      make([]models.AssetCostLine, 0),
		LicenseCost: decimal.Zero,
		AssetValue:  decimal.Zero,
	}

	for i := range held {
		share := ComputeCostShare(&held[i], personID)
		breakdown.Licenses = append(breakdown.Licenses, models.LicenseCostLine{
			LicenseID:   held[i].ID,
			LicenseName: held[i].Name,
			CostShare:   share,
		})
		breakdown.LicenseCost = breakdown.LicenseCost.Add(share)
	}

	for _, a := range assets {
		if a.AssignedTo != personID {
			continue
		}
		breakdown.Assets = append(breakdown.Assets, models.AssetCostLine{
			AssetID:   a.ID,
			AssetName: a.Name,
			Value:     a.Value,
		})
		breakdown.AssetValue = breakdown.AssetValue.Add(a.Value)
	}

	breakdown.Total = breakdown.LicenseCost.Add(breakdown.AssetValue)
	return breakdown
}
