package services

import (
	"context"

	"assetdesk/internal/models"
	"assetdesk/internal/store"
)

// DashboardService 首页统计
type DashboardService struct {
	store    *store.Store
	licenses *LicenseService
}

func NewDashboardService(st *store.Store, licenses *LicenseService) *DashboardService {
	return &DashboardService{
		store:    st,
		licenses: licenses,
	}
}

// Stats 统计组织的人员、团队、许可证和资产，一次读取完成
func (s *DashboardService) Stats(ctx context.Context, organizationID string) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	err := s.store.View(ctx, func(tx *store.Tx) error {
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}
		for i := range people {
			if people[i].OrganizationID != organizationID {
				continue
			}
			stats.TotalPeople++
			if people[i].Status == models.PersonStatusActive {
				stats.ActivePeople++
			}
		}

		teams, err := loadTeams(tx)
		if err != nil {
			return err
		}
		for i := range teams {
			if teams[i].OrganizationID == organizationID {
				stats.TotalTeams++
			}
		}

		licenses, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		for _, l := range s.licenses.toModels(licenses, organizationID) {
			stats.TotalLicenses++
			switch l.Status {
			case models.LicenseStatusExpiringSoon:
				stats.ExpiringLicenses++
			case models.LicenseStatusExpired:
				stats.ExpiredLicenses++
			}
		}

		assets, err := loadAssets(tx)
		if err != nil {
			return err
		}
		for i := range assets {
			if assets[i].OrganizationID != organizationID {
				continue
			}
			stats.TotalAssets++
			if assets[i].Status == models.AssetStatusAvailable {
				stats.AvailableAssets++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
