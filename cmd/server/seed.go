package main

import (
	"context"
	"fmt"

	"assetdesk/internal/services"
	"assetdesk/internal/store"
	"assetdesk/pkg/config"
	"assetdesk/pkg/logger"
)

// seedData 初始化种子数据：空存储写入默认组织和团队，配置了 fixture 时导入示例数据
func seedData(ctx context.Context, cfg *config.Config, st *store.Store) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	organizations := services.NewOrganizationService(st)
	seeded, err := organizations.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("初始化默认组织失败: %w", err)
	}

	// fixture 只在首次初始化时导入，避免重复数据
	if seeded && cfg.Seed.FixturePath != "" {
		if err := importFixture(ctx, cfg, st, organizations); err != nil {
			return err
		}
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

func importFixture(ctx context.Context, cfg *config.Config, st *store.Store, organizations *services.OrganizationService) error {
	orgs, err := organizations.List(ctx)
	if err != nil {
		return fmt.Errorf("查询组织失败: %w", err)
	}
	if len(orgs) == 0 {
		return fmt.Errorf("没有可导入的组织")
	}

	licenses := services.NewLicenseService(st, cfg.License.ExpiringWindowDays)
	people := services.NewPersonService(st, licenses)
	fixtures := services.NewFixtureService(services.NewTeamService(st), people, licenses, services.NewAssetService(st))

	result, err := fixtures.ImportFile(ctx, orgs[0].ID, cfg.Seed.FixturePath)
	if err != nil {
		return fmt.Errorf("导入 fixture 失败: %w", err)
	}
	logger.GetLogger().Infof("Fixture imported into %s: %+v", orgs[0].Name, *result)
	return nil
}
