package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"assetdesk/internal/models"
	"assetdesk/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// LicenseExpiryMonitor 许可证到期巡检调度器
type LicenseExpiryMonitor struct {
	cron          *cron.Cron
	schedule      string
	organizations *OrganizationService
	licenses      *LicenseService
	reports       map[string]*models.ExpiryReport // orgID -> 最近一次巡检结果
	mu            sync.RWMutex
	running       bool
}

// NewLicenseExpiryMonitor 创建巡检调度器，schedule 为标准 5 段 cron 表达式
func NewLicenseExpiryMonitor(schedule string, organizations *OrganizationService, licenses *LicenseService) *LicenseExpiryMonitor {
	return &LicenseExpiryMonitor{
		cron:          cron.New(),
		schedule:      schedule,
		organizations: organizations,
		licenses:      licenses,
		reports:       make(map[string]*models.ExpiryReport),
	}
}

// Start 启动调度器
func (m *LicenseExpiryMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	log := logger.GetLogger()
	log.Info("启动许可证到期巡检调度器")

	if _, err := m.cron.AddFunc(m.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := m.RunOnce(ctx); err != nil {
			log.WithError(err).Error("许可证到期巡检失败")
		}
	}); err != nil {
		return fmt.Errorf("注册巡检任务失败: %w", err)
	}

	m.cron.Start()
	m.running = true

	log.Infof("许可证到期巡检调度器启动成功，计划: %s", m.schedule)
	return nil
}

// Stop 停止调度器，等待正在执行的巡检结束
func (m *LicenseExpiryMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	logger.GetLogger().Info("停止许可证到期巡检调度器")
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// RunOnce 同步巡检所有组织
func (m *LicenseExpiryMonitor) RunOnce(ctx context.Context) error {
	log := logger.GetLogger()

	orgs, err := m.organizations.List(ctx)
	if err != nil {
		return fmt.Errorf("查询组织失败: %w", err)
	}

	reports := make(map[string]*models.ExpiryReport, len(orgs))
	for _, org := range orgs {
		report, err := m.licenses.ExpiryReport(ctx, org.ID)
		if err != nil {
			return fmt.Errorf("巡检组织 %s 失败: %w", org.ID, err)
		}
		reports[org.ID] = report

		for _, l := range report.ExpiringSoon {
			log.WithFields(logrus.Fields{
				"organization_id": org.ID,
				"license_id":      l.ID,
				"expiration_date": l.ExpirationDate.String(),
			}).Warnf("许可证即将过期: %s", l.Name)
		}
		for _, l := range report.Expired {
			log.WithFields(logrus.Fields{
				"organization_id": org.ID,
				"license_id":      l.ID,
				"expiration_date": l.ExpirationDate.String(),
			}).Warnf("许可证已过期: %s", l.Name)
		}
	}

	m.mu.Lock()
	m.reports = reports
	m.mu.Unlock()

	log.Infof("许可证到期巡检完成，共 %d 个组织", len(orgs))
	return nil
}

// LatestReport 最近一次巡检结果，尚未巡检时返回 false
func (m *LicenseExpiryMonitor) LatestReport(organizationID string) (*models.ExpiryReport, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report, ok := m.reports[organizationID]
	return report, ok
}
