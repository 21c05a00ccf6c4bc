package services

import (
	"context"
	"strings"
	"time"

	"assetdesk/internal/models"
	"assetdesk/internal/store"
	"assetdesk/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Clock 当前时间来源，测试中可替换
type Clock func() time.Time

// LicenseService 许可证台账：席位分配、容量约束、成本分摊
type LicenseService struct {
	store      *store.Store
	now        Clock
	windowDays int
}

// NewLicenseService 创建许可证服务，windowDays <= 0 时使用默认 30 天
func NewLicenseService(st *store.Store, windowDays int) *LicenseService {
	if windowDays <= 0 {
		windowDays = models.DefaultExpiringWindowDays
	}
	return &LicenseService{
		store:      st,
		now:        time.Now,
		windowDays: windowDays,
	}
}

// WithClock 替换时间来源
func (s *LicenseService) WithClock(clock Clock) *LicenseService {
	s.now = clock
	return s
}

// Now 当前时间
func (s *LicenseService) Now() time.Time {
	return s.now()
}

// DeriveLicenseStatus 根据到期日推导状态：已过期、窗口内即将过期、其余为有效
func DeriveLicenseStatus(expiration models.Date, now time.Time, windowDays int) string {
	today := models.NewDate(now)
	if expiration.Before(today.Time) {
		return models.LicenseStatusExpired
	}
	if !expiration.After(today.AddDays(windowDays).Time) {
		return models.LicenseStatusExpiringSoon
	}
	return models.LicenseStatusActive
}

// ComputeCostShare 许可证总成本在当前持有人之间平分。
// 分摊随席位变化而变化，非持有人返回 0
func ComputeCostShare(license *models.License, personID string) decimal.Decimal {
	if !license.IsAssigned(personID) {
		return decimal.Zero
	}
	used := license.UsedQuantity
	if used < 1 {
		used = 1
	}
	return license.TotalCost().Div(decimal.NewFromInt(int64(used)))
}

func (s *LicenseService) toModels(rows []licenseRow, organizationID string) []models.License {
	now := s.now()
	result := make([]models.License, 0, len(rows))
	for i := range rows {
		if organizationID != "" && rows[i].OrganizationID != organizationID {
			continue
		}
		result = append(result, rows[i].toModel(now, s.windowDays))
	}
	return result
}

// List 组织下的许可证，按名称排序
func (s *LicenseService) List(ctx context.Context, organizationID string) ([]models.License, error) {
	var licenses []models.License
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		licenses = s.toModels(rows, organizationID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByName(licenses, func(l *models.License) string { return l.Name })
	return licenses, nil
}

// ListForPerson 人员持有的全部许可证
func (s *LicenseService) ListForPerson(ctx context.Context, personID string) ([]models.License, error) {
	var licenses []models.License
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		licenses = licensesHeldBy(s.toModels(rows, ""), personID)
		return nil
	})
	return licenses, err
}

func licensesHeldBy(licenses []models.License, personID string) []models.License {
	held := make([]models.License, 0)
	for i := range licenses {
		if licenses[i].IsAssigned(personID) {
			held = append(held, licenses[i])
		}
	}
	return held
}

// GetByID 根据ID获取许可证
func (s *LicenseService) GetByID(ctx context.Context, id string) (*models.License, error) {
	var license *models.License
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		i := indexLicense(rows, id)
		if i < 0 {
			return ErrNotFound
		}
		m := rows[i].toModel(s.now(), s.windowDays)
		license = &m
		return nil
	})
	return license, err
}

// Create 创建许可证
func (s *LicenseService) Create(ctx context.Context, req models.CreateLicenseRequest) (*models.License, error) {
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	req.Name = name
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.ExpirationDate.IsZero() {
		return nil, newValidationError("expirationDate", "is required")
	}
	if req.Cost != nil {
		if err := requireNonNegative("cost", *req.Cost); err != nil {
			return nil, err
		}
	}

	now := s.now()
	row := licenseRow{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    nullable(strings.TrimSpace(req.Description)),
		OrganizationID: req.OrganizationID,
		Vendor:         nullable(strings.TrimSpace(req.Vendor)),
		Cost:           req.Cost,
		TotalQuantity:  req.TotalQuantity,
		ExpirationDate: req.ExpirationDate,
		Status:         nullable(req.Status),
		AssignedTo:     []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if err := requireOrganization(tx, req.OrganizationID); err != nil {
			return err
		}
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		return store.WriteRows(tx, store.CollectionLicenses, append(rows, row))
	})
	if err != nil {
		return nil, err
	}

	license := row.toModel(now, s.windowDays)
	return &license, nil
}

// Update 部分更新；目标不存在时静默返回。总席位不能低于已用席位
func (s *LicenseService) Update(ctx context.Context, id string, req models.UpdateLicenseRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if req.Name != nil {
		name, err := requireText("name", *req.Name)
		if err != nil {
			return err
		}
		req.Name = &name
	}
	if req.Cost != nil {
		if err := requireNonNegative("cost", *req.Cost); err != nil {
			return err
		}
	}
	if req.Status != nil && *req.Status != "" && !models.ValidLicenseStatus(*req.Status) {
		return newValidationError("status", "must be one of: active expiring_soon expired")
	}

	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		i := indexLicense(rows, id)
		if i < 0 {
			logMissing("license", id, "update")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}

		row := &rows[i]
		if req.TotalQuantity != nil {
			if *req.TotalQuantity < len(row.AssignedTo) {
				return capacityExceeded(id, *req.TotalQuantity)
			}
			row.TotalQuantity = *req.TotalQuantity
		}
		if req.Name != nil {
			row.Name = *req.Name
		}
		if req.Description != nil {
			row.Description = nullable(strings.TrimSpace(*req.Description))
		}
		if req.Vendor != nil {
			row.Vendor = nullable(strings.TrimSpace(*req.Vendor))
		}
		if req.Cost != nil {
			cost := *req.Cost
			row.Cost = &cost
		}
		if req.ExpirationDate != nil {
			row.ExpirationDate = *req.ExpirationDate
		}
		if req.Status != nil {
			row.Status = nullable(*req.Status)
		}
		row.UpdatedAt = s.now()

		return store.WriteRows(tx, store.CollectionLicenses, rows)
	})
}

// Delete 删除许可证。人员侧不保存许可证引用，无需级联
func (s *LicenseService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		i := indexLicense(rows, id)
		if i < 0 {
			logMissing("license", id, "delete")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}
		rows = append(rows[:i], rows[i+1:]...)
		return store.WriteRows(tx, store.CollectionLicenses, rows)
	})
}

// AssignToUser 为人员分配一个席位。已持有时不做处理；席位已满返回 ErrCapacityExceeded
func (s *LicenseService) AssignToUser(ctx context.Context, licenseID, personID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		i := indexLicense(rows, licenseID)
		if i < 0 {
			logMissing("license", licenseID, "assign")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}

		changed, err := assignSeat(&rows[i], people, personID)
		if err != nil || !changed {
			return err
		}
		rows[i].UpdatedAt = s.now()
		return store.WriteRows(tx, store.CollectionLicenses, rows)
	})
}

// UnassignFromUser 回收席位；未持有时不做处理
func (s *LicenseService) UnassignFromUser(ctx context.Context, licenseID, personID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		i := indexLicense(rows, licenseID)
		if i < 0 {
			logMissing("license", licenseID, "unassign")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}
		if !releaseSeat(&rows[i], personID) {
			return nil
		}
		rows[i].UpdatedAt = s.now()
		return store.WriteRows(tx, store.CollectionLicenses, rows)
	})
}

// Reconcile 将持有人调整为目标集合：先回收移除的席位再分配新增的，
// 这样"换人"在满席时也能成功。任一新增失败则整次调整都不生效
func (s *LicenseService) Reconcile(ctx context.Context, licenseID string, target []string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		i := indexLicense(rows, licenseID)
		if i < 0 {
			logMissing("license", licenseID, "reconcile")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}

		row := &rows[i]
		wanted := make(map[string]bool, len(target))
		for _, id := range target {
			wanted[id] = true
		}
		current := make(map[string]bool, len(row.AssignedTo))
		for _, id := range row.AssignedTo {
			current[id] = true
		}

		var removed, added int
		for _, id := range append([]string(nil), row.AssignedTo...) {
			if !wanted[id] && releaseSeat(row, id) {
				removed++
			}
		}
		for _, id := range target {
			if current[id] {
				continue
			}
			changed, err := assignSeat(row, people, id)
			if err != nil {
				return err
			}
			if changed {
				added++
			}
		}
		if removed == 0 && added == 0 {
			return nil
		}

		row.UpdatedAt = s.now()
		logger.GetLogger().WithFields(logrus.Fields{
			"license_id": licenseID,
			"removed":    removed,
			"added":      added,
		}).Info("license assignments reconciled")
		return store.WriteRows(tx, store.CollectionLicenses, rows)
	})
}

// Summary 组织的许可证汇总
func (s *LicenseService) Summary(ctx context.Context, organizationID string) (*models.LicenseSummary, error) {
	licenses, err := s.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	summary := &models.LicenseSummary{TotalCost: decimal.Zero}
	for i := range licenses {
		l := &licenses[i]
		summary.Total++
		switch l.Status {
		case models.LicenseStatusActive:
			summary.Active++
		case models.LicenseStatusExpiringSoon:
			summary.ExpiringSoon++
		case models.LicenseStatusExpired:
			summary.Expired++
		}
		summary.SeatsTotal += l.TotalQuantity
		summary.SeatsUsed += l.UsedQuantity
		summary.TotalCost = summary.TotalCost.Add(l.TotalCost())
	}
	return summary, nil
}

// ExpiryReport 组织内即将过期与已过期的许可证
func (s *LicenseService) ExpiryReport(ctx context.Context, organizationID string) (*models.ExpiryReport, error) {
	licenses, err := s.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	report := &models.ExpiryReport{
		OrganizationID: organizationID,
		GeneratedAt:    s.now(),
		ExpiringSoon:   []models.License{},
		Expired:        []models.License{},
	}
	for _, l := range licenses {
		switch l.Status {
		case models.LicenseStatusExpiringSoon:
			report.ExpiringSoon = append(report.ExpiringSoon, l)
		case models.LicenseStatusExpired:
			report.Expired = append(report.Expired, l)
		}
	}
	return report, nil
}

// assignSeat 在行上追加持有人，返回是否发生变化
func assignSeat(row *licenseRow, people []personRow, personID string) (bool, error) {
	for _, id := range row.AssignedTo {
		if id == personID {
			return false, nil
		}
	}
	if len(row.AssignedTo) >= row.TotalQuantity {
		return false, capacityExceeded(row.ID, row.TotalQuantity)
	}
	if _, err := requirePerson(people, "personId", personID, row.OrganizationID); err != nil {
		return false, err
	}
	row.AssignedTo = append(row.AssignedTo, personID)
	return true, nil
}

// releaseSeat 从行上移除持有人，返回是否发生变化
func releaseSeat(row *licenseRow, personID string) bool {
	for i, id := range row.AssignedTo {
		if id == personID {
			row.AssignedTo = append(row.AssignedTo[:i], row.AssignedTo[i+1:]...)
			return true
		}
	}
	return false
}
