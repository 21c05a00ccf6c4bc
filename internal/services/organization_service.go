package services

import (
	"context"
	"strings"
	"time"

	"assetdesk/internal/models"
	"assetdesk/internal/store"
	"assetdesk/pkg/logger"

	"github.com/google/uuid"
)

// OrganizationService 组织管理，仅用于初始化和组织范围划分
type OrganizationService struct {
	store *store.Store
}

func NewOrganizationService(st *store.Store) *OrganizationService {
	return &OrganizationService{store: st}
}

// List 全部组织，按名称排序
func (s *OrganizationService) List(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadOrganizations(tx)
		if err != nil {
			return err
		}
		orgs = make([]models.Organization, 0, len(rows))
		for i := range rows {
			orgs = append(orgs, rows[i].toModel())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByName(orgs, func(o *models.Organization) string { return o.Name })
	return orgs, nil
}

// GetByID 根据ID获取组织
func (s *OrganizationService) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	var org *models.Organization
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadOrganizations(tx)
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].ID == id {
				o := rows[i].toModel()
				org = &o
				return nil
			}
		}
		return ErrNotFound
	})
	return org, err
}

// Create 创建组织
func (s *OrganizationService) Create(ctx context.Context, req models.CreateOrganizationRequest) (*models.Organization, error) {
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	req.Name = name
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now()
	row := organizationRow{
		ID:          uuid.NewString(),
		Name:        name,
		Description: nullable(strings.TrimSpace(req.Description)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadOrganizations(tx)
		if err != nil {
			return err
		}
		return store.WriteRows(tx, store.CollectionOrganizations, append(rows, row))
	})
	if err != nil {
		return nil, err
	}

	org := row.toModel()
	return &org, nil
}

// SeedDefaults blob 不存在时写入一个默认组织、一个默认团队，其余集合置空。
// 返回是否执行了初始化
func (s *OrganizationService) SeedDefaults(ctx context.Context) (bool, error) {
	var seeded bool
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if tx.Exists() {
			return nil
		}

		now := time.Now()
		org := organizationRow{
			ID:          uuid.NewString(),
			Name:        models.DefaultOrganizationName,
			Description: nullable(models.DefaultOrganizationDescription),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		team := teamRow{
			ID:             uuid.NewString(),
			Name:           models.DefaultTeamName,
			Description:    nullable(models.DefaultTeamDescription),
			OrganizationID: org.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		for _, name := range store.Collections {
			if err := tx.Write(name, nil); err != nil {
				return err
			}
		}
		if err := store.WriteRows(tx, store.CollectionOrganizations, []organizationRow{org}); err != nil {
			return err
		}
		if err := store.WriteRows(tx, store.CollectionTeams, []teamRow{team}); err != nil {
			return err
		}

		seeded = true
		logger.GetLogger().Infof("已初始化默认组织: %s (%s)", org.Name, org.ID)
		return nil
	})
	return seeded, err
}
