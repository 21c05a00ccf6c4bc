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

// AssetService 资产登记
type AssetService struct {
	store *store.Store
}

func NewAssetService(st *store.Store) *AssetService {
	return &AssetService{store: st}
}

// listAssets 组织下的资产，关联持有人姓名，按名称排序
func listAssets(tx *store.Tx, organizationID string) ([]models.Asset, error) {
	rows, err := loadAssets(tx)
	if err != nil {
		return nil, err
	}
	people, err := loadPeople(tx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}

	assets := make([]models.Asset, 0, len(rows))
	for i := range rows {
		if rows[i].OrganizationID != organizationID {
			continue
		}
		assets = append(assets, rows[i].toModel(names[deref(rows[i].AssignedTo)]))
	}
	sortByName(assets, func(a *models.Asset) string { return a.Name })
	return assets, nil
}

// List 组织下全部资产
func (s *AssetService) List(ctx context.Context, organizationID string) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		assets, err = listAssets(tx, organizationID)
		return err
	})
	return assets, err
}

// ListFiltered 列表并按条件过滤
func (s *AssetService) ListFiltered(ctx context.Context, organizationID string, filter models.AssetFilter) ([]models.Asset, error) {
	assets, err := s.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return FilterAssets(assets, filter), nil
}

// FilterAssets 按状态、类型过滤，Search 对名称和序列号做不区分大小写的子串匹配
func FilterAssets(assets []models.Asset, filter models.AssetFilter) []models.Asset {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(a.Name), term) &&
			!strings.Contains(strings.ToLower(a.SerialNumber), term) {
			continue
		}
		result = append(result, a)
	}
	return result
}

// GetByID 根据ID获取资产
func (s *AssetService) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset *models.Asset
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadAssets(tx)
		if err != nil {
			return err
		}
		i := indexAsset(rows, id)
		if i < 0 {
			return ErrNotFound
		}
		var holder string
		if rows[i].AssignedTo != nil {
			people, err := loadPeople(tx)
			if err != nil {
				return err
			}
			if j := indexPerson(people, *rows[i].AssignedTo); j >= 0 {
				holder = people[j].Name
			}
		}
		a := rows[i].toModel(holder)
		asset = &a
		return nil
	})
	return asset, err
}

// Create 创建资产
func (s *AssetService) Create(ctx context.Context, req models.CreateAssetRequest) (*models.Asset, error) {
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	serial, err := requireText("serialNumber", req.SerialNumber)
	if err != nil {
		return nil, err
	}
	req.Name, req.SerialNumber = name, serial
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := requireNonNegative("value", req.Value); err != nil {
		return nil, err
	}

	now := time.Now()
	purchaseDate := req.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = models.NewDate(now)
	}
	row := assetRow{
		ID:             uuid.NewString(),
		Name:           name,
		OrganizationID: req.OrganizationID,
		Type:           req.Type,
		SerialNumber:   serial,
		Value:          req.Value,
		PurchaseDate:   purchaseDate,
		Condition:      req.Condition,
		Status:         req.Status,
		AssignedTo:     nullable(req.AssignedTo),
		Notes:          nullable(strings.TrimSpace(req.Notes)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var holder string
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if err := requireOrganization(tx, req.OrganizationID); err != nil {
			return err
		}
		if req.AssignedTo != "" {
			people, err := loadPeople(tx)
			if err != nil {
				return err
			}
			person, err := requirePerson(people, "assignedTo", req.AssignedTo, req.OrganizationID)
			if err != nil {
				return err
			}
			holder = person.Name
		}
		rows, err := loadAssets(tx)
		if err != nil {
			return err
		}
		return store.WriteRows(tx, store.CollectionAssets, append(rows, row))
	})
	if err != nil {
		return nil, err
	}

	asset := row.toModel(holder)
	return &asset, nil
}

// Update 部分更新；目标不存在时静默返回。AssignedTo 与 Status 各自独立修改
func (s *AssetService) Update(ctx context.Context, id string, req models.UpdateAssetRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := trimOptional("name", &req.Name); err != nil {
		return err
	}
	if err := trimOptional("serialNumber", &req.SerialNumber); err != nil {
		return err
	}
	if req.Value != nil {
		if err := requireNonNegative("value", *req.Value); err != nil {
			return err
		}
	}

	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadAssets(tx)
		if err != nil {
			return err
		}
		i := indexAsset(rows, id)
		if i < 0 {
			logMissing("asset", id, "update")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}

		row := &rows[i]
		if req.Name != nil {
			row.Name = *req.Name
		}
		if req.Type != nil {
			row.Type = *req.Type
		}
		if req.SerialNumber != nil {
			row.SerialNumber = *req.SerialNumber
		}
		if req.Value != nil {
			row.Value = *req.Value
		}
		if req.PurchaseDate != nil {
			row.PurchaseDate = *req.PurchaseDate
		}
		if req.Condition != nil {
			row.Condition = *req.Condition
		}
		if req.Status != nil {
			row.Status = *req.Status
		}
		if req.AssignedTo != nil {
			if *req.AssignedTo != "" {
				people, err := loadPeople(tx)
				if err != nil {
					return err
				}
				if _, err := requirePerson(people, "assignedTo", *req.AssignedTo, row.OrganizationID); err != nil {
					return err
				}
			}
			row.AssignedTo = nullable(*req.AssignedTo)
		}
		if req.Notes != nil {
			row.Notes = nullable(strings.TrimSpace(*req.Notes))
		}
		row.UpdatedAt = time.Now()

		return store.WriteRows(tx, store.CollectionAssets, rows)
	})
}

// Delete 删除资产
func (s *AssetService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadAssets(tx)
		if err != nil {
			return err
		}
		i := indexAsset(rows, id)
		if i < 0 {
			logMissing("asset", id, "delete")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}
		rows = append(rows[:i], rows[i+1:]...)
		return store.WriteRows(tx, store.CollectionAssets, rows)
	})
}

// Assign 分配给人员，同时将状态置为 allocated。已报废资产不可分配
func (s *AssetService) Assign(ctx context.Context, assetID, personID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadAssets(tx)
		if err != nil {
			return err
		}
		i := indexAsset(rows, assetID)
		if i < 0 {
			logMissing("asset", assetID, "assign")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}
		row := &rows[i]
		if row.Status == models.AssetStatusRetired {
			return newValidationError("status", "retired asset cannot be assigned")
		}

		people, err := loadPeople(tx)
		if err != nil {
			return err
		}
		person, err := requirePerson(people, "personId", personID, row.OrganizationID)
		if err != nil {
			return err
		}

		previous := deref(row.AssignedTo)
		row.AssignedTo = &person.ID
		row.Status = models.AssetStatusAllocated
		row.UpdatedAt = time.Now()

		logger.GetLogger().WithFields(logrus.Fields{
			"asset_id": assetID,
			"person":   personID,
			"previous": previous,
		}).Info("asset assigned")
		return store.WriteRows(tx, store.CollectionAssets, rows)
	})
}

// Unassign 收回资产，状态回到 available
func (s *AssetService) Unassign(ctx context.Context, assetID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadAssets(tx)
		if err != nil {
			return err
		}
		i := indexAsset(rows, assetID)
		if i < 0 {
			logMissing("asset", assetID, "unassign")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}
		row := &rows[i]
		if row.AssignedTo == nil && row.Status != models.AssetStatusAllocated {
			return nil
		}
		row.AssignedTo = nil
		if row.Status == models.AssetStatusAllocated {
			row.Status = models.AssetStatusAvailable
		}
		row.UpdatedAt = time.Now()
		return store.WriteRows(tx, store.CollectionAssets, rows)
	})
}

// InventorySummary 可用资产按类型统计及其总价值
func (s *AssetService) InventorySummary(ctx context.Context, organizationID string) (*models.InventorySummary, error) {
	assets, err := s.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	summary := &models.InventorySummary{TotalValue: decimal.Zero}
	for _, a := range FilterAssets(assets, models.AssetFilter{Status: models.AssetStatusAvailable}) {
		summary.Available++
		switch a.Type {
		case models.AssetTypeNotebook:
			summary.Notebooks++
		case models.AssetTypeMonitor:
			summary.Monitors++
		case models.AssetTypeAdapter:
			summary.Adapters++
		default:
			summary.Others++
		}
		summary.TotalValue = summary.TotalValue.Add(a.Value)
	}
	return summary, nil
}
