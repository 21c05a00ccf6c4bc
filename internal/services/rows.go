package services

import (
	"time"

	"assetdesk/internal/models"
	"assetdesk/internal/store"

	"github.com/shopspring/decimal"
)

// 以下为落库的行结构，字段名使用下划线风格。派生字段（人数、已用席位、团队名等）不落库

type organizationRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type teamRow struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	OrganizationID string    `json:"organization_id"`
	ManagerID      *string   `json:"manager_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type personRow struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	OrganizationID string      `json:"organization_id"`
	TeamID         *string     `json:"team_id"`
	Position       string      `json:"position"`
	Status         string      `json:"status"`
	EntryDate      models.Date `json:"entry_date"`
	ExitDate       models.Date `json:"exit_date"`
	ManagerID      *string     `json:"manager_id"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type licenseRow struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    *string          `json:"description"`
	OrganizationID string           `json:"organization_id"`
	Vendor         *string          `json:"vendor"`
	Cost           *decimal.Decimal `json:"cost"`
	TotalQuantity  int              `json:"total_quantity"`
	ExpirationDate models.Date      `json:"expiration_date"`
	Status         *string          `json:"status"` // 仅在显式指定时存在
	AssignedTo     []string         `json:"assigned_to"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type assetRow struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	OrganizationID string          `json:"organization_id"`
	Type           string          `json:"type"`
	SerialNumber   string          `json:"serial_number"`
	Value          decimal.Decimal `json:"value"`
	PurchaseDate   models.Date     `json:"purchase_date"`
	Condition      string          `json:"condition"`
	Status         string          `json:"status"`
	AssignedTo     *string         `json:"assigned_to"`
	Notes          *string         `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ========== 行 <-> 领域模型 ==========

func (r *organizationRow) toModel() models.Organization {
	return models.Organization{
		ID:          r.ID,
		Name:        r.Name,
		Description: deref(r.Description),
		CreatedAt:   r.CreatedAt,
	}
}

func (r *teamRow) toModel(peopleCount int) models.Team {
	return models.Team{
		ID:             r.ID,
		Name:           r.Name,
		Description:    deref(r.Description),
		OrganizationID: r.OrganizationID,
		ManagerID:      deref(r.ManagerID),
		PeopleCount:    peopleCount,
		CreatedAt:      r.CreatedAt,
	}
}

func (r *personRow) toModel(teamName string) models.Person {
	return models.Person{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		OrganizationID: r.OrganizationID,
		TeamID:         deref(r.TeamID),
		TeamName:       teamName,
		Position:       r.Position,
		Status:         r.Status,
		EntryDate:      r.EntryDate,
		ExitDate:       r.ExitDate,
		ManagerID:      deref(r.ManagerID),
		CreatedAt:      r.CreatedAt,
	}
}

func (r *assetRow) toModel(assignedToName string) models.Asset {
	return models.Asset{
		ID:             r.ID,
		Name:           r.Name,
		OrganizationID: r.OrganizationID,
		Type:           r.Type,
		SerialNumber:   r.SerialNumber,
		Value:          r.Value,
		PurchaseDate:   r.PurchaseDate,
		Condition:      r.Condition,
		Status:         r.Status,
		AssignedTo:     deref(r.AssignedTo),
		AssignedToName: assignedToName,
		Notes:          deref(r.Notes),
		CreatedAt:      r.CreatedAt,
	}
}

// toModel 已用席位始终由 AssignedTo 的长度得出
func (r *licenseRow) toModel(now time.Time, windowDays int) models.License {
	assigned := make([]string, len(r.AssignedTo))
	copy(assigned, r.AssignedTo)

	status := DeriveLicenseStatus(r.ExpirationDate, now, windowDays)
	if r.Status != nil && *r.Status != "" {
		status = *r.Status
	}

	return models.License{
		ID:                r.ID,
		Name:              r.Name,
		Description:       deref(r.Description),
		OrganizationID:    r.OrganizationID,
		Vendor:            deref(r.Vendor),
		Cost:              r.Cost,
		TotalQuantity:     r.TotalQuantity,
		UsedQuantity:      len(assigned),
		AvailableQuantity: r.TotalQuantity - len(assigned),
		ExpirationDate:    r.ExpirationDate,
		Status:            status,
		AssignedTo:        assigned,
		CreatedAt:         r.CreatedAt,
	}
}

// ========== 集合读写 ==========

func loadOrganizations(tx *store.Tx) ([]organizationRow, error) {
	return store.ReadRows[organizationRow](tx, store.CollectionOrganizations)
}

func loadTeams(tx *store.Tx) ([]teamRow, error) {
	return store.ReadRows[teamRow](tx, store.CollectionTeams)
}

func loadPeople(tx *store.Tx) ([]personRow, error) {
	return store.ReadRows[personRow](tx, store.CollectionPeople)
}

func loadLicenses(tx *store.Tx) ([]licenseRow, error) {
	return store.ReadRows[licenseRow](tx, store.CollectionLicenses)
}

func loadAssets(tx *store.Tx) ([]assetRow, error) {
	return store.ReadRows[assetRow](tx, store.CollectionAssets)
}

// requireOrganization 组织必须存在，存储层不做外键约束
func requireOrganization(tx *store.Tx, organizationID string) error {
	if organizationID == "" {
		return newValidationError("organizationId", "is required")
	}
	orgs, err := loadOrganizations(tx)
	if err != nil {
		return err
	}
	for i := range orgs {
		if orgs[i].ID == organizationID {
			return nil
		}
	}
	return newValidationError("organizationId", "organization does not exist")
}

// requirePerson 被引用的人员必须存在且属于同一组织
func requirePerson(people []personRow, field, personID, organizationID string) (*personRow, error) {
	i := indexPerson(people, personID)
	if i < 0 {
		return nil, newValidationError(field, "person does not exist")
	}
	if people[i].OrganizationID != organizationID {
		return nil, newValidationError(field, "person belongs to another organization")
	}
	return &people[i], nil
}

// requireTeam 被引用的团队必须存在且属于同一组织
func requireTeam(teams []teamRow, field, teamID, organizationID string) (*teamRow, error) {
	i := indexTeam(teams, teamID)
	if i < 0 {
		return nil, newValidationError(field, "team does not exist")
	}
	if teams[i].OrganizationID != organizationID {
		return nil, newValidationError(field, "team belongs to another organization")
	}
	return &teams[i], nil
}

func indexPerson(people []personRow, id string) int {
	for i := range people {
		if people[i].ID == id {
			return i
		}
	}
	return -1
}

func indexTeam(teams []teamRow, id string) int {
	for i := range teams {
		if teams[i].ID == id {
			return i
		}
	}
	return -1
}

func indexLicense(licenses []licenseRow, id string) int {
	for i := range licenses {
		if licenses[i].ID == id {
			return i
		}
	}
	return -1
}

func indexAsset(assets []assetRow, id string) int {
	for i := range assets {
		if assets[i].ID == id {
			return i
		}
	}
	return -1
}

// teamNames 团队 ID -> 名称
func teamNames(teams []teamRow) map[string]string {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
