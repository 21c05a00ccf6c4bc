package services

import (
	"context"
	"strings"
	"time"

	"assetdesk/internal/models"
	"assetdesk/internal/store"
	"assetdesk/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PersonService 人员登记
type PersonService struct {
	store    *store.Store
	licenses *LicenseService
}

func NewPersonService(st *store.Store, licenses *LicenseService) *PersonService {
	return &PersonService{
		store:    st,
		licenses: licenses,
	}
}

// List 组织下的人员，关联团队名称，按姓名排序
func (s *PersonService) List(ctx context.Context, organizationID string) ([]models.Person, error) {
	var people []models.Person
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		people, err = listPeople(tx, organizationID)
		return err
	})
	return people, err
}

func listPeople(tx *store.Tx, organizationID string) ([]models.Person, error) {
	rows, err := loadPeople(tx)
	if err != nil {
		return nil, err
	}
	teams, err := loadTeams(tx)
	if err != nil {
		return nil, err
	}

	names := teamNames(teams)
	people := make([]models.Person, 0, len(rows))
	for i := range rows {
		if rows[i].OrganizationID != organizationID {
			continue
		}
		people = append(people, rows[i].toModel(names[deref(rows[i].TeamID)]))
	}
	sortByName(people, func(p *models.Person) string { return p.Name })
	return people, nil
}

// Search 按姓名、邮箱、团队名做不区分大小写的子串匹配
func (s *PersonService) Search(ctx context.Context, organizationID, term string) ([]models.Person, error) {
	people, err := s.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return people, nil
	}

	matched := make([]models.Person, 0, len(people))
	for _, p := range people {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Email), term) ||
			strings.Contains(strings.ToLower(p.TeamName), term) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// GetByID 根据ID获取人员
func (s *PersonService) GetByID(ctx context.Context, id string) (*models.Person, error) {
	var person *models.Person
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadPeople(tx)
		if err != nil {
			return err
		}
		i := indexPerson(rows, id)
		if i < 0 {
			return ErrNotFound
		}
		teams, err := loadTeams(tx)
		if err != nil {
			return err
		}
		p := rows[i].toModel(teamNames(teams)[deref(rows[i].TeamID)])
		person = &p
		return nil
	})
	return person, err
}

// Create 创建人员，姓名、邮箱、职位去除空白后不能为空
func (s *PersonService) Create(ctx context.Context, req models.CreatePersonRequest) (*models.Person, error) {
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	email, err := requireText("email", req.Email)
	if err != nil {
		return nil, err
	}
	position, err := requireText("position", req.Position)
	if err != nil {
		return nil, err
	}
	req.Name, req.Email, req.Position = name, email, position
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now()
	entryDate := req.EntryDate
	if entryDate.IsZero() {
		entryDate = models.NewDate(now)
	}

	row := personRow{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		OrganizationID: req.OrganizationID,
		TeamID:         nullable(req.TeamID),
		Position:       position,
		Status:         models.PersonStatusActive,
		EntryDate:      entryDate,
		ManagerID:      nullable(req.ManagerID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var teamName string
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if err := requireOrganization(tx, req.OrganizationID); err != nil {
			return err
		}
		rows, err := loadPeople(tx)
		if err != nil {
			return err
		}
		if req.ManagerID != "" {
			if _, err := requirePerson(rows, "managerId", req.ManagerID, req.OrganizationID); err != nil {
				return err
			}
		}
		if req.TeamID != "" {
			teams, err := loadTeams(tx)
			if err != nil {
				return err
			}
			team, err := requireTeam(teams, "teamId", req.TeamID, req.OrganizationID)
			if err != nil {
				return err
			}
			teamName = team.Name
		}
		return store.WriteRows(tx, store.CollectionPeople, append(rows, row))
	})
	if err != nil {
		return nil, err
	}

	person := row.toModel(teamName)
	return &person, nil
}

// Update 部分更新；目标不存在时静默返回。不会改动派生字段
func (s *PersonService) Update(ctx context.Context, id string, req models.UpdatePersonRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := trimOptional("name", &req.Name); err != nil {
		return err
	}
	if err := trimOptional("email", &req.Email); err != nil {
		return err
	}
	if err := trimOptional("position", &req.Position); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadPeople(tx)
		if err != nil {
			return err
		}
		i := indexPerson(rows, id)
		if i < 0 {
			logMissing("person", id, "update")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}

		row := &rows[i]
		if req.Name != nil {
			row.Name = *req.Name
		}
		if req.Email != nil {
			row.Email = *req.Email
		}
		if req.Position != nil {
			row.Position = *req.Position
		}
		if req.Status != nil {
			row.Status = *req.Status
		}
		if req.TeamID != nil {
			if *req.TeamID != "" {
				teams, err := loadTeams(tx)
				if err != nil {
					return err
				}
				if _, err := requireTeam(teams, "teamId", *req.TeamID, row.OrganizationID); err != nil {
					return err
				}
			}
			row.TeamID = nullable(*req.TeamID)
		}
		if req.ManagerID != nil {
			if *req.ManagerID == id {
				return newValidationError("managerId", "person cannot manage themselves")
			}
			if *req.ManagerID != "" {
				if _, err := requirePerson(rows, "managerId", *req.ManagerID, row.OrganizationID); err != nil {
					return err
				}
			}
			row.ManagerID = nullable(*req.ManagerID)
		}
		if req.EntryDate != nil {
			row.EntryDate = *req.EntryDate
		}
		if req.ExitDate != nil {
			row.ExitDate = *req.ExitDate
		}
		row.UpdatedAt = time.Now()

		return store.WriteRows(tx, store.CollectionPeople, rows)
	})
}

// Delete 删除人员，并在同一事务中清理所有反向引用：
// 许可证席位、资产分配、下属和团队的负责人
func (s *PersonService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}
		i := indexPerson(people, id)
		if i < 0 {
			logMissing("person", id, "delete")
			return nil
		}
		if outOfScope(ctx, people[i].OrganizationID) {
			return ErrNotFound
		}
		people = append(people[:i], people[i+1:]...)

		var subordinates int
		for j := range people {
			if deref(people[j].ManagerID) == id {
				people[j].ManagerID = nil
				subordinates++
			}
		}

		licenses, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		var seats int
		for j := range licenses {
			if releaseSeat(&licenses[j], id) {
				seats++
			}
		}

		assets, err := loadAssets(tx)
		if err != nil {
			return err
		}
		var released int
		for j := range assets {
			if deref(assets[j].AssignedTo) == id {
				assets[j].AssignedTo = nil
				if assets[j].Status == models.AssetStatusAllocated {
					assets[j].Status = models.AssetStatusAvailable
				}
				released++
			}
		}

		teams, err := loadTeams(tx)
		if err != nil {
			return err
		}
		for j := range teams {
			if deref(teams[j].ManagerID) == id {
				teams[j].ManagerID = nil
			}
		}

		for _, write := range []func() error{
			func() error { return store.WriteRows(tx, store.CollectionPeople, people) },
			func() error { return store.WriteRows(tx, store.CollectionLicenses, licenses) },
			func() error { return store.WriteRows(tx, store.CollectionAssets, assets) },
			func() error { return store.WriteRows(tx, store.CollectionTeams, teams) },
		} {
			if err := write(); err != nil {
				return err
			}
		}

		logger.GetLogger().WithFields(logrus.Fields{
			"person_id":    id,
			"seats":        seats,
			"assets":       released,
			"subordinates": subordinates,
		}).Info("person deleted with references cleaned")
		return nil
	})
}

// FindManager 上级，没有时返回 nil
func (s *PersonService) FindManager(ctx context.Context, person *models.Person) (*models.Person, error) {
	if person.ManagerID == "" {
		return nil, nil
	}
	people, err := s.List(ctx, person.OrganizationID)
	if err != nil {
		return nil, err
	}
	return findManager(people, person), nil
}

// FindSubordinates 直接下属
func (s *PersonService) FindSubordinates(ctx context.Context, person *models.Person) ([]models.Person, error) {
	people, err := s.List(ctx, person.OrganizationID)
	if err != nil {
		return nil, err
	}
	return findSubordinates(people, person), nil
}

func findManager(people []models.Person, person *models.Person) *models.Person {
	if person.ManagerID == "" {
		return nil
	}
	for i := range people {
		if people[i].ID == person.ManagerID {
			manager := people[i]
			return &manager
		}
	}
	return nil
}

func findSubordinates(people []models.Person, person *models.Person) []models.Person {
	subordinates := make([]models.Person, 0)
	for _, p := range people {
		if p.ManagerID == person.ID {
			subordinates = append(subordinates, p)
		}
	}
	return subordinates
}

// GetDetail 人员详情：上下级、持有的许可证和资产以及成本
func (s *PersonService) GetDetail(ctx context.Context, id string) (*models.PersonDetail, error) {
	var detail *models.PersonDetail
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadPeople(tx)
		if err != nil {
			return err
		}
		i := indexPerson(rows, id)
		if i < 0 {
			return ErrNotFound
		}
		orgID := rows[i].OrganizationID

		people, err := listPeople(tx, orgID)
		if err != nil {
			return err
		}
		licenseRows, err := loadLicenses(tx)
		if err != nil {
			return err
		}
		assets, err := listAssets(tx, orgID)
		if err != nil {
			return err
		}

		var person models.Person
		for _, p := range people {
			if p.ID == id {
				person = p
			}
		}

		held := licensesHeldBy(s.licenses.toModels(licenseRows, ""), id)
		breakdown := computeBreakdown(id, held, assets)

		personLicenses := make([]models.PersonLicense, 0, len(held))
		for j := range held {
			personLicenses = append(personLicenses, models.PersonLicense{
				License:   held[j],
				CostShare: ComputeCostShare(&held[j], id),
			})
		}
		owned := make([]models.Asset, 0)
		for _, a := range assets {
			if a.AssignedTo == id {
				owned = append(owned, a)
			}
		}

		detail = &models.PersonDetail{
			Person:       person,
			Manager:      findManager(people, &person),
			Subordinates: findSubordinates(people, &person),
			Licenses:     personLicenses,
			Assets:       owned,
			LicenseCost:  breakdown.LicenseCost,
			AssetValue:   breakdown.AssetValue,
			TotalCost:    breakdown.Total,
		}
		return nil
	})
	return detail, err
}
