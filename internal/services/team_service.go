package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"assetdesk/internal/models"
	"assetdesk/internal/store"
	"assetdesk/pkg/logger"

	"github.com/google/uuid"
)

// TeamService 团队登记
type TeamService struct {
	store *store.Store
}

func NewTeamService(st *store.Store) *TeamService {
	return &TeamService{store: st}
}

// memberCounts 团队 ID -> 在职成员数
func memberCounts(people []personRow) map[string]int {
	counts := make(map[string]int)
	for i := range people {
		if people[i].TeamID != nil && people[i].Status == models.PersonStatusActive {
			counts[*people[i].TeamID]++
		}
	}
	return counts
}

// List 组织下的团队，按创建时间倒序
func (s *TeamService) List(ctx context.Context, organizationID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadTeams(tx)
		if err != nil {
			return err
		}
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}

		counts := memberCounts(people)
		teams = make([]models.Team, 0, len(rows))
		for i := range rows {
			if rows[i].OrganizationID == organizationID {
				teams = append(teams, rows[i].toModel(counts[rows[i].ID]))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].CreatedAt.After(teams[j].CreatedAt)
	})
	return teams, nil
}

// GetByID 根据ID获取团队
func (s *TeamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	var team *models.Team
	err := s.store.View(ctx, func(tx *store.Tx) error {
		rows, err := loadTeams(tx)
		if err != nil {
			return err
		}
		i := indexTeam(rows, id)
		if i < 0 {
			return ErrNotFound
		}
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}
		t := rows[i].toModel(memberCounts(people)[id])
		team = &t
		return nil
	})
	return team, err
}

// Create 创建团队
func (s *TeamService) Create(ctx context.Context, req models.CreateTeamRequest) (*models.Team, error) {
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	req.Name = name
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now()
	row := teamRow{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    nullable(strings.TrimSpace(req.Description)),
		OrganizationID: req.OrganizationID,
		ManagerID:      nullable(req.ManagerID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if err := requireOrganization(tx, req.OrganizationID); err != nil {
			return err
		}
		if req.ManagerID != "" {
			people, err := loadPeople(tx)
			if err != nil {
				return err
			}
			if _, err := requirePerson(people, "managerId", req.ManagerID, req.OrganizationID); err != nil {
				return err
			}
		}
		rows, err := loadTeams(tx)
		if err != nil {
			return err
		}
		return store.WriteRows(tx, store.CollectionTeams, append(rows, row))
	})
	if err != nil {
		return nil, err
	}

	team := row.toModel(0)
	return &team, nil
}

// Update 部分更新；目标不存在时静默返回
func (s *TeamService) Update(ctx context.Context, id string, req models.UpdateTeamRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := trimOptional("name", &req.Name); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadTeams(tx)
		if err != nil {
			return err
		}
		i := indexTeam(rows, id)
		if i < 0 {
			logMissing("team", id, "update")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}

		row := &rows[i]
		if req.Name != nil {
			row.Name = *req.Name
		}
		if req.Description != nil {
			row.Description = nullable(strings.TrimSpace(*req.Description))
		}
		if req.ManagerID != nil {
			if *req.ManagerID != "" {
				people, err := loadPeople(tx)
				if err != nil {
					return err
				}
				if _, err := requirePerson(people, "managerId", *req.ManagerID, row.OrganizationID); err != nil {
					return err
				}
			}
			row.ManagerID = nullable(*req.ManagerID)
		}
		row.UpdatedAt = time.Now()

		return store.WriteRows(tx, store.CollectionTeams, rows)
	})
}

// Delete 删除团队，同一事务内先清空成员的 team_id
func (s *TeamService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		rows, err := loadTeams(tx)
		if err != nil {
			return err
		}
		i := indexTeam(rows, id)
		if i < 0 {
			logMissing("team", id, "delete")
			return nil
		}
		if outOfScope(ctx, rows[i].OrganizationID) {
			return ErrNotFound
		}

		people, err := loadPeople(tx)
		if err != nil {
			return err
		}
		var detached int
		for j := range people {
			if deref(people[j].TeamID) == id {
				people[j].TeamID = nil
				detached++
			}
		}
		if detached > 0 {
			if err := store.WriteRows(tx, store.CollectionPeople, people); err != nil {
				return err
			}
		}

		rows = append(rows[:i], rows[i+1:]...)
		if err := store.WriteRows(tx, store.CollectionTeams, rows); err != nil {
			return err
		}

		logger.GetLogger().Infof("团队已删除: %s, 解除成员 %d 人", id, detached)
		return nil
	})
}

// AddPersonToTeam 直接修改人员的 team_id，不校验团队是否存在
func (s *TeamService) AddPersonToTeam(ctx context.Context, teamID, personID string) error {
	return s.setPersonTeam(ctx, personID, nullable(teamID), "add_to_team")
}

// RemovePersonFromTeam 清空人员的 team_id
func (s *TeamService) RemovePersonFromTeam(ctx context.Context, personID string) error {
	return s.setPersonTeam(ctx, personID, nil, "remove_from_team")
}

func (s *TeamService) setPersonTeam(ctx context.Context, personID string, teamID *string, operation string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}
		i := indexPerson(people, personID)
		if i < 0 {
			logMissing("person", personID, operation)
			return nil
		}
		if outOfScope(ctx, people[i].OrganizationID) {
			return ErrNotFound
		}
		people[i].TeamID = teamID
		people[i].UpdatedAt = time.Now()
		return store.WriteRows(tx, store.CollectionPeople, people)
	})
}

// ListMembers 团队内在职成员，按姓名排序
func (s *TeamService) ListMembers(ctx context.Context, teamID string) ([]models.Person, error) {
	var members []models.Person
	err := s.store.View(ctx, func(tx *store.Tx) error {
		teams, err := loadTeams(tx)
		if err != nil {
			return err
		}
		i := indexTeam(teams, teamID)
		if i < 0 {
			return ErrNotFound
		}
		people, err := loadPeople(tx)
		if err != nil {
			return err
		}

		members = make([]models.Person, 0)
		for j := range people {
			if deref(people[j].TeamID) != teamID || people[j].Status != models.PersonStatusActive {
				continue
			}
			members = append(members, people[j].toModel(teams[i].Name))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByName(members, func(p *models.Person) string { return p.Name })
	return members, nil
}
