package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"assetdesk/internal/models"
	"assetdesk/pkg/logger"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Fixture 批量导入的数据文件。人员之间、许可证与资产的持有人都通过邮箱引用
type Fixture struct {
	Teams    []FixtureTeam    `yaml:"teams"`
	People   []FixturePerson  `yaml:"people"`
	Licenses []FixtureLicense `yaml:"licenses"`
	Assets   []FixtureAsset   `yaml:"assets"`
}

type FixtureTeam struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type FixturePerson struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Position  string `yaml:"position"`
	Team      string `yaml:"team"`
	Manager   string `yaml:"manager"`
	EntryDate string `yaml:"entry_date"`
}

type FixtureLicense struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Vendor         string   `yaml:"vendor"`
	Cost           string   `yaml:"cost"`
	TotalQuantity  int      `yaml:"total_quantity"`
	ExpirationDate string   `yaml:"expiration_date"`
	AssignedTo     []string `yaml:"assigned_to"`
}

type FixtureAsset struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	SerialNumber string `yaml:"serial_number"`
	Value        string `yaml:"value"`
	PurchaseDate string `yaml:"purchase_date"`
	Condition    string `yaml:"condition"`
	Status       string `yaml:"status"`
	AssignedTo   string `yaml:"assigned_to"`
	Notes        string `yaml:"notes"`
}

// ImportResult 导入统计
type ImportResult struct {
	Teams    int `json:"teams"`
	People   int `json:"people"`
	Licenses int `json:"licenses"`
	Seats    int `json:"seats"`
	Assets   int `json:"assets"`
}

// FixtureService 通过各登记服务导入数据，所有校验和容量约束照常生效。
// 导入按条目逐个提交，出错时已导入的部分保留
type FixtureService struct {
	teams    *TeamService
	people   *PersonService
	licenses *LicenseService
	assets   *AssetService
}

func NewFixtureService(teams *TeamService, people *PersonService, licenses *LicenseService, assets *AssetService) *FixtureService {
	return &FixtureService{
		teams:    teams,
		people:   people,
		licenses: licenses,
		assets:   assets,
	}
}

// ParseFixture 解析 YAML
func ParseFixture(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		if err == io.EOF {
			return &fixture, nil
		}
		return nil, fmt.Errorf("解析 fixture 失败: %w", err)
	}
	return &fixture, nil
}

// ImportFile 从文件导入
func (s *FixtureService) ImportFile(ctx context.Context, organizationID, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 fixture 失败: %w", err)
	}
	defer f.Close()

	fixture, err := ParseFixture(f)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, organizationID, fixture)
}

// Import 依次导入团队、人员、许可证、资产
func (s *FixtureService) Import(ctx context.Context, organizationID string, fixture *Fixture) (*ImportResult, error) {
	result := &ImportResult{}

	teamIDs := make(map[string]string, len(fixture.Teams))
	for _, t := range fixture.Teams {
		team, err := s.teams.Create(ctx, models.CreateTeamRequest{
			Name:           t.Name,
			Description:    t.Description,
			OrganizationID: organizationID,
		})
		if err != nil {
			return result, fmt.Errorf("导入团队 %q 失败: %w", t.Name, err)
		}
		teamIDs[team.Name] = team.ID
		result.Teams++
	}

	// 上级可能在后面才出现，先创建人员再回填上级
	personIDs := make(map[string]string, len(fixture.People))
	for _, p := range fixture.People {
		req := models.CreatePersonRequest{
			Name:           p.Name,
			Email:          p.Email,
			Position:       p.Position,
			OrganizationID: organizationID,
		}
		if p.Team != "" {
			id, ok := teamIDs[p.Team]
			if !ok {
				return result, newValidationError("team", fmt.Sprintf("unknown team %q", p.Team))
			}
			req.TeamID = id
		}
		if p.EntryDate != "" {
			date, err := models.ParseDate(p.EntryDate)
			if err != nil {
				return result, newValidationError("entry_date", err.Error())
			}
			req.EntryDate = date
		}

		person, err := s.people.Create(ctx, req)
		if err != nil {
			return result, fmt.Errorf("导入人员 %q 失败: %w", p.Email, err)
		}
		personIDs[emailKey(person.Email)] = person.ID
		result.People++
	}
	for _, p := range fixture.People {
		if p.Manager == "" {
			continue
		}
		managerID, err := lookupEmail(personIDs, p.Manager)
		if err != nil {
			return result, err
		}
		personID := personIDs[emailKey(p.Email)]
		if err := s.people.Update(ctx, personID, models.UpdatePersonRequest{ManagerID: &managerID}); err != nil {
			return result, fmt.Errorf("设置 %q 的上级失败: %w", p.Email, err)
		}
	}

	for _, l := range fixture.Licenses {
		req := models.CreateLicenseRequest{
			Name:           l.Name,
			Description:    l.Description,
			Vendor:         l.Vendor,
			TotalQuantity:  l.TotalQuantity,
			OrganizationID: organizationID,
		}
		if l.Cost != "" {
			cost, err := decimal.NewFromString(l.Cost)
			if err != nil {
				return result, newValidationError("cost", fmt.Sprintf("invalid amount %q", l.Cost))
			}
			req.Cost = &cost
		}
		if l.ExpirationDate != "" {
			date, err := models.ParseDate(l.ExpirationDate)
			if err != nil {
				return result, newValidationError("expiration_date", err.Error())
			}
			req.ExpirationDate = date
		}

		license, err := s.licenses.Create(ctx, req)
		if err != nil {
			return result, fmt.Errorf("导入许可证 %q 失败: %w", l.Name, err)
		}
		result.Licenses++

		for _, email := range l.AssignedTo {
			personID, err := lookupEmail(personIDs, email)
			if err != nil {
				return result, err
			}
			if err := s.licenses.AssignToUser(ctx, license.ID, personID); err != nil {
				return result, fmt.Errorf("分配许可证 %q 给 %q 失败: %w", l.Name, email, err)
			}
			result.Seats++
		}
	}

	for _, a := range fixture.Assets {
		req := models.CreateAssetRequest{
			Name:           a.Name,
			OrganizationID: organizationID,
			Type:           a.Type,
			SerialNumber:   a.SerialNumber,
			Condition:      a.Condition,
			Status:         a.Status,
			Notes:          a.Notes,
		}
		if req.Status == "" {
			req.Status = models.AssetStatusAvailable
		}
		if a.Value != "" {
			value, err := decimal.NewFromString(a.Value)
			if err != nil {
				return result, newValidationError("value", fmt.Sprintf("invalid amount %q", a.Value))
			}
			req.Value = value
		}
		if a.PurchaseDate != "" {
			date, err := models.ParseDate(a.PurchaseDate)
			if err != nil {
				return result, newValidationError("purchase_date", err.Error())
			}
			req.PurchaseDate = date
		}

		asset, err := s.assets.Create(ctx, req)
		if err != nil {
			return result, fmt.Errorf("导入资产 %q 失败: %w", a.Name, err)
		}
		if a.AssignedTo != "" {
			personID, err := lookupEmail(personIDs, a.AssignedTo)
			if err != nil {
				return result, err
			}
			if err := s.assets.Assign(ctx, asset.ID, personID); err != nil {
				return result, fmt.Errorf("分配资产 %q 失败: %w", a.Name, err)
			}
		}
		result.Assets++
	}

	logger.GetLogger().Infof("fixture 导入完成: 团队 %d, 人员 %d, 许可证 %d (席位 %d), 资产 %d",
		result.Teams, result.People, result.Licenses, result.Seats, result.Assets)
	return result, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func lookupEmail(personIDs map[string]string, email string) (string, error) {
	id, ok := personIDs[emailKey(email)]
	if !ok {
		return "", newValidationError("email", fmt.Sprintf("unknown person %q", email))
	}
	return id, nil
}
