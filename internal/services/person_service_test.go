package services

import (
	"testing"

	"assetdesk/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersonService_Create(t *testing.T) {
	env := newTestEnv(t)

	t.Run("round trip", func(t *testing.T) {
		created, err := env.people.Create(env.ctx, models.CreatePersonRequest{
			Name:           "  Alice Smith ",
			Email:          "alice@example.com",
			Position:       "Engineer",
			OrganizationID: env.orgID,
			TeamID:         env.teamID,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		require.Equal(t, "Alice Smith", created.Name)
		require.Equal(t, models.PersonStatusActive, created.Status)
		require.False(t, created.EntryDate.IsZero())
		require.Equal(t, models.DefaultTeamName, created.TeamName)

		got, err := env.people.GetByID(env.ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.Name, got.Name)
		require.Equal(t, created.Email, got.Email)
		require.Equal(t, created.Position, got.Position)
		require.Equal(t, env.teamID, got.TeamID)
		require.Equal(t, models.DefaultTeamName, got.TeamName)
		require.Equal(t, created.EntryDate.String(), got.EntryDate.String())
	})

	t.Run("explicit entry date kept", func(t *testing.T) {
		date, err := models.ParseDate("2023-04-05")
		require.NoError(t, err)
		p, err := env.people.Create(env.ctx, models.CreatePersonRequest{
			Name: "bob", Email: "bob@example.com", Position: "QA", OrganizationID: env.orgID, EntryDate: date,
		})
		require.NoError(t, err)
		require.Equal(t, "2023-04-05", p.EntryDate.String())
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name  string
			req   models.CreatePersonRequest
			field string
		}{
			{"blank name", models.CreatePersonRequest{Name: " ", Email: "x@example.com", Position: "p", OrganizationID: env.orgID}, "name"},
			{"blank email", models.CreatePersonRequest{Name: "x", Email: "", Position: "p", OrganizationID: env.orgID}, "email"},
			{"blank position", models.CreatePersonRequest{Name: "x", Email: "x@example.com", Position: "\t", OrganizationID: env.orgID}, "position"},
			{"unknown organization", models.CreatePersonRequest{Name: "x", Email: "x@example.com", Position: "p", OrganizationID: "nope"}, "organizationId"},
			{"unknown manager", models.CreatePersonRequest{Name: "x", Email: "x@example.com", Position: "p", OrganizationID: env.orgID, ManagerID: "nope"}, "managerId"},
			{"unknown team", models.CreatePersonRequest{Name: "x", Email: "x@example.com", Position: "p", OrganizationID: env.orgID, TeamID: "nope"}, "teamId"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := env.people.Create(env.ctx, tc.req)
				requireValidation(t, err, tc.field)
			})
		}

		people, err := env.people.List(env.ctx, env.orgID)
		require.NoError(t, err)
		require.Len(t, people, 2)
	})
}

func TestPersonService_List(t *testing.T) {
	env := newTestEnv(t)
	env.createPerson(t, "zoe")
	env.createPerson(t, "Émile")
	env.createPerson(t, "adam")

	people, err := env.people.List(env.ctx, env.orgID)
	require.NoError(t, err)
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"adam", "Émile", "zoe"}, names)

	other, err := env.people.List(env.ctx, "other-org")
	require.NoError(t, err)
	require.Empty(t, other)

	t.Run("search", func(t *testing.T) {
		found, err := env.people.Search(env.ctx, env.orgID, "ZO")
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "zoe", found[0].Name)

		all, err := env.people.Search(env.ctx, env.orgID, "  ")
		require.NoError(t, err)
		require.Len(t, all, 3)
	})
}

func TestPersonService_Update(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createPerson(t, "alice")
	bob := env.createPerson(t, "bob")

	t.Run("partial", func(t *testing.T) {
		position := "Lead"
		require.NoError(t, env.people.Update(env.ctx, alice.ID, models.UpdatePersonRequest{
			Position:  &position,
			ManagerID: &bob.ID,
		}))

		got, err := env.people.GetByID(env.ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "Lead", got.Position)
		require.Equal(t, "alice", got.Name)
		require.Equal(t, bob.ID, got.ManagerID)
	})

	t.Run("self manager rejected", func(t *testing.T) {
		requireValidation(t, env.people.Update(env.ctx, alice.ID, models.UpdatePersonRequest{ManagerID: &alice.ID}), "managerId")
	})

	t.Run("blank name rejected", func(t *testing.T) {
		blank := "  "
		requireValidation(t, env.people.Update(env.ctx, alice.ID, models.UpdatePersonRequest{Name: &blank}), "name")
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		status := "on_leave"
		requireValidation(t, env.people.Update(env.ctx, alice.ID, models.UpdatePersonRequest{Status: &status}), "status")
	})

	t.Run("missing target is silent", func(t *testing.T) {
		name := "ghost"
		require.NoError(t, env.people.Update(env.ctx, "missing", models.UpdatePersonRequest{Name: &name}))
		require.NoError(t, env.people.Delete(env.ctx, "missing"))

		people, err := env.people.List(env.ctx, env.orgID)
		require.NoError(t, err)
		require.Len(t, people, 2)
	})

	t.Run("manager and subordinates", func(t *testing.T) {
		got, err := env.people.GetByID(env.ctx, alice.ID)
		require.NoError(t, err)

		manager, err := env.people.FindManager(env.ctx, got)
		require.NoError(t, err)
		require.NotNil(t, manager)
		require.Equal(t, bob.ID, manager.ID)

		subs, err := env.people.FindSubordinates(env.ctx, manager)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		require.Equal(t, alice.ID, subs[0].ID)

		none, err := env.people.FindManager(env.ctx, manager)
		require.NoError(t, err)
		require.Nil(t, none)
	})
}

func TestPersonService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createPerson(t, "alice")
	bob := env.createPerson(t, "bob")
	require.NoError(t, env.people.Update(env.ctx, bob.ID, models.UpdatePersonRequest{ManagerID: &alice.ID}))
	require.NoError(t, env.teams.Update(env.ctx, env.teamID, models.UpdateTeamRequest{ManagerID: &alice.ID}))

	license := env.createLicense(t, "Suite", 900, 3, inDays(90))
	require.NoError(t, env.licenses.Reconcile(env.ctx, license.ID, []string{alice.ID, bob.ID}))

	laptop := env.createAsset(t, "Laptop", models.AssetTypeNotebook, 1500)
	require.NoError(t, env.assets.Assign(env.ctx, laptop.ID, alice.ID))

	require.NoError(t, env.people.Delete(env.ctx, alice.ID))

	_, err := env.people.GetByID(env.ctx, alice.ID)
	require.ErrorIs(t, err, ErrNotFound)

	l := env.license(t, license.ID)
	require.Equal(t, []string{bob.ID}, l.AssignedTo)
	require.Equal(t, 1, l.UsedQuantity)

	asset, err := env.assets.GetByID(env.ctx, laptop.ID)
	require.NoError(t, err)
	require.Empty(t, asset.AssignedTo)
	require.Equal(t, models.AssetStatusAvailable, asset.Status)

	b, err := env.people.GetByID(env.ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, b.ManagerID)

	team, err := env.teams.GetByID(env.ctx, env.teamID)
	require.NoError(t, err)
	require.Empty(t, team.ManagerID)

	// bob 现在独占整个许可证
	total, err := env.costs.TotalCostForPerson(env.ctx, bob.ID)
	require.NoError(t, err)
	requireDecimal(t, "900", total)
}

func TestPersonService_GetDetail(t *testing.T) {
	env := newTestEnv(t)
	boss := env.createPerson(t, "boss")
	p := env.createPerson(t, "worker")
	require.NoError(t, env.people.Update(env.ctx, p.ID, models.UpdatePersonRequest{ManagerID: &boss.ID}))

	l := env.createLicense(t, "IDE", 600, 2, inDays(90))
	require.NoError(t, env.licenses.Reconcile(env.ctx, l.ID, []string{p.ID, boss.ID}))
	monitor := env.createAsset(t, "Monitor", models.AssetTypeMonitor, 250)
	require.NoError(t, env.assets.Assign(env.ctx, monitor.ID, p.ID))

	detail, err := env.people.GetDetail(env.ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, detail.ID)
	require.NotNil(t, detail.Manager)
	require.Equal(t, boss.ID, detail.Manager.ID)
	require.Empty(t, detail.Subordinates)
	require.Len(t, detail.Licenses, 1)
	requireDecimal(t, "300", detail.Licenses[0].CostShare)
	require.Len(t, detail.Assets, 1)
	requireDecimal(t, "300", detail.LicenseCost)
	requireDecimal(t, "250", detail.AssetValue)
	requireDecimal(t, "550", detail.TotalCost)

	_, err = env.people.GetDetail(env.ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCostService(t *testing.T) {
	env := newTestEnv(t)
	person := env.createPerson(t, "p")
	others := []*models.Person{env.createPerson(t, "o1"), env.createPerson(t, "o2"), env.createPerson(t, "o3")}

	l := env.createLicense(t, "Shared", 1200, 4, inDays(90))
	require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, person.ID))
	for _, o := range others {
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, o.ID))
	}
	laptop := env.createAsset(t, "Laptop", models.AssetTypeNotebook, 1500)
	require.NoError(t, env.assets.Assign(env.ctx, laptop.ID, person.ID))

	total, err := env.costs.TotalCostForPerson(env.ctx, person.ID)
	require.NoError(t, err)
	requireDecimal(t, "1800", total)

	breakdown, err := env.costs.Breakdown(env.ctx, person.ID)
	require.NoError(t, err)
	require.Len(t, breakdown.Licenses, 1)
	requireDecimal(t, "300", breakdown.Licenses[0].CostShare)
	require.Len(t, breakdown.Assets, 1)
	requireDecimal(t, "1500", breakdown.Assets[0].Value)

	t.Run("nothing held", func(t *testing.T) {
		idle := env.createPerson(t, "idle")
		total, err := env.costs.TotalCostForPerson(env.ctx, idle.ID)
		require.NoError(t, err)
		require.True(t, total.IsZero())
	})

	t.Run("unknown person", func(t *testing.T) {
		_, err := env.costs.Breakdown(env.ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
