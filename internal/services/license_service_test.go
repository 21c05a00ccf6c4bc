package services

import (
	"testing"

	"assetdesk/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDeriveLicenseStatus(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{"far future", 90, models.LicenseStatusActive},
		{"just outside window", 31, models.LicenseStatusActive},
		{"window boundary", 30, models.LicenseStatusExpiringSoon},
		{"within window", 10, models.LicenseStatusExpiringSoon},
		{"expires today", 0, models.LicenseStatusExpiringSoon},
		{"yesterday", -1, models.LicenseStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DeriveLicenseStatus(inDays(tt.offset), testNow, 30))
		})
	}
}

func TestLicenseService_Create(t *testing.T) {
	env := newTestEnv(t)

	t.Run("round trip", func(t *testing.T) {
		created := env.createLicense(t, "IDE", 1200, 3, inDays(90))
		got := env.license(t, created.ID)

		require.Equal(t, "IDE", got.Name)
		require.Equal(t, env.orgID, got.OrganizationID)
		require.Equal(t, 3, got.TotalQuantity)
		require.Equal(t, 0, got.UsedQuantity)
		require.Equal(t, 3, got.AvailableQuantity)
		require.Equal(t, models.LicenseStatusActive, got.Status)
		require.Empty(t, got.AssignedTo)
		requireDecimal(t, "1200", got.TotalCost())
	})

	t.Run("derived status", func(t *testing.T) {
		require.Equal(t, models.LicenseStatusExpiringSoon, env.createLicense(t, "Soon", 10, 1, inDays(10)).Status)
		require.Equal(t, models.LicenseStatusExpired, env.createLicense(t, "Old", 10, 1, inDays(-1)).Status)
	})

	t.Run("explicit status wins", func(t *testing.T) {
		l, err := env.licenses.Create(env.ctx, models.CreateLicenseRequest{
			Name:           "Pinned",
			OrganizationID: env.orgID,
			TotalQuantity:  1,
			ExpirationDate: inDays(-5),
			Status:         models.LicenseStatusActive,
		})
		require.NoError(t, err)
		require.Equal(t, models.LicenseStatusActive, env.license(t, l.ID).Status)

		cleared := ""
		require.NoError(t, env.licenses.Update(env.ctx, l.ID, models.UpdateLicenseRequest{Status: &cleared}))
		require.Equal(t, models.LicenseStatusExpired, env.license(t, l.ID).Status)
	})

	t.Run("validation", func(t *testing.T) {
		negative := decimal.NewFromInt(-1)
		cases := []struct {
			name  string
			req   models.CreateLicenseRequest
			field string
		}{
			{"blank name", models.CreateLicenseRequest{Name: "  ", OrganizationID: env.orgID, TotalQuantity: 1, ExpirationDate: inDays(1)}, "name"},
			{"zero seats", models.CreateLicenseRequest{Name: "x", OrganizationID: env.orgID, TotalQuantity: 0, ExpirationDate: inDays(1)}, "totalQuantity"},
			{"negative cost", models.CreateLicenseRequest{Name: "x", OrganizationID: env.orgID, TotalQuantity: 1, Cost: &negative, ExpirationDate: inDays(1)}, "cost"},
			{"missing expiration", models.CreateLicenseRequest{Name: "x", OrganizationID: env.orgID, TotalQuantity: 1}, "expirationDate"},
			{"unknown organization", models.CreateLicenseRequest{Name: "x", OrganizationID: "nope", TotalQuantity: 1, ExpirationDate: inDays(1)}, "organizationId"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := env.licenses.Create(env.ctx, tc.req)
				requireValidation(t, err, tc.field)
			})
		}
	})
}

func TestLicenseService_Assignment(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createPerson(t, "alice")
	bob := env.createPerson(t, "bob")
	carol := env.createPerson(t, "carol")

	t.Run("used quantity follows assignees", func(t *testing.T) {
		l := env.createLicense(t, "Design", 100, 3, inDays(90))
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, alice.ID))
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, bob.ID))

		got := env.license(t, l.ID)
		require.Equal(t, len(got.AssignedTo), got.UsedQuantity)
		require.Equal(t, 2, got.UsedQuantity)
		require.Equal(t, 1, got.AvailableQuantity)
	})

	t.Run("assign is idempotent", func(t *testing.T) {
		l := env.createLicense(t, "Chat", 100, 2, inDays(90))
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, alice.ID))
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, alice.ID))
		require.Equal(t, []string{alice.ID}, env.license(t, l.ID).AssignedTo)
	})

	t.Run("full license rejects new assignee", func(t *testing.T) {
		l := env.createLicense(t, "Single", 100, 1, inDays(90))
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, alice.ID))

		err := env.licenses.AssignToUser(env.ctx, l.ID, bob.ID)
		require.ErrorIs(t, err, ErrCapacityExceeded)
		require.Equal(t, []string{alice.ID}, env.license(t, l.ID).AssignedTo)

		// 已持有者重复分配仍然成功
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, alice.ID))
	})

	t.Run("unassign non member is a no-op", func(t *testing.T) {
		l := env.createLicense(t, "Wiki", 100, 2, inDays(90))
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, alice.ID))
		require.NoError(t, env.licenses.UnassignFromUser(env.ctx, l.ID, carol.ID))
		require.Equal(t, []string{alice.ID}, env.license(t, l.ID).AssignedTo)

		require.NoError(t, env.licenses.UnassignFromUser(env.ctx, l.ID, alice.ID))
		require.Empty(t, env.license(t, l.ID).AssignedTo)
	})

	t.Run("unknown person rejected", func(t *testing.T) {
		l := env.createLicense(t, "Ghost", 100, 2, inDays(90))
		requireValidation(t, env.licenses.AssignToUser(env.ctx, l.ID, "nobody"), "personId")
	})

	t.Run("person from another organization rejected", func(t *testing.T) {
		org, err := env.organizations.Create(env.ctx, models.CreateOrganizationRequest{Name: "Elsewhere"})
		require.NoError(t, err)
		outsider, err := env.people.Create(env.ctx, models.CreatePersonRequest{
			Name: "dave", Email: "dave@example.com", Position: "Ops", OrganizationID: org.ID,
		})
		require.NoError(t, err)

		l := env.createLicense(t, "Scoped", 100, 2, inDays(90))
		requireValidation(t, env.licenses.AssignToUser(env.ctx, l.ID, outsider.ID), "personId")
	})

	t.Run("missing license is silent", func(t *testing.T) {
		require.NoError(t, env.licenses.AssignToUser(env.ctx, "missing", alice.ID))
		require.NoError(t, env.licenses.UnassignFromUser(env.ctx, "missing", alice.ID))
	})
}

func TestLicenseService_Reconcile(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPerson(t, "a")
	b := env.createPerson(t, "b")
	c := env.createPerson(t, "c")

	t.Run("swap at full capacity", func(t *testing.T) {
		l := env.createLicense(t, "Pair", 100, 2, inDays(90))
		require.NoError(t, env.licenses.Reconcile(env.ctx, l.ID, []string{a.ID, b.ID}))
		require.NoError(t, env.licenses.Reconcile(env.ctx, l.ID, []string{b.ID, c.ID}))

		got := env.license(t, l.ID)
		require.ElementsMatch(t, []string{b.ID, c.ID}, got.AssignedTo)
		require.Equal(t, 2, got.UsedQuantity)
	})

	t.Run("over capacity rejects whole change", func(t *testing.T) {
		l := env.createLicense(t, "Solo", 100, 1, inDays(90))
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, a.ID))

		err := env.licenses.Reconcile(env.ctx, l.ID, []string{b.ID, c.ID})
		require.ErrorIs(t, err, ErrCapacityExceeded)
		require.Equal(t, []string{a.ID}, env.license(t, l.ID).AssignedTo)
	})

	t.Run("empty target clears", func(t *testing.T) {
		l := env.createLicense(t, "Clear", 100, 3, inDays(90))
		require.NoError(t, env.licenses.Reconcile(env.ctx, l.ID, []string{a.ID, b.ID}))
		require.NoError(t, env.licenses.Reconcile(env.ctx, l.ID, nil))
		require.Empty(t, env.license(t, l.ID).AssignedTo)
	})
}

func TestLicenseService_Update(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPerson(t, "a")
	b := env.createPerson(t, "b")

	l := env.createLicense(t, "Suite", 100, 3, inDays(90))
	require.NoError(t, env.licenses.Reconcile(env.ctx, l.ID, []string{a.ID, b.ID}))

	t.Run("cannot shrink below usage", func(t *testing.T) {
		one := 1
		err := env.licenses.Update(env.ctx, l.ID, models.UpdateLicenseRequest{TotalQuantity: &one})
		require.ErrorIs(t, err, ErrCapacityExceeded)
		require.Equal(t, 3, env.license(t, l.ID).TotalQuantity)
	})

	t.Run("partial update", func(t *testing.T) {
		two := 2
		vendor := "  Acme  "
		require.NoError(t, env.licenses.Update(env.ctx, l.ID, models.UpdateLicenseRequest{TotalQuantity: &two, Vendor: &vendor}))

		got := env.license(t, l.ID)
		require.Equal(t, 2, got.TotalQuantity)
		require.Equal(t, "Acme", got.Vendor)
		require.Equal(t, "Suite", got.Name)
		require.Len(t, got.AssignedTo, 2)
	})

	t.Run("missing target is silent", func(t *testing.T) {
		name := "x"
		require.NoError(t, env.licenses.Update(env.ctx, "missing", models.UpdateLicenseRequest{Name: &name}))
		require.NoError(t, env.licenses.Delete(env.ctx, "missing"))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, env.licenses.Delete(env.ctx, l.ID))
		_, err := env.licenses.GetByID(env.ctx, l.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestComputeCostShare(t *testing.T) {
	env := newTestEnv(t)
	people := []*models.Person{
		env.createPerson(t, "p1"),
		env.createPerson(t, "p2"),
		env.createPerson(t, "p3"),
		env.createPerson(t, "p4"),
	}
	l := env.createLicense(t, "Shared", 1200, 4, inDays(90))

	for _, p := range people[:3] {
		require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, p.ID))
	}
	requireDecimal(t, "400", ComputeCostShare(env.license(t, l.ID), people[0].ID))

	require.NoError(t, env.licenses.AssignToUser(env.ctx, l.ID, people[3].ID))
	requireDecimal(t, "300", ComputeCostShare(env.license(t, l.ID), people[0].ID))

	t.Run("non assignee pays nothing", func(t *testing.T) {
		outsider := env.createPerson(t, "outsider")
		require.True(t, ComputeCostShare(env.license(t, l.ID), outsider.ID).IsZero())
	})

	t.Run("missing cost is zero", func(t *testing.T) {
		free, err := env.licenses.Create(env.ctx, models.CreateLicenseRequest{
			Name: "Free", OrganizationID: env.orgID, TotalQuantity: 1, ExpirationDate: inDays(90),
		})
		require.NoError(t, err)
		require.NoError(t, env.licenses.AssignToUser(env.ctx, free.ID, people[0].ID))
		require.True(t, ComputeCostShare(env.license(t, free.ID), people[0].ID).IsZero())
	})
}

func TestLicenseService_Reports(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPerson(t, "p")

	active := env.createLicense(t, "Active", 1000, 5, inDays(90))
	soon := env.createLicense(t, "Soon", 200, 2, inDays(10))
	gone := env.createLicense(t, "Gone", 50, 1, inDays(-3))
	require.NoError(t, env.licenses.AssignToUser(env.ctx, active.ID, p.ID))

	summary, err := env.licenses.Summary(env.ctx, env.orgID)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 1, summary.Active)
	require.Equal(t, 1, summary.ExpiringSoon)
	require.Equal(t, 1, summary.Expired)
	require.Equal(t, 8, summary.SeatsTotal)
	require.Equal(t, 1, summary.SeatsUsed)
	requireDecimal(t, "1250", summary.TotalCost)

	report, err := env.licenses.ExpiryReport(env.ctx, env.orgID)
	require.NoError(t, err)
	require.Equal(t, testNow, report.GeneratedAt)
	require.Len(t, report.ExpiringSoon, 1)
	require.Equal(t, soon.ID, report.ExpiringSoon[0].ID)
	require.Len(t, report.Expired, 1)
	require.Equal(t, gone.ID, report.Expired[0].ID)

	held, err := env.licenses.ListForPerson(env.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	require.Equal(t, active.ID, held[0].ID)
}

func TestLicenseExpiryMonitor_RunOnce(t *testing.T) {
	env := newTestEnv(t)
	env.createLicense(t, "Soon", 10, 1, inDays(5))

	monitor := NewLicenseExpiryMonitor("0 6 * * *", env.organizations, env.licenses)
	_, ok := monitor.LatestReport(env.orgID)
	require.False(t, ok)

	require.NoError(t, monitor.RunOnce(env.ctx))
	report, ok := monitor.LatestReport(env.orgID)
	require.True(t, ok)
	require.Len(t, report.ExpiringSoon, 1)
	require.Empty(t, report.Expired)

	require.NoError(t, monitor.Start())
	monitor.Stop()
}

func TestLicenseExpiryMonitor_InvalidSchedule(t *testing.T) {
	env := newTestEnv(t)
	monitor := NewLicenseExpiryMonitor("not a cron", env.organizations, env.licenses)
	require.Error(t, monitor.Start())
}
