package services

import (
	"testing"

	"assetdesk/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFilterAssets(t *testing.T) {
	assets := []models.Asset{
		{ID: "1", Name: "MacBook Pro", SerialNumber: "C02X1", Type: models.AssetTypeNotebook, Status: models.AssetStatusAvailable},
		{ID: "2", Name: "Dell U2720", SerialNumber: "DL-77", Type: models.AssetTypeMonitor, Status: models.AssetStatusAllocated},
		{ID: "3", Name: "USB-C hub", SerialNumber: "HUB-macx", Type: models.AssetTypeAdapter, Status: models.AssetStatusAvailable},
	}

	ids := func(list []models.Asset) []string {
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, a.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.AssetFilter
		want   []string
	}{
		{"no filter", models.AssetFilter{}, []string{"1", "2", "3"}},
		{"by status", models.AssetFilter{Status: models.AssetStatusAvailable}, []string{"1", "3"}},
		{"by type", models.AssetFilter{Type: models.AssetTypeMonitor}, []string{"2"}},
		{"search name and serial", models.AssetFilter{Search: "MAC"}, []string{"1", "3"}},
		{"combined", models.AssetFilter{Status: models.AssetStatusAvailable, Type: models.AssetTypeAdapter, Search: "hub"}, []string{"3"}},
		{"no match", models.AssetFilter{Search: "printer"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(FilterAssets(assets, tt.filter)))
		})
	}
	require.Len(t, assets, 3)
}

func TestAssetService_Create(t *testing.T) {
	env := newTestEnv(t)

	t.Run("round trip", func(t *testing.T) {
		created := env.createAsset(t, "ThinkPad", models.AssetTypeNotebook, 1400)
		got, err := env.assets.GetByID(env.ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "ThinkPad", got.Name)
		require.Equal(t, "SN-ThinkPad", got.SerialNumber)
		require.Equal(t, models.AssetStatusAvailable, got.Status)
		requireDecimal(t, "1400", got.Value)
		require.False(t, got.PurchaseDate.IsZero())
	})

	t.Run("validation", func(t *testing.T) {
		base := func() models.CreateAssetRequest {
			return models.CreateAssetRequest{
				Name:           "x",
				OrganizationID: env.orgID,
				Type:           models.AssetTypeOther,
				SerialNumber:   "s",
				Condition:      models.AssetConditionNew,
				Status:         models.AssetStatusAvailable,
			}
		}
		cases := []struct {
			name   string
			mutate func(*models.CreateAssetRequest)
			field  string
		}{
			{"blank name", func(r *models.CreateAssetRequest) { r.Name = " " }, "name"},
			{"blank serial", func(r *models.CreateAssetRequest) { r.SerialNumber = "" }, "serialNumber"},
			{"bad type", func(r *models.CreateAssetRequest) { r.Type = "phone" }, "type"},
			{"bad condition", func(r *models.CreateAssetRequest) { r.Condition = "broken" }, "condition"},
			{"bad status", func(r *models.CreateAssetRequest) { r.Status = "lost" }, "status"},
			{"negative value", func(r *models.CreateAssetRequest) { r.Value = decimal.NewFromInt(-5) }, "value"},
			{"unknown holder", func(r *models.CreateAssetRequest) { r.AssignedTo = "nobody" }, "assignedTo"},
			{"unknown organization", func(r *models.CreateAssetRequest) { r.OrganizationID = "nope" }, "organizationId"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := base()
				tc.mutate(&req)
				_, err := env.assets.Create(env.ctx, req)
				requireValidation(t, err, tc.field)
			})
		}
	})
}

func TestAssetService_Assignment(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createPerson(t, "alice")
	laptop := env.createAsset(t, "Laptop", models.AssetTypeNotebook, 1500)

	require.NoError(t, env.assets.Assign(env.ctx, laptop.ID, alice.ID))
	got, err := env.assets.GetByID(env.ctx, laptop.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.AssignedTo)
	require.Equal(t, "alice", got.AssignedToName)
	require.Equal(t, models.AssetStatusAllocated, got.Status)

	require.NoError(t, env.assets.Unassign(env.ctx, laptop.ID))
	got, err = env.assets.GetByID(env.ctx, laptop.ID)
	require.NoError(t, err)
	require.Empty(t, got.AssignedTo)
	require.Equal(t, models.AssetStatusAvailable, got.Status)

	t.Run("retired cannot be assigned", func(t *testing.T) {
		retired := models.AssetStatusRetired
		require.NoError(t, env.assets.Update(env.ctx, laptop.ID, models.UpdateAssetRequest{Status: &retired}))
		requireValidation(t, env.assets.Assign(env.ctx, laptop.ID, alice.ID), "status")
	})

	t.Run("unknown person", func(t *testing.T) {
		screen := env.createAsset(t, "Screen", models.AssetTypeMonitor, 200)
		requireValidation(t, env.assets.Assign(env.ctx, screen.ID, "nobody"), "personId")
	})

	t.Run("missing asset is silent", func(t *testing.T) {
		require.NoError(t, env.assets.Assign(env.ctx, "missing", alice.ID))
		require.NoError(t, env.assets.Unassign(env.ctx, "missing"))
	})
}

func TestAssetService_UpdateDoesNotCoupleStatus(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createPerson(t, "alice")
	hub := env.createAsset(t, "Hub", models.AssetTypeAdapter, 40)

	require.NoError(t, env.assets.Update(env.ctx, hub.ID, models.UpdateAssetRequest{AssignedTo: &alice.ID}))
	got, err := env.assets.GetByID(env.ctx, hub.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.AssignedTo)
	require.Equal(t, models.AssetStatusAvailable, got.Status)

	maintenance := models.AssetStatusMaintenance
	require.NoError(t, env.assets.Update(env.ctx, hub.ID, models.UpdateAssetRequest{Status: &maintenance}))
	got, err = env.assets.GetByID(env.ctx, hub.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.AssignedTo)
	require.Equal(t, models.AssetStatusMaintenance, got.Status)

	name := "ghost"
	require.NoError(t, env.assets.Update(env.ctx, "missing", models.UpdateAssetRequest{Name: &name}))

	require.NoError(t, env.assets.Delete(env.ctx, hub.ID))
	_, err = env.assets.GetByID(env.ctx, hub.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, env.assets.Delete(env.ctx, hub.ID))
}

func TestAssetService_Inventory(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createPerson(t, "alice")
	env.createAsset(t, "Laptop A", models.AssetTypeNotebook, 1000)
	used := env.createAsset(t, "Laptop B", models.AssetTypeNotebook, 1200)
	env.createAsset(t, "Monitor", models.AssetTypeMonitor, 300)
	env.createAsset(t, "Cable", models.AssetTypeOther, 15)
	require.NoError(t, env.assets.Assign(env.ctx, used.ID, alice.ID))

	summary, err := env.assets.InventorySummary(env.ctx, env.orgID)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Available)
	require.Equal(t, 1, summary.Notebooks)
	require.Equal(t, 1, summary.Monitors)
	require.Equal(t, 0, summary.Adapters)
	require.Equal(t, 1, summary.Others)
	requireDecimal(t, "1315", summary.TotalValue)

	list, err := env.assets.ListFiltered(env.ctx, env.orgID, models.AssetFilter{Status: models.AssetStatusAllocated})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "alice", list[0].AssignedToName)
}
