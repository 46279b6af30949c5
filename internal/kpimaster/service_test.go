package kpimaster

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kpi-dashboard/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	// a second pooled connection would see its own empty memory db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.KpiDefinition{},
		&model.KpiTemplate{},
		&model.KpiTemplateItem{},
		&model.KpiTarget{},
		&model.KpiActual{},
	))
	return db
}

func strPtr(s string) *string { return &s }

func TestBaseID(t *testing.T) {
	assert.Equal(t, "kgi_001", baseID("tpl1_kgi_001", "tpl1"))
	// only a leading match is stripped
	assert.Equal(t, "x_tpl1_kgi", baseID("x_tpl1_kgi", "tpl1"))
	// no separator, no strip
	assert.Equal(t, "tpl1kgi", baseID("tpl1kgi", "tpl1"))
	assert.Equal(t, "kgi_001", baseID("kgi_001", "tpl1"))
}

func TestEnsureDefaultTemplate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultTemplate(ctx))
	// second call is a no-op
	require.NoError(t, svc.EnsureDefaultTemplate(ctx))

	var tpls []model.KpiTemplate
	require.NoError(t, db.Find(&tpls).Error)
	require.Len(t, tpls, 1)
	assert.True(t, tpls[0].IsDefault)
	assert.Equal(t, DefaultTemplateID, tpls[0].ID)

	var items []model.KpiTemplateItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, len(defaultKpiData))
	for _, it := range items {
		assert.True(t, strings.HasPrefix(it.ID, DefaultTemplateID+"_"))
		if it.ParentKpiID != nil {
			assert.True(t, strings.HasPrefix(*it.ParentKpiID, DefaultTemplateID+"_"))
		}
	}
}

func TestEnsureLegacyDefinitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureLegacyDefinitions(ctx))
	require.NoError(t, svc.EnsureLegacyDefinitions(ctx))

	defs, err := svc.ListByScope(ctx, nil)
	require.NoError(t, err)
	require.Len(t, defs, len(defaultKpiData))
	for _, d := range defs {
		assert.Nil(t, d.TenantID)
	}
	// exactly one root
	roots := 0
	for _, d := range defs {
		if d.Level == 1 {
			roots++
			assert.Nil(t, d.ParentKpiID)
		}
	}
	assert.Equal(t, 1, roots)
}

func TestInstantiateForScope(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultTemplate(ctx))
	require.NoError(t, svc.InstantiateForScope(ctx, "tenant1", nil))
	// idempotent on an already-populated scope
	require.NoError(t, svc.InstantiateForScope(ctx, "tenant1", nil))

	defs, err := svc.ListByScope(ctx, strPtr("tenant1"))
	require.NoError(t, err)
	require.Len(t, defs, len(defaultKpiData))

	byID := make(map[string]model.KpiDefinition, len(defs))
	for _, d := range defs {
		require.NotNil(t, d.TenantID)
		assert.Equal(t, "tenant1", *d.TenantID)
		assert.True(t, strings.HasPrefix(d.ID, "tenant1_"))
		byID[d.ID] = d
	}

	// template prefix was stripped before the scope prefix was applied
	root, ok := byID["tenant1_kgi_001"]
	require.True(t, ok)
	assert.Equal(t, 1, root.Level)
	assert.Nil(t, root.ParentKpiID)

	// parent links are remapped consistently
	traffic, ok := byID["tenant1_drv_traffic"]
	require.True(t, ok)
	require.NotNil(t, traffic.ParentKpiID)
	assert.Equal(t, "tenant1_kgi_001", *traffic.ParentKpiID)
	_, ok = byID[*traffic.ParentKpiID]
	assert.True(t, ok)
}

func TestInstantiateForScopeWithoutTemplate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	// no template seeded: falls back to the built-in set
	require.NoError(t, svc.InstantiateForScope(ctx, "tenant2", nil))

	defs, err := svc.ListByScope(ctx, strPtr("tenant2"))
	require.NoError(t, err)
	assert.Len(t, defs, len(defaultKpiData))
}

func TestInstantiateForScopeUnknownTemplate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	err := svc.InstantiateForScope(context.Background(), "tenant3", strPtr("nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScopeIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureLegacyDefinitions(ctx))
	require.NoError(t, svc.InstantiateForScope(ctx, "a", nil))
	require.NoError(t, svc.InstantiateForScope(ctx, "b", nil))

	a, err := svc.ListByScope(ctx, strPtr("a"))
	require.NoError(t, err)
	legacy, err := svc.ListByScope(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, a, len(defaultKpiData))
	assert.Len(t, legacy, len(defaultKpiData))
	for _, d := range a {
		assert.False(t, strings.HasPrefix(d.ID, "b_"))
	}
}

func TestAddDefinition(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.InstantiateForScope(ctx, "t1", nil))

	in := DefinitionInput{
		ID:          "custom_tiktok",
		Agent:       model.AgentCreative,
		Category:    "SNS",
		Name:        "TikTok followers",
		Unit:        "people",
		ParentKpiID: strPtr("t1_own_sns"),
	}
	def, err := svc.AddDefinition(ctx, strPtr("t1"), in)
	require.NoError(t, err)
	assert.Equal(t, "t1_custom_tiktok", def.ID)
	assert.Equal(t, 5, def.Level) // own_sns is level 4
	require.NotNil(t, def.ParentKpiID)
	assert.Equal(t, "t1_own_sns", *def.ParentKpiID)

	// same base id again collides
	_, err = svc.AddDefinition(ctx, strPtr("t1"), in)
	assert.ErrorIs(t, err, ErrDuplicateID)

	// parent outside the scope is invisible
	in2 := in
	in2.ID = "custom_other"
	in2.ParentKpiID = strPtr("t2_own_sns")
	_, err = svc.AddDefinition(ctx, strPtr("t1"), in2)
	assert.ErrorIs(t, err, ErrNoParent)

	// a node without a parent is rejected
	in3 := in
	in3.ID = "custom_root"
	in3.ParentKpiID = nil
	_, err = svc.AddDefinition(ctx, strPtr("t1"), in3)
	assert.ErrorIs(t, err, ErrNoParent)
}

func TestUpdateDefinition(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.InstantiateForScope(ctx, "t1", nil))

	name := "Sessions (all channels)"
	target := 2500000.0
	def, err := svc.UpdateDefinition(ctx, strPtr("t1"), "t1_drv_traffic", UpdateInput{
		Name:          &name,
		DefaultTarget: &target,
	})
	require.NoError(t, err)
	assert.Equal(t, name, def.Name)
	require.NotNil(t, def.DefaultTarget)
	assert.Equal(t, target, *def.DefaultTarget)
	// untouched fields survive
	assert.Equal(t, "sessions", def.Unit)
	assert.Equal(t, 2, def.Level)

	_, err = svc.UpdateDefinition(ctx, strPtr("t1"), "t1_missing", UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	// a row from another scope is not reachable
	_, err = svc.UpdateDefinition(ctx, strPtr("t2"), "t1_drv_traffic", UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDefinition(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.InstantiateForScope(ctx, "t1", nil))

	// a node with children cannot go
	err := svc.DeleteDefinition(ctx, strPtr("t1"), "t1_drv_traffic")
	assert.ErrorIs(t, err, ErrHasChildren)

	// leaf delete cascades its stored values
	month := 6
	require.NoError(t, db.Create(&model.KpiTarget{
		ProjectID: "p1", KpiID: "t1_meta_roas", Year: 2025, Month: &month, TargetValue: 350,
	}).Error)
	require.NoError(t, db.Create(&model.KpiActual{
		ProjectID: "p1", KpiID: "t1_meta_roas", Year: 2025, Month: 6, ActualValue: 310, UpdatedBy: "u1",
	}).Error)

	require.NoError(t, svc.DeleteDefinition(ctx, strPtr("t1"), "t1_meta_roas"))

	var targets, actuals int64
	require.NoError(t, db.Model(&model.KpiTarget{}).Where("kpi_id = ?", "t1_meta_roas").Count(&targets).Error)
	require.NoError(t, db.Model(&model.KpiActual{}).Where("kpi_id = ?", "t1_meta_roas").Count(&actuals).Error)
	assert.Zero(t, targets)
	assert.Zero(t, actuals)

	err = svc.DeleteDefinition(ctx, strPtr("t1"), "t1_meta_roas")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTemplateFromScope(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.InstantiateForScope(ctx, "t1", nil))

	tpl, err := svc.CreateTemplate(ctx, "tpl_custom", "Custom set", "copied from t1", strPtr("t1"))
	require.NoError(t, err)
	assert.False(t, tpl.IsDefault)

	got, items, err := svc.GetTemplate(ctx, "tpl_custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom set", got.Name)
	require.Len(t, items, len(defaultKpiData))
	// scope prefix replaced by the template prefix
	for _, it := range items {
		assert.True(t, strings.HasPrefix(it.ID, "tpl_custom_"))
		assert.False(t, strings.Contains(it.ID, "t1_"))
	}

	_, err = svc.CreateTemplate(ctx, "tpl_custom", "again", "", nil)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestListTemplates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultTemplate(ctx))
	_, err := svc.CreateTemplate(ctx, "tpl_min", "Minimal", "", nil)
	require.NoError(t, err)

	tpls, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, tpls, 2)
	for _, tp := range tpls {
		assert.Equal(t, len(defaultKpiData), tp.ItemCount)
	}

	_, _, err = svc.GetTemplate(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
