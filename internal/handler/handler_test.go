package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kpi-dashboard/internal/kpimaster"
	"kpi-dashboard/internal/middleware"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/config"
	"kpi-dashboard/pkg/jwtutil"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type testServer struct {
	e      *echo.Echo
	db     *gorm.DB
	tokens *jwtutil.JWT
	kpis   *kpimaster.Service
}

// newTestServer wires the full route table against an in-memory
// database, mirroring the production setup in cmd.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.SuperAdmin{},
		&model.Tenant{},
		&model.TenantInvitation{},
		&model.Project{},
		&model.ProjectMember{},
		&model.KpiDefinition{},
		&model.KpiTemplate{},
		&model.KpiTemplateItem{},
		&model.KpiTarget{},
		&model.KpiActual{},
	))

	cfg := &config.Config{}
	cfg.JWT.SigningKey = "test-user-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.SuperAdmin.SigningKey = "test-admin-secret"
	cfg.SuperAdmin.ExpirationHours = 1
	cfg.SuperAdmin.SetupKey = "setup-key"
	cfg.Server.AppURL = "http://localhost:3000"
	tokens := jwtutil.New(cfg)

	kpis := kpimaster.NewService(db, nil)

	auth := NewAuthHandler(db, tokens)
	projects := NewProjectHandler(db)
	members := NewMemberHandler(db)
	kpi := NewKpiHandler(db, kpis)
	dashboard := NewDashboardHandler(db, kpis)
	superAdmin := NewSuperAdminHandler(db, tokens, kpis, nil, cfg.Server.AppURL, cfg.SuperAdmin.SetupKey)

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	e.POST("/api/auth/register", auth.Register)
	e.POST("/api/auth/login", auth.Login)
	e.GET("/api/auth/invitation/:token", auth.GetInvitation)
	e.POST("/api/auth/register-by-invitation", auth.RegisterByInvitation)

	api := e.Group("/api", middleware.Auth(tokens))
	api.GET("/auth/me", auth.Me)
	api.DELETE("/auth/account", auth.DeleteAccount)
	api.GET("/projects", projects.List)
	api.POST("/projects", projects.Create)
	catalogAdmin := middleware.RequireCatalogAdmin(db)
	api.GET("/kpi-master", kpi.ListMaster)
	api.POST("/kpi-master", kpi.AddMaster, catalogAdmin)
	api.PUT("/kpi-master/:kpiId", kpi.UpdateMaster, catalogAdmin)
	api.DELETE("/kpi-master/:kpiId", kpi.DeleteMaster, catalogAdmin)

	viewer := middleware.RequireProjectRole(db, model.ProjectRoleAdmin, model.ProjectRoleEditor, model.ProjectRoleViewer)
	editor := middleware.RequireProjectRole(db, model.ProjectRoleAdmin, model.ProjectRoleEditor)
	admin := middleware.RequireProjectRole(db, model.ProjectRoleAdmin)

	api.GET("/projects/:projectId", projects.Get, viewer)
	api.DELETE("/projects/:projectId", projects.Delete, admin)
	api.GET("/projects/:projectId/export", projects.Export, viewer)
	api.POST("/projects/:projectId/import", projects.Import, admin)
	api.GET("/projects/:projectId/members", members.List, viewer)
	api.POST("/projects/:projectId/members", members.Add, admin)
	api.PUT("/projects/:projectId/members/:userId", members.Update, admin)
	api.DELETE("/projects/:projectId/members/:userId", members.Remove, admin)
	api.GET("/projects/:projectId/targets", kpi.GetTargets, viewer)
	api.POST("/projects/:projectId/targets", kpi.SaveTargets, admin)
	api.GET("/projects/:projectId/actuals", kpi.GetActuals, viewer)
	api.POST("/projects/:projectId/actuals", kpi.SaveActuals, editor)
	api.GET("/projects/:projectId/tree", kpi.GetTree, viewer)
	api.GET("/projects/:projectId/summary", dashboard.Summary, viewer)

	sa := e.Group("/super-admin")
	sa.POST("/setup", superAdmin.Setup)
	sa.POST("/login", superAdmin.Login)
	saAPI := sa.Group("", middleware.SuperAdminAuth(tokens))
	saAPI.GET("/me", superAdmin.Me)
	saAPI.GET("/tenants", superAdmin.ListTenants)
	saAPI.POST("/tenants", superAdmin.CreateTenant)
	saAPI.GET("/tenants/:tenantId", superAdmin.GetTenant)
	saAPI.DELETE("/tenants/:tenantId/permanent", superAdmin.PermanentDeleteTenant)
	saAPI.POST("/tenants/:tenantId/invitations", superAdmin.CreateInvitation)
	saAPI.GET("/stats", superAdmin.Stats)

	return &testServer{e: e, db: db, tokens: tokens, kpis: kpis}
}

func (s *testServer) request(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		json.Unmarshal(rec.Body.Bytes(), &payload)
	}
	return rec, payload
}

func (s *testServer) registerUser(t *testing.T, email, name string) string {
	t.Helper()
	rec, payload := s.request(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"email": email, "password": "password123", "name": name,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := payload["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *testServer) createProject(t *testing.T, token, name string) string {
	t.Helper()
	rec, payload := s.request(t, http.MethodPost, "/api/projects", token, echo.Map{"name": name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id, _ := payload["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	s.registerUser(t, "alice@example.com", "Alice")

	// duplicate registration fails
	rec, _ := s.request(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"email": "alice@example.com", "password": "password123", "name": "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload := s.request(t, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := payload["token"].(string)

	rec, payload = s.request(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", payload["email"])
}

func TestLoginErrorsAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.registerUser(t, "alice@example.com", "Alice")

	rec1, p1 := s.request(t, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "nobody@example.com", "password": "password123",
	})
	rec2, p2 := s.request(t, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "alice@example.com", "password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, rec1.Code)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
	assert.Equal(t, p1["error"], p2["error"])
}

func TestRequestWithoutToken(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.request(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectRoleGates(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureLegacyDefinitions(context.Background()))

	ownerToken := s.registerUser(t, "owner@example.com", "Owner")
	viewerToken := s.registerUser(t, "viewer@example.com", "Viewer")
	projectID := s.createProject(t, ownerToken, "Demo")

	rec, _ := s.request(t, http.MethodPost, "/api/projects/"+projectID+"/members", ownerToken, echo.Map{
		"email": "viewer@example.com", "role": "viewer",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// viewer reads but cannot write
	rec, _ = s.request(t, http.MethodGet, "/api/projects/"+projectID+"/targets", viewerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.request(t, http.MethodPost, "/api/projects/"+projectID+"/actuals", viewerToken, echo.Map{
		"actuals": []echo.Map{{"kpi_id": "kgi_001", "actual_value": 1.0, "year": 2025, "month": 6}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.request(t, http.MethodPost, "/api/projects/"+projectID+"/targets", viewerToken, echo.Map{
		"targets": []echo.Map{{"kpi_id": "kgi_001", "target_value": 1.0, "year": 2025}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// non-member sees nothing
	strangerToken := s.registerUser(t, "stranger@example.com", "Stranger")
	rec, _ = s.request(t, http.MethodGet, "/api/projects/"+projectID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCatalogMutationNeedsAdminMembership(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureLegacyDefinitions(context.Background()))

	body := echo.Map{
		"id": "custom_metric", "agent": "OPERATIONS", "category": "Custom",
		"name": "Custom Metric", "unit": "count", "parent_kpi_id": "kgi_001",
	}

	// no project membership anywhere, so no catalog rights
	plainToken := s.registerUser(t, "plain@example.com", "Plain")
	rec, _ := s.request(t, http.MethodPost, "/api/kpi-master", plainToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ownerToken := s.registerUser(t, "owner@example.com", "Owner")
	s.createProject(t, ownerToken, "Demo")

	rec, payload := s.request(t, http.MethodPost, "/api/kpi-master", ownerToken, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "custom_metric", payload["id"])
	assert.Equal(t, float64(2), payload["level"])

	rec, _ = s.request(t, http.MethodDelete, "/api/kpi-master/custom_metric", ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOwnerCannotBeRemovedOrDemoted(t *testing.T) {
	s := newTestServer(t)

	ownerToken := s.registerUser(t, "owner@example.com", "Owner")
	projectID := s.createProject(t, ownerToken, "Demo")

	var owner model.User
	require.NoError(t, s.db.Where("email = ?", "owner@example.com").First(&owner).Error)

	rec, _ := s.request(t, http.MethodDelete, "/api/projects/"+projectID+"/members/"+owner.ID, ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.request(t, http.MethodPut, "/api/projects/"+projectID+"/members/"+owner.ID, ownerToken, echo.Map{"role": "viewer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOnlyOwnerDeletesProject(t *testing.T) {
	s := newTestServer(t)

	ownerToken := s.registerUser(t, "owner@example.com", "Owner")
	adminToken := s.registerUser(t, "admin@example.com", "Admin")
	projectID := s.createProject(t, ownerToken, "Demo")

	rec, _ := s.request(t, http.MethodPost, "/api/projects/"+projectID+"/members", ownerToken, echo.Map{
		"email": "admin@example.com", "role": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// a non-owner admin passes the role gate but not the owner check
	rec, _ = s.request(t, http.MethodDelete, "/api/projects/"+projectID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.request(t, http.MethodDelete, "/api/projects/"+projectID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	s.db.Model(&model.Project{}).Where("id = ?", projectID).Count(&count)
	assert.Zero(t, count)
}

func TestAccountDeleteBlockedWhileOwningProjects(t *testing.T) {
	s := newTestServer(t)

	token := s.registerUser(t, "owner@example.com", "Owner")
	projectID := s.createProject(t, token, "Demo")

	rec, _ := s.request(t, http.MethodDelete, "/api/auth/account", token, echo.Map{"password": "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.request(t, http.MethodDelete, "/api/projects/"+projectID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// wrong password still fails
	rec, _ = s.request(t, http.MethodDelete, "/api/auth/account", token, echo.Map{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.request(t, http.MethodDelete, "/api/auth/account", token, echo.Map{"password": "password123"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTargetUpsertIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureLegacyDefinitions(context.Background()))

	token := s.registerUser(t, "owner@example.com", "Owner")
	projectID := s.createProject(t, token, "Demo")

	body := echo.Map{"targets": []echo.Map{
		{"kpi_id": "kgi_001", "target_value": 1000.0, "year": 2025},           // annual
		{"kpi_id": "kgi_001", "target_value": 80.0, "year": 2025, "month": 6}, // monthly
	}}
	for i := 0; i < 2; i++ {
		rec, _ := s.request(t, http.MethodPost, "/api/projects/"+projectID+"/targets", token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// the annual and monthly rows coexist; re-saving replaced, not stacked
	var rows []model.KpiTarget
	require.NoError(t, s.db.Where("project_id = ? AND kpi_id = ?", projectID, "kgi_001").Find(&rows).Error)
	assert.Len(t, rows, 2)

	update := echo.Map{"targets": []echo.Map{{"kpi_id": "kgi_001", "target_value": 1200.0, "year": 2025}}}
	rec, _ := s.request(t, http.MethodPost, "/api/projects/"+projectID+"/targets", token, update)
	require.Equal(t, http.StatusOK, rec.Code)

	var annual model.KpiTarget
	require.NoError(t, s.db.Where("project_id = ? AND kpi_id = ? AND month IS NULL", projectID, "kgi_001").First(&annual).Error)
	assert.Equal(t, 1200.0, annual.TargetValue)
}

func TestActualUpsertReplacesValue(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureLegacyDefinitions(context.Background()))

	token := s.registerUser(t, "owner@example.com", "Owner")
	projectID := s.createProject(t, token, "Demo")

	for _, v := range []float64{100, 250} {
		rec, _ := s.request(t, http.MethodPost, "/api/projects/"+projectID+"/actuals", token, echo.Map{
			"actuals": []echo.Map{{"kpi_id": "kgi_001", "actual_value": v, "year": 2025, "month": 6}},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	var rows []model.KpiActual
	require.NoError(t, s.db.Where("project_id = ?", projectID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 250.0, rows[0].ActualValue)
}

func TestTreeEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureLegacyDefinitions(context.Background()))

	token := s.registerUser(t, "owner@example.com", "Owner")
	projectID := s.createProject(t, token, "Demo")

	rec, _ := s.request(t, http.MethodPost, "/api/projects/"+projectID+"/targets", token, echo.Map{
		"targets": []echo.Map{{"kpi_id": "kgi_001", "target_value": 1000.0, "year": 2025}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.request(t, http.MethodPost, "/api/projects/"+projectID+"/actuals", token, echo.Map{
		"actuals": []echo.Map{{"kpi_id": "kgi_001", "actual_value": 756.0, "year": 2025, "month": 6}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := s.request(t, http.MethodGet, "/api/projects/"+projectID+"/tree?year=2025&month=6", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	tree, ok := payload["tree"].([]interface{})
	require.True(t, ok)
	require.Len(t, tree, 1)
	root := tree[0].(map[string]interface{})
	assert.Equal(t, "kgi_001", root["id"])
	assert.Equal(t, 756.0, root["actual"])
	assert.Equal(t, 76.0, root["achievement_rate"])
	assert.NotEmpty(t, root["children"])
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureLegacyDefinitions(context.Background()))

	token := s.registerUser(t, "owner@example.com", "Owner")
	projectID := s.createProject(t, token, "Demo")

	rec, _ := s.request(t, http.MethodPost, "/api/projects/"+projectID+"/targets", token, echo.Map{
		"targets": []echo.Map{
			{"kpi_id": "kgi_001", "target_value": 1000.0, "year": 2025},
			{"kpi_id": "drv_traffic", "target_value": 100.0, "year": 2025},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.request(t, http.MethodPost, "/api/projects/"+projectID+"/actuals", token, echo.Map{
		"actuals": []echo.Map{
			{"kpi_id": "kgi_001", "actual_value": 750.0, "year": 2025, "month": 6},
			{"kpi_id": "drv_traffic", "actual_value": 65.0, "year": 2025, "month": 6},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := s.request(t, http.MethodGet, "/api/projects/"+projectID+"/summary?year=2025&month=6", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	kgis := payload["kgis"].([]interface{})
	require.Len(t, kgis, 1)

	// 75% stays out, 65% is alerted
	alerts := payload["alerts"].([]interface{})
	require.Len(t, alerts, 1)
	alert := alerts[0].(map[string]interface{})
	assert.Equal(t, "drv_traffic", alert["id"])
	assert.Equal(t, 65.0, alert["achievement_rate"])
}

func TestSuperAdminSetupAndTenantLifecycle(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureDefaultTemplate(context.Background()))

	// wrong setup key
	rec, _ := s.request(t, http.MethodPost, "/super-admin/setup", "", echo.Map{
		"email": "root@example.com", "password": "password123", "name": "Root", "setupKey": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, payload := s.request(t, http.MethodPost, "/super-admin/setup", "", echo.Map{
		"email": "root@example.com", "password": "password123", "name": "Root", "setupKey": "setup-key",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	adminToken := payload["token"].(string)

	// setup is one-shot
	rec, _ = s.request(t, http.MethodPost, "/super-admin/setup", "", echo.Map{
		"email": "other@example.com", "password": "password123", "name": "Other", "setupKey": "setup-key",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// a user token is not a super-admin token
	userToken := s.registerUser(t, "user@example.com", "User")
	rec, _ = s.request(t, http.MethodGet, "/super-admin/tenants", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, payload = s.request(t, http.MethodPost, "/super-admin/tenants", adminToken, echo.Map{
		"name": "Acme", "slug": "acme",
		"adminEmail": "admin@acme.com", "adminName": "Acme Admin", "adminPassword": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tenant := payload["tenant"].(map[string]interface{})
	tenantID := tenant["id"].(string)

	// the catalog was instantiated with remapped ids
	var defs []model.KpiDefinition
	require.NoError(t, s.db.Where("tenant_id = ?", tenantID).Find(&defs).Error)
	require.NotEmpty(t, defs)
	for _, d := range defs {
		assert.True(t, strings.HasPrefix(d.ID, tenantID+"_"))
	}

	// duplicate slug rejected
	rec, _ = s.request(t, http.MethodPost, "/super-admin/tenants", adminToken, echo.Map{
		"name": "Acme 2", "slug": "acme",
		"adminEmail": "admin2@acme.com", "adminName": "A", "adminPassword": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// tenant admin logs in and sees only the tenant catalog
	rec, payload = s.request(t, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "admin@acme.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tenantToken := payload["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/kpi-master", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tenantToken)
	catalogRec := httptest.NewRecorder()
	s.e.ServeHTTP(catalogRec, req)
	require.Equal(t, http.StatusOK, catalogRec.Code)
	var catalog []model.KpiDefinition
	require.NoError(t, json.Unmarshal(catalogRec.Body.Bytes(), &catalog))
	assert.Len(t, catalog, len(defs))

	// permanent delete wipes everything the tenant owned
	rec, _ = s.request(t, http.MethodDelete, "/super-admin/tenants/"+tenantID+"/permanent", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var remaining int64
	s.db.Model(&model.KpiDefinition{}).Where("tenant_id = ?", tenantID).Count(&remaining)
	assert.Zero(t, remaining)
	s.db.Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestInvitationFlow(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureDefaultTemplate(context.Background()))

	_, payload := s.request(t, http.MethodPost, "/super-admin/setup", "", echo.Map{
		"email": "root@example.com", "password": "password123", "name": "Root", "setupKey": "setup-key",
	})
	adminToken := payload["token"].(string)

	rec, payload := s.request(t, http.MethodPost, "/super-admin/tenants", adminToken, echo.Map{
		"name": "Acme", "slug": "acme",
		"adminEmail": "admin@acme.com", "adminName": "Admin", "adminPassword": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tenantID := payload["tenant"].(map[string]interface{})["id"].(string)

	rec, payload = s.request(t, http.MethodPost, fmt.Sprintf("/super-admin/tenants/%s/invitations", tenantID), adminToken, echo.Map{
		"email": "new@acme.com", "role": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	invitation := payload["invitation"].(map[string]interface{})
	invToken := invitation["token"].(string)

	// the invitation resolves before redemption
	rec, payload = s.request(t, http.MethodGet, "/api/auth/invitation/"+invToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", payload["tenantName"])
	assert.Equal(t, "new@acme.com", payload["email"])

	rec, payload = s.request(t, http.MethodPost, "/api/auth/register-by-invitation", "", echo.Map{
		"token": invToken, "password": "password123", "name": "New Admin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "new@acme.com", user["email"])
	assert.Equal(t, tenantID, user["tenant_id"])
	assert.Equal(t, model.TenantRoleAdmin, user["role"])

	// a spent token is gone, and both failures look the same
	rec, p1 := s.request(t, http.MethodGet, "/api/auth/invitation/"+invToken, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, p2 := s.request(t, http.MethodGet, "/api/auth/invitation/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, p1["error"], p2["error"])

	// redeeming again fails just as generically and creates no second user
	rec, p3 := s.request(t, http.MethodPost, "/api/auth/register-by-invitation", "", echo.Map{
		"token": invToken, "password": "password456", "name": "Replay",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, p1["error"], p3["error"])

	var count int64
	require.NoError(t, s.db.Model(&model.User{}).Where("email = ?", "new@acme.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTenantPartitioning(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kpis.EnsureDefaultTemplate(context.Background()))
	require.NoError(t, s.kpis.EnsureLegacyDefinitions(context.Background()))

	_, payload := s.request(t, http.MethodPost, "/super-admin/setup", "", echo.Map{
		"email": "root@example.com", "password": "password123", "name": "Root", "setupKey": "setup-key",
	})
	adminToken := payload["token"].(string)

	rec, _ := s.request(t, http.MethodPost, "/super-admin/tenants", adminToken, echo.Map{
		"name": "Acme", "slug": "acme",
		"adminEmail": "admin@acme.com", "adminName": "Admin", "adminPassword": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload = s.request(t, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "admin@acme.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tenantToken := payload["token"].(string)

	// a legacy (tenant-less) user's project is invisible to the tenant
	legacyToken := s.registerUser(t, "legacy@example.com", "Legacy")
	legacyProject := s.createProject(t, legacyToken, "Legacy Project")

	rec, _ = s.request(t, http.MethodGet, "/api/projects/"+legacyProject, tenantToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// and the tenant's project list is empty
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tenantToken)
	listRec := httptest.NewRecorder()
	s.e.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	var projects []map[string]interface{}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &projects))
	assert.Empty(t, projects)
}
