package main

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"kpi-dashboard/internal/handler"
	"kpi-dashboard/internal/kpimaster"
	"kpi-dashboard/internal/middleware"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/config"
	"kpi-dashboard/pkg/database"
	"kpi-dashboard/pkg/email"
	"kpi-dashboard/pkg/jwtutil"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// requestValidator adapts go-playground/validator to echo's Validator
// interface.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting KPI dashboard service...", cfg.LogFields()...)

	// Open the database and run migrations
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	err = database.Migrate(db,
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
	)
	if err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	tokens := jwtutil.New(cfg)
	mail := email.NewClient(&cfg.Email)
	if mail == nil {
		log.Info("Email delivery not configured; invitation mails are skipped")
	}

	kpis := kpimaster.NewService(db, log)

	// Seed the built-in template and the legacy catalog on first start
	ctx := context.Background()
	if err := kpis.EnsureDefaultTemplate(ctx); err != nil {
		log.Fatal("Failed to seed default kpi template", zap.Error(err))
	}
	if err := kpis.EnsureLegacyDefinitions(ctx); err != nil {
		log.Fatal("Failed to seed kpi definitions", zap.Error(err))
	}
	log.Info("KPI master data initialized")

	auth := handler.NewAuthHandler(db, tokens)
	projects := handler.NewProjectHandler(db)
	members := handler.NewMemberHandler(db)
	kpi := handler.NewKpiHandler(db, kpis)
	dashboard := handler.NewDashboardHandler(db, kpis)
	superAdmin := handler.NewSuperAdminHandler(db, tokens, kpis, mail, cfg.Server.AppURL, cfg.SuperAdmin.SetupKey)
	health := handler.NewHealthHandler(db)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", health.Check)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	e.POST("/api/auth/register", auth.Register)
	e.POST("/api/auth/login", auth.Login)
	e.GET("/api/auth/invitation/:token", auth.GetInvitation)
	e.POST("/api/auth/register-by-invitation", auth.RegisterByInvitation)

	// API routes - all require a user session
	api := e.Group("/api", middleware.Auth(tokens))
	api.GET("/auth/me", auth.Me)
	api.DELETE("/auth/account", auth.DeleteAccount)

	api.GET("/projects", projects.List)
	api.POST("/projects", projects.Create)

	// KPI catalog, scoped to the caller's tenant; mutations need an
	// admin membership somewhere in that tenant
	catalogAdmin := middleware.RequireCatalogAdmin(db)
	api.GET("/kpi-master", kpi.ListMaster)
	api.POST("/kpi-master", kpi.AddMaster, catalogAdmin)
	api.PUT("/kpi-master/:kpiId", kpi.UpdateMaster, catalogAdmin)
	api.DELETE("/kpi-master/:kpiId", kpi.DeleteMaster, catalogAdmin)

	// Project-scoped routes, gated by membership role
	viewer := middleware.RequireProjectRole(db, model.ProjectRoleAdmin, model.ProjectRoleEditor, model.ProjectRoleViewer)
	editor := middleware.RequireProjectRole(db, model.ProjectRoleAdmin, model.ProjectRoleEditor)
	admin := middleware.RequireProjectRole(db, model.ProjectRoleAdmin)

	api.GET("/projects/:projectId", projects.Get, viewer)
	api.DELETE("/projects/:projectId", projects.Delete, admin)
	api.GET("/projects/:projectId/export", projects.Export, viewer)
	api.GET("/projects/:projectId/export.xlsx", projects.ExportXLSX, viewer)
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

	// Platform operator routes under a separate credential
	sa := e.Group("/super-admin")
	sa.POST("/setup", superAdmin.Setup)
	sa.POST("/login", superAdmin.Login)

	saAPI := sa.Group("", middleware.SuperAdminAuth(tokens))
	saAPI.GET("/me", superAdmin.Me)
	saAPI.GET("/tenants", superAdmin.ListTenants)
	saAPI.POST("/tenants", superAdmin.CreateTenant)
	saAPI.GET("/tenants/:tenantId", superAdmin.GetTenant)
	saAPI.PUT("/tenants/:tenantId", superAdmin.UpdateTenant)
	saAPI.DELETE("/tenants/:tenantId", superAdmin.DeleteTenant)
	saAPI.DELETE("/tenants/:tenantId/permanent", superAdmin.PermanentDeleteTenant)
	saAPI.DELETE("/tenants/:tenantId/users/:userId", superAdmin.DeleteTenantUser)
	saAPI.POST("/tenants/:tenantId/invitations", superAdmin.CreateInvitation)
	saAPI.GET("/tenants/:tenantId/invitations", superAdmin.ListInvitations)
	saAPI.GET("/kpi-templates", superAdmin.ListTemplates)
	saAPI.POST("/kpi-templates", superAdmin.CreateTemplate)
	saAPI.GET("/kpi-templates/:templateId", superAdmin.GetTemplate)
	saAPI.GET("/stats", superAdmin.Stats)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
