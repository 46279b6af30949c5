package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kpi-dashboard/internal/kpimaster"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/email"
	"kpi-dashboard/pkg/jwtutil"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// SuperAdminHandler serves the platform operator surface: tenants,
// invitations, templates and global stats.
type SuperAdminHandler struct {
	db       *gorm.DB
	tokens   *jwtutil.JWT
	kpis     *kpimaster.Service
	mail     *email.Client
	appURL   string
	setupKey string
}

func NewSuperAdminHandler(db *gorm.DB, tokens *jwtutil.JWT, kpis *kpimaster.Service, mail *email.Client, appURL, setupKey string) *SuperAdminHandler {
	return &SuperAdminHandler{db: db, tokens: tokens, kpis: kpis, mail: mail, appURL: appURL, setupKey: setupKey}
}

type adminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Setup registers the first super admin. It requires the deployment's
// setup key and refuses once any admin exists.
func (h *SuperAdminHandler) Setup(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required"`
		SetupKey string `json:"setupKey"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if req.SetupKey != h.setupKey {
		prometheus.RecordAuthError("invalid_setup_key")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid setup key"})
	}

	var count int64
	if err := h.db.WithContext(c.Request().Context()).Model(&model.SuperAdmin{}).Count(&count).Error; err != nil {
		log.Error("Failed to count super admins", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "super admin already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	admin := model.SuperAdmin{
		ID:       uuid.New().String(),
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&admin).Error; err != nil {
		log.Error("Failed to create super admin", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "setup failed"})
	}

	token, err := h.tokens.GenerateSuperAdminToken(admin.ID, admin.Email, admin.Name)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Super admin registered", zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"admin": adminResponse{ID: admin.ID, Email: admin.Email, Name: admin.Name},
	})
}

// Login authenticates a super admin.
func (h *SuperAdminHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var admin model.SuperAdmin
	if err := h.db.WithContext(c.Request().Context()).
		Where("email = ?", req.Email).First(&admin).Error; err != nil {
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	token, err := h.tokens.GenerateSuperAdminToken(admin.ID, admin.Email, admin.Name)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("Super admin logged in", zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"admin": adminResponse{ID: admin.ID, Email: admin.Email, Name: admin.Name},
	})
}

// Me returns the authenticated super admin's profile.
func (h *SuperAdminHandler) Me(c echo.Context) error {
	adminID, _ := c.Get("admin_id").(string)

	var admin model.SuperAdmin
	if err := h.db.WithContext(c.Request().Context()).
		Where("id = ?", adminID).First(&admin).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
	}
	return c.JSON(http.StatusOK, adminResponse{ID: admin.ID, Email: admin.Email, Name: admin.Name})
}

type tenantRow struct {
	model.Tenant
	UserCount    int `json:"user_count"`
	ProjectCount int `json:"project_count"`
}

// ListTenants returns all non-deleted tenants with usage counts.
func (h *SuperAdminHandler) ListTenants(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var rows []tenantRow
	err := h.db.WithContext(c.Request().Context()).Model(&model.Tenant{}).
		Select(`tenants.*,
			(SELECT COUNT(*) FROM users WHERE users.tenant_id = tenants.id) AS user_count,
			(SELECT COUNT(*) FROM projects WHERE projects.tenant_id = tenants.id) AS project_count`).
		Where("tenants.status <> ?", model.TenantStatusDeleted).
		Order("tenants.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if rows == nil {
		rows = []tenantRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// CreateTenant provisions a tenant: the tenant row, its first admin
// user and an instantiated KPI catalog from the chosen template.
func (h *SuperAdminHandler) CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name          string  `json:"name" validate:"required"`
		Slug          string  `json:"slug" validate:"required,min=2,max=50"`
		AdminEmail    string  `json:"adminEmail" validate:"required,email"`
		AdminName     string  `json:"adminName" validate:"required"`
		AdminPassword string  `json:"adminPassword" validate:"required,min=8"`
		TemplateID    *string `json:"templateId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	var count int64
	if err := h.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("slug = ?", req.Slug).Count(&count).Error; err != nil {
		log.Error("Failed to check slug", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug already in use"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	adminID, _ := c.Get("admin_id").(string)
	tenant := model.Tenant{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Slug:      req.Slug,
		Status:    model.TenantStatusActive,
		CreatedBy: adminID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		return tx.Create(&model.User{
			ID:       uuid.New().String(),
			TenantID: &tenant.ID,
			Email:    req.AdminEmail,
			Password: string(hashed),
			Name:     req.AdminName,
			Role:     model.TenantRoleAdmin,
		}).Error
	})
	if err != nil {
		log.Error("Failed to create tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create tenant"})
	}

	if err := h.kpis.InstantiateForScope(ctx, tenant.ID, req.TemplateID); err != nil {
		log.Error("Failed to instantiate kpi catalog",
			zap.String("tenant_id", tenant.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to provision kpi catalog"})
	}

	prometheus.RecordTenantOperation("create")
	h.refreshActiveTenants(c)
	log.Info("Tenant created", zap.String("tenant_id", tenant.ID), zap.String("slug", tenant.Slug))
	return c.JSON(http.StatusOK, echo.Map{"tenant": tenant, "message": "tenant created"})
}

// GetTenant returns one tenant with its users and projects.
func (h *SuperAdminHandler) GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := c.Param("tenantId")
	ctx := c.Request().Context()

	var row tenantRow
	err := h.db.WithContext(ctx).Model(&model.Tenant{}).
		Select(`tenants.*,
			(SELECT COUNT(*) FROM users WHERE users.tenant_id = tenants.id) AS user_count,
			(SELECT COUNT(*) FROM projects WHERE projects.tenant_id = tenants.id) AS project_count`).
		Where("tenants.id = ?", tenantID).
		Scan(&row).Error
	if err != nil {
		log.Error("Failed to load tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if row.ID == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	var users []userResponse
	if err := h.db.WithContext(ctx).Model(&model.User{}).
		Select("id, email, name, role").
		Where("tenant_id = ?", tenantID).Scan(&users).Error; err != nil {
		log.Error("Failed to load tenant users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	var projects []model.Project
	if err := h.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).Find(&projects).Error; err != nil {
		log.Error("Failed to load tenant projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tenant":   row,
		"users":    users,
		"projects": projects,
	})
}

// UpdateTenant renames a tenant or changes its status.
func (h *SuperAdminHandler) UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := c.Param("tenantId")

	var req struct {
		Name   string `json:"name" validate:"required"`
		Status string `json:"status" validate:"required,oneof=active suspended deleted"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	result := h.db.WithContext(c.Request().Context()).Model(&model.Tenant{}).
		Where("id = ?", tenantID).
		Updates(map[string]interface{}{"name": req.Name, "status": req.Status})
	if result.Error != nil {
		log.Error("Failed to update tenant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update tenant"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	prometheus.RecordTenantOperation("update")
	h.refreshActiveTenants(c)

	var tenant model.Tenant
	h.db.WithContext(c.Request().Context()).Where("id = ?", tenantID).First(&tenant)
	return c.JSON(http.StatusOK, tenant)
}

// DeleteTenant soft-deletes a tenant. Its data stays until a permanent
// delete.
func (h *SuperAdminHandler) DeleteTenant(c echo.Context) error {
	log := logger.FromContext(c)

	result := h.db.WithContext(c.Request().Context()).Model(&model.Tenant{}).
		Where("id = ?", c.Param("tenantId")).
		Update("status", model.TenantStatusDeleted)
	if result.Error != nil {
		log.Error("Failed to delete tenant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete tenant"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	prometheus.RecordTenantOperation("soft_delete")
	h.refreshActiveTenants(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "tenant deleted"})
}

// PermanentDeleteTenant removes a tenant and every row that belongs to
// it, bottom-up.
func (h *SuperAdminHandler) PermanentDeleteTenant(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := c.Param("tenantId")
	ctx := c.Request().Context()

	var tenant model.Tenant
	if err := h.db.WithContext(ctx).Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to load tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&model.Project{}).Select("id").Where("tenant_id = ?", tenantID)

		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&model.KpiActual{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&model.KpiTarget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&model.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&model.KpiDefinition{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&model.TenantInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&model.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tenant).Error
	})
	if err != nil {
		log.Error("Failed to permanently delete tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete tenant"})
	}

	prometheus.RecordTenantOperation("permanent_delete")
	h.refreshActiveTenants(c)
	log.Info("Tenant permanently deleted", zap.String("tenant_id", tenantID))
	return c.JSON(http.StatusOK, echo.Map{"message": "tenant permanently deleted"})
}

// DeleteTenantUser removes a user from a tenant. Projects they own go
// to another member when one exists, otherwise the project and its data
// are removed.
func (h *SuperAdminHandler) DeleteTenantUser(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := c.Param("tenantId")
	userID := c.Param("userId")
	ctx := c.Request().Context()

	var user model.User
	if err := h.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", userID, tenantID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error("Failed to load user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}

		var owned []model.Project
		if err := tx.Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
			return err
		}
		for _, project := range owned {
			var next model.ProjectMember
			err := tx.Where("project_id = ? AND user_id <> ?", project.ID, userID).
				First(&next).Error
			switch {
			case err == nil:
				if err := tx.Model(&project).Update("owner_id", next.UserID).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// nobody left to inherit it
				if err := tx.Where("project_id = ?", project.ID).Delete(&model.KpiActual{}).Error; err != nil {
					return err
				}
				if err := tx.Where("project_id = ?", project.ID).Delete(&model.KpiTarget{}).Error; err != nil {
					return err
				}
				if err := tx.Where("project_id = ?", project.ID).Delete(&model.ProjectMember{}).Error; err != nil {
					return err
				}
				if err := tx.Delete(&project).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		log.Error("Failed to delete tenant user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	log.Info("Tenant user deleted",
		zap.String("tenant_id", tenantID), zap.String("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// invitationTTL is how long an invitation link stays valid.
const invitationTTL = 7 * 24 * time.Hour

// CreateInvitation generates an invitation link for a tenant. The mail
// send is best effort; the link is returned either way.
func (h *SuperAdminHandler) CreateInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := c.Param("tenantId")
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Role == "" {
		req.Role = "admin"
	}

	var tenant model.Tenant
	if err := h.db.WithContext(ctx).Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to load tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		log.Error("Failed to generate invitation token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	inv := model.TenantInvitation{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Email:     req.Email,
		Role:      req.Role,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().Add(invitationTTL),
	}
	if err := h.db.WithContext(ctx).Create(&inv).Error; err != nil {
		log.Error("Failed to create invitation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create invitation"})
	}

	inviteURL := fmt.Sprintf("%s/invite/%s", h.appURL, inv.Token)
	if h.mail != nil {
		if err := h.mail.SendInvitation(inv.Email, tenant.Name, inviteURL, int(invitationTTL.Hours()/24)); err != nil {
			log.Warn("Failed to send invitation email",
				zap.String("invitation_id", inv.ID), zap.Error(err))
		}
	}

	prometheus.RecordTenantOperation("invite")
	log.Info("Invitation created",
		zap.String("tenant_id", tenantID), zap.String("invitation_id", inv.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"invitation": inv,
		"inviteUrl":  inviteURL,
		"message":    fmt.Sprintf("invitation link generated for %s", tenant.Name),
	})
}

// ListInvitations returns a tenant's invitations, newest first.
func (h *SuperAdminHandler) ListInvitations(c echo.Context) error {
	log := logger.FromContext(c)

	var invitations []model.TenantInvitation
	err := h.db.WithContext(c.Request().Context()).
		Where("tenant_id = ?", c.Param("tenantId")).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		log.Error("Failed to list invitations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, invitations)
}

// ListTemplates returns all KPI templates with item counts.
func (h *SuperAdminHandler) ListTemplates(c echo.Context) error {
	tpls, err := h.kpis.ListTemplates(c.Request().Context())
	if err != nil {
		logger.FromContext(c).Error("Failed to list templates", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, tpls)
}

// CreateTemplate stores a new KPI template from supplied items, from an
// existing tenant's catalog, or from the built-in set.
func (h *SuperAdminHandler) CreateTemplate(c echo.Context) error {
	var req struct {
		Name        string                `json:"name" validate:"required"`
		Description string                `json:"description"`
		IsDefault   bool                  `json:"isDefault"`
		FromTenant  *string               `json:"fromTenant"`
		Items       []model.KpiDefinition `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	id := uuid.New().String()
	var tpl *model.KpiTemplate
	var err error
	if len(req.Items) > 0 {
		tpl, err = h.kpis.CreateTemplateFromItems(c.Request().Context(), id, req.Name, req.Description, req.IsDefault, req.Items)
	} else {
		tpl, err = h.kpis.CreateTemplate(c.Request().Context(), id, req.Name, req.Description, req.FromTenant)
	}
	if err != nil {
		return kpiError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": tpl.ID, "message": "template created"})
}

// GetTemplate returns a template with its items.
func (h *SuperAdminHandler) GetTemplate(c echo.Context) error {
	tpl, items, err := h.kpis.GetTemplate(c.Request().Context(), c.Param("templateId"))
	if err != nil {
		return kpiError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"template": tpl, "items": items})
}

// Stats returns global platform counters for the operator dashboard.
func (h *SuperAdminHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var totalTenants, totalUsers, totalProjects int64
	if err := h.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("status = ?", model.TenantStatusActive).Count(&totalTenants).Error; err != nil {
		log.Error("Failed to count tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if err := h.db.WithContext(ctx).Model(&model.User{}).Count(&totalUsers).Error; err != nil {
		log.Error("Failed to count users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if err := h.db.WithContext(ctx).Model(&model.Project{}).Count(&totalProjects).Error; err != nil {
		log.Error("Failed to count projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var recent []model.Tenant
	if err := h.db.WithContext(ctx).
		Select("id, name, created_at").
		Where("status = ?", model.TenantStatusActive).
		Order("created_at DESC").Limit(5).
		Find(&recent).Error; err != nil {
		log.Error("Failed to list recent tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	prometheus.UpdateActiveTenants(int(totalTenants))
	return c.JSON(http.StatusOK, echo.Map{
		"totalTenants":  totalTenants,
		"totalUsers":    totalUsers,
		"totalProjects": totalProjects,
		"recentTenants": recent,
	})
}

func (h *SuperAdminHandler) refreshActiveTenants(c echo.Context) {
	var count int64
	if err := h.db.WithContext(c.Request().Context()).Model(&model.Tenant{}).
		Where("status = ?", model.TenantStatusActive).Count(&count).Error; err == nil {
		prometheus.UpdateActiveTenants(int(count))
	}
}
