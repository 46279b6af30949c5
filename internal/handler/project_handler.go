package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpi-dashboard/internal/middleware"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// ProjectHandler serves project CRUD, export and import.
type ProjectHandler struct {
	db *gorm.DB
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{db: db}
}

type projectRow struct {
	model.Project
	Role      string `json:"role"`
	OwnerName string `json:"owner_name"`
}

// List returns the caller's projects with their membership role.
func (h *ProjectHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := h.db.WithContext(c.Request().Context()).Model(&model.Project{}).
		Select("projects.*, pm.role, u.name AS owner_name").
		Joins("JOIN project_members pm ON pm.project_id = projects.id AND pm.user_id = ?", middleware.UserID(c)).
		Joins("JOIN users u ON u.id = projects.owner_id")
	if tenantID := middleware.TenantID(c); tenantID != nil {
		q = q.Where("projects.tenant_id = ?", *tenantID)
	} else {
		q = q.Where("projects.tenant_id IS NULL")
	}

	var rows []projectRow
	if err := q.Scan(&rows).Error; err != nil {
		log.Error("Failed to list projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if rows == nil {
		rows = []projectRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// Create creates a project in the caller's tenant and makes the caller
// its owning admin member.
func (h *ProjectHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	userID := middleware.UserID(c)
	project := model.Project{
		ID:       uuid.New().String(),
		TenantID: middleware.TenantID(c),
		Name:     req.Name,
		OwnerID:  userID,
	}

	err := h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return tx.Create(&model.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      model.ProjectRoleAdmin,
		}).Error
	})
	if err != nil {
		log.Error("Failed to create project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create project"})
	}

	log.Info("Project created", zap.String("project_id", project.ID), zap.String("owner_id", userID))
	return c.JSON(http.StatusOK, project)
}

// Get returns one project with the caller's role.
func (h *ProjectHandler) Get(c echo.Context) error {
	project := middleware.Project(c)

	var ownerName string
	h.db.WithContext(c.Request().Context()).Model(&model.User{}).
		Select("name").Where("id = ?", project.OwnerID).Scan(&ownerName)

	return c.JSON(http.StatusOK, echo.Map{
		"id":         project.ID,
		"tenant_id":  project.TenantID,
		"name":       project.Name,
		"owner_id":   project.OwnerID,
		"owner_name": ownerName,
		"created_at": project.CreatedAt,
		"userRole":   middleware.ProjectRole(c),
	})
}

// Delete removes a project and all its stored values. Only the owner
// may delete, even among admins.
func (h *ProjectHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)

	if project.OwnerID != middleware.UserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the project owner can delete it"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&model.KpiActual{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&model.KpiTarget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		log.Error("Failed to delete project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete project"})
	}

	log.Info("Project deleted", zap.String("project_id", project.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "project deleted"})
}

type memberRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ProjectHandler) exportData(c echo.Context) (*model.Project, []memberRow, []model.KpiTarget, []model.KpiActual, error) {
	project := middleware.Project(c)
	ctx := c.Request().Context()

	var members []memberRow
	err := h.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Select("users.id, users.email, users.name, project_members.role, project_members.created_at").
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ?", project.ID).
		Scan(&members).Error
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var targets []model.KpiTarget
	if err := h.db.WithContext(ctx).Where("project_id = ?", project.ID).Find(&targets).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	var actuals []model.KpiActual
	if err := h.db.WithContext(ctx).Where("project_id = ?", project.ID).Find(&actuals).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	return project, members, targets, actuals, nil
}

// Export dumps the project with members, targets and actuals as JSON.
func (h *ProjectHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	project, members, targets, actuals, err := h.exportData(c)
	if err != nil {
		log.Error("Failed to export project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"exportedAt": time.Now().UTC().Format(time.RFC3339),
		"project":    project,
		"members":    members,
		"targets":    targets,
		"actuals":    actuals,
	})
}

// ExportXLSX writes the same dump as a spreadsheet with one sheet per
// record type.
func (h *ProjectHandler) ExportXLSX(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	project, members, targets, actuals, err := h.exportData(c)
	if err != nil {
		log.Error("Failed to export project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Targets")
	headers := []interface{}{"kpi_id", "target_value", "year", "month"}
	f.SetSheetRow("Targets", "A1", &headers)
	for i, t := range targets {
		month := interface{}(nil)
		if t.Month != nil {
			month = *t.Month
		}
		row := []interface{}{t.KpiID, t.TargetValue, t.Year, month}
		f.SetSheetRow("Targets", fmt.Sprintf("A%d", i+2), &row)
	}

	f.NewSheet("Actuals")
	headers = []interface{}{"kpi_id", "actual_value", "year", "month", "updated_by", "updated_at"}
	f.SetSheetRow("Actuals", "A1", &headers)
	for i, a := range actuals {
		row := []interface{}{a.KpiID, a.ActualValue, a.Year, a.Month, a.UpdatedBy, a.UpdatedAt.Format(time.RFC3339)}
		f.SetSheetRow("Actuals", fmt.Sprintf("A%d", i+2), &row)
	}

	f.NewSheet("Members")
	headers = []interface{}{"id", "email", "name", "role"}
	f.SetSheetRow("Members", "A1", &headers)
	for i, m := range members {
		row := []interface{}{m.ID, m.Email, m.Name, m.Role}
		f.SetSheetRow("Members", fmt.Sprintf("A%d", i+2), &row)
	}

	filename := fmt.Sprintf("%s-export-%s.xlsx", project.ID, time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	if err := f.Write(c.Response().Writer); err != nil {
		log.Error("Failed to write spreadsheet", zap.Error(err))
		return err
	}
	return nil
}

// Import restores targets and actuals from an export payload. Rows are
// upserted, so re-importing the same file is harmless.
func (h *ProjectHandler) Import(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)

	var req struct {
		Targets []TargetInput `json:"targets"`
		Actuals []ActualInput `json:"actuals"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	ctx := c.Request().Context()
	if err := saveTargets(ctx, h.db, project.ID, req.Targets); err != nil {
		log.Error("Failed to import targets", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "import failed"})
	}
	if err := saveActuals(ctx, h.db, project.ID, middleware.UserID(c), req.Actuals); err != nil {
		log.Error("Failed to import actuals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "import failed"})
	}

	log.Info("Project data imported",
		zap.String("project_id", project.ID),
		zap.Int("targets", len(req.Targets)),
		zap.Int("actuals", len(req.Actuals)))
	return c.JSON(http.StatusOK, echo.Map{"message": "import completed"})
}
