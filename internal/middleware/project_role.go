package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/logger"
)

// RequireProjectRole loads the :projectId project, checks that it
// belongs to the caller's tenant and that the caller holds one of the
// allowed membership roles. The project and role are stored in the
// context for the handler.
//
// Tenant partitioning is strict: a nil tenant on either side only
// matches a nil tenant on the other.
func RequireProjectRole(db *gorm.DB, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			projectID := c.Param("projectId")
			userID := UserID(c)

			var project model.Project
			err := db.WithContext(c.Request().Context()).
				Where("id = ?", projectID).First(&project).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
				}
				log.Error("Failed to load project", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			if !sameTenant(project.TenantID, TenantID(c)) {
				log.Warn("Cross-tenant project access denied",
					zap.String("project_id", projectID),
					zap.String("user_id", userID))
				return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
			}

			var member model.ProjectMember
			err = db.WithContext(c.Request().Context()).
				Where("project_id = ? AND user_id = ?", projectID, userID).
				First(&member).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this project"})
				}
				log.Error("Failed to load project membership", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			if !allowed[member.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}

			c.Set("project", &project)
			c.Set("project_role", member.Role)
			return next(c)
		}
	}
}

// RequireCatalogAdmin gates KPI catalog mutations. The catalog has no
// project of its own, so the caller must hold an admin membership on
// at least one project inside their tenant partition.
func RequireCatalogAdmin(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			userID := UserID(c)

			query := db.WithContext(c.Request().Context()).
				Model(&model.ProjectMember{}).
				Joins("JOIN projects ON projects.id = project_members.project_id").
				Where("project_members.user_id = ? AND project_members.role = ?", userID, model.ProjectRoleAdmin)
			if tenantID := TenantID(c); tenantID != nil {
				query = query.Where("projects.tenant_id = ?", *tenantID)
			} else {
				query = query.Where("projects.tenant_id IS NULL")
			}

			var count int64
			if err := query.Count(&count).Error; err != nil {
				log.Error("Failed to check catalog admin", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}
			if count == 0 {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}

// Project returns the project loaded by RequireProjectRole.
func Project(c echo.Context) *model.Project {
	p, _ := c.Get("project").(*model.Project)
	return p
}

// ProjectRole returns the caller's membership role in the loaded
// project.
func ProjectRole(c echo.Context) string {
	r, _ := c.Get("project_role").(string)
	return r
}

func sameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
