package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpi-dashboard/internal/middleware"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// MemberHandler manages project memberships.
type MemberHandler struct {
	db *gorm.DB
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{db: db}
}

func validProjectRole(role string) bool {
	switch role {
	case model.ProjectRoleAdmin, model.ProjectRoleEditor, model.ProjectRoleViewer:
		return true
	}
	return false
}

// List returns the members of a project.
func (h *MemberHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var members []memberRow
	err := h.db.WithContext(c.Request().Context()).Model(&model.ProjectMember{}).
		Select("users.id, users.email, users.name, project_members.role, project_members.created_at").
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ?", project.ID).
		Scan(&members).Error
	if err != nil {
		log.Error("Failed to list members", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if members == nil {
		members = []memberRow{}
	}
	return c.JSON(http.StatusOK, members)
}

// Add invites an existing account into the project by email. The
// account must live in the same tenant as the project.
func (h *MemberHandler) Add(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)

	var req struct {
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !validProjectRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	ctx := c.Request().Context()

	q := h.db.WithContext(ctx).Where("email = ?", req.Email)
	if project.TenantID != nil {
		q = q.Where("tenant_id = ?", *project.TenantID)
	} else {
		q = q.Where("tenant_id IS NULL")
	}
	var user model.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found; they need to register first"})
		}
		log.Error("Failed to look up user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, user.ID).
		Count(&count).Error; err != nil {
		log.Error("Failed to check membership", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is already a member"})
	}

	member := model.ProjectMember{ProjectID: project.ID, UserID: user.ID, Role: req.Role}
	if err := h.db.WithContext(ctx).Create(&member).Error; err != nil {
		log.Error("Failed to add member", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add member"})
	}

	log.Info("Member added",
		zap.String("project_id", project.ID),
		zap.String("user_id", user.ID),
		zap.String("role", req.Role))
	return c.JSON(http.StatusOK, echo.Map{"message": "member added"})
}

// Update changes a member's role. The owner always keeps admin.
func (h *MemberHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)
	userID := c.Param("userId")

	var req struct {
		Role string `json:"role" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if !validProjectRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	if project.OwnerID == userID && req.Role != model.ProjectRoleAdmin {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "the owner's role cannot be changed"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.WithContext(c.Request().Context()).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		Update("role", req.Role)
	if result.Error != nil {
		log.Error("Failed to update member role", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	log.Info("Member role updated",
		zap.String("project_id", project.ID),
		zap.String("user_id", userID),
		zap.String("role", req.Role))
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

// Remove takes a member out of the project. The owner cannot be
// removed.
func (h *MemberHandler) Remove(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)
	userID := c.Param("userId")

	if project.OwnerID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "the owner cannot be removed"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := h.db.WithContext(c.Request().Context()).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		Delete(&model.ProjectMember{})
	if result.Error != nil {
		log.Error("Failed to remove member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove member"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	log.Info("Member removed",
		zap.String("project_id", project.ID),
		zap.String("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "member removed"})
}
