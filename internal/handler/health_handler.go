package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check pings the database and reports overall status.
func (h *HealthHandler) Check(c echo.Context) error {
	dbStatus := "up"
	status := http.StatusOK

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, echo.Map{
		"service":  "kpi-dashboard",
		"status":   "ok",
		"database": dbStatus,
	})
}
