package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpi-dashboard/internal/kpimaster"
	"kpi-dashboard/internal/middleware"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/internal/summary"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// DashboardHandler serves the project summary roll-up.
type DashboardHandler struct {
	db   *gorm.DB
	kpis *kpimaster.Service
}

func NewDashboardHandler(db *gorm.DB, kpis *kpimaster.Service) *DashboardHandler {
	return &DashboardHandler{db: db, kpis: kpis}
}

// Summary returns KGI status, per-agent scores and underperformance
// alerts for one period.
func (h *DashboardHandler) Summary(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)
	year, month := periodParams(c)
	ctx := c.Request().Context()

	defs, err := h.kpis.ListByScope(ctx, project.TenantID)
	if err != nil {
		log.Error("Failed to load kpi definitions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var targets []model.KpiTarget
	if err := h.db.WithContext(ctx).
		Where("project_id = ? AND year = ?", project.ID, year).
		Find(&targets).Error; err != nil {
		log.Error("Failed to load targets", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	var actuals []model.KpiActual
	if err := h.db.WithContext(ctx).
		Where("project_id = ? AND year = ? AND month = ?", project.ID, year, month).
		Find(&actuals).Error; err != nil {
		log.Error("Failed to load actuals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	result := summary.Compute(summary.Input{
		Defs:    defs,
		Targets: targets,
		Actuals: actuals,
		Year:    year,
		Month:   month,
	})
	prometheus.SummaryCounter.Inc()

	return c.JSON(http.StatusOK, result)
}
